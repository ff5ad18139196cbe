package domain

import "time"

type OperationType string

const (
	TypeCommit OperationType = "commit"
	TypePush   OperationType = "push"
)

func (t OperationType) Valid() bool {
	return t == TypeCommit || t == TypePush
}

type OperationState string

const (
	StatePending OperationState = "pending"
	StateFailing OperationState = "failing"
)

// Operation is a scheduled commit or push waiting in the queue.
//
// Branch is only captured for pushes; it pins the branch that was checked out
// when the push was scheduled.
type Operation struct {
	ID             string         `json:"id"`
	RepositoryPath string         `json:"repository_path"`
	Type           OperationType  `json:"operation_type"`
	Message        string         `json:"commit_message"`
	Branch         string         `json:"branch,omitempty"`
	ScheduledTime  time.Time      `json:"scheduled_time"`
	CreatedAt      time.Time      `json:"created_at"`
	RetryCount     int            `json:"retry_count"`
	State          OperationState `json:"state,omitempty"`
}

// IsDue reports whether the operation may run at now.
func (o Operation) IsDue(now time.Time) bool {
	return !o.ScheduledTime.After(now)
}

// Failed returns a copy of the operation prepared for another attempt at next.
func (o Operation) Failed(next time.Time) Operation {
	o.RetryCount++
	o.State = StateFailing
	o.ScheduledTime = next
	return o
}
