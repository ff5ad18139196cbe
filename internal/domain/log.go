package domain

import "time"

type ExecutionStatus string

const (
	StatusSuccess   ExecutionStatus = "success"
	StatusFailure   ExecutionStatus = "failure"
	StatusCancelled ExecutionStatus = "cancelled"
	StatusSkipped   ExecutionStatus = "skipped"
)

// LogEntry records one finished, failed, skipped or cancelled attempt. Entries
// are only ever appended.
type LogEntry struct {
	ID             string          `json:"id"`
	RepositoryPath string          `json:"repository_path"`
	Type           OperationType   `json:"operation_type"`
	Message        string          `json:"commit_message"`
	Branch         string          `json:"branch,omitempty"`
	ScheduledTime  time.Time       `json:"scheduled_time"`
	ExecutedAt     time.Time       `json:"executed_at"`
	Status         ExecutionStatus `json:"status"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	RetryCount     int             `json:"retry_count"`
	Warnings       []string        `json:"warnings,omitempty"`
}

// NewLogEntry copies the identifying fields of op into an entry.
func NewLogEntry(op Operation, status ExecutionStatus, at time.Time) LogEntry {
	return LogEntry{
		ID:             op.ID,
		RepositoryPath: op.RepositoryPath,
		Type:           op.Type,
		Message:        op.Message,
		Branch:         op.Branch,
		ScheduledTime:  op.ScheduledTime,
		ExecutedAt:     at,
		Status:         status,
		RetryCount:     op.RetryCount,
	}
}
