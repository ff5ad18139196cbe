package cmd

import (
	"fmt"
	"time"
)

// durationFlag is a duration flag that only overrides configuration when set.
type durationFlag struct {
	d   time.Duration
	set bool
}

func (f *durationFlag) String() string {
	if !f.set {
		return ""
	}
	return f.d.String()
}

func (f *durationFlag) Set(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	f.d, f.set = d, true
	return nil
}

func (f *durationFlag) Type() string { return "duration" }

func (f *durationFlag) apply(dst *time.Duration) {
	if f.set {
		*dst = f.d
	}
}
