package utils

import (
	"context"
	"fmt"
	"time"
)

// ErrTimeout is returned when an operation exceeds its allotted duration
type ErrTimeout struct {
	Operation string
	Duration  time.Duration
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Duration)
}

// WithTimeout runs fn with a deadline and returns a descriptive timeout error
// if fn does not settle in time. The timer is always released.
func WithTimeout(ctx context.Context, operation string, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return &ErrTimeout{Operation: operation, Duration: d}
		}
		return ctx.Err()
	}
}
