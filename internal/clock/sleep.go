// Package clock provides cancellable waits and retry backoff on top of the
// standard timer.
package clock

import (
	"context"
	"time"
)

// SleepWithContext blocks for d unless ctx ends first, in which case the
// context error is returned and the timer released.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
