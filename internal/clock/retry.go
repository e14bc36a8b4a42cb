package clock

import (
	"context"
	"time"
)

// Retry runs fn up to attempts times, sleeping between tries with exponential
// backoff starting at baseDelay. Returns nil on the first success, the context
// error if canceled mid-wait, otherwise the last fn error.
func Retry(ctx context.Context, attempts int, baseDelay time.Duration, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	delay := baseDelay
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		if sleepErr := SleepWithContext(ctx, delay); sleepErr != nil {
			return sleepErr
		}
		delay *= 2
	}
	return err
}
