package database

import (
	"context"
	"fmt"
	"time"
)

// Pinger is satisfied by both database clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WaitReady pings p until it answers, doubling the delay between attempts.
// onRetry, if set, is told about each failed attempt.
func WaitReady(ctx context.Context, p Pinger, attempts int, delay time.Duration, onRetry func(attempt int, err error)) error {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = p.Ping(ctx); err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		if onRetry != nil {
			onRetry(i, err)
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
	return fmt.Errorf("not ready after %d attempts: %w", attempts, err)
}
