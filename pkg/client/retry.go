package client

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Backoff computes the wait before retry attempt n (0-based).
type Backoff struct {
	Base     time.Duration
	Max      time.Duration
	Factor   float64
	Jitter   float64 // fraction of the delay, 0.0 to 1.0
	Attempts int
}

// DefaultBackoff retries three times starting at 100ms.
func DefaultBackoff() Backoff {
	return Backoff{
		Base:     100 * time.Millisecond,
		Max:      2 * time.Second,
		Factor:   2.0,
		Jitter:   0.2,
		Attempts: 3,
	}
}

// Delay returns the capped, jittered wait for attempt n.
func (b Backoff) Delay(n int) time.Duration {
	delay := float64(b.Base)
	for i := 0; i < n; i++ {
		delay *= b.Factor
	}
	if delay > float64(b.Max) {
		delay = float64(b.Max)
	}
	if b.Jitter > 0 {
		delay += delay * (rand.Float64()*2 - 1) * b.Jitter
	}
	if delay < 0 {
		return 0
	}
	return time.Duration(delay)
}

// retry runs fn until it succeeds, returns a non-retryable error, or the
// attempts run out. The last error is returned.
func (b Backoff) retry(ctx context.Context, fn func() error) error {
	attempts := b.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for n := 0; n < attempts; n++ {
		if err = fn(); err == nil || !retryable(err) {
			return err
		}
		if n == attempts-1 {
			break
		}
		select {
		case <-time.After(b.Delay(n)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// retryable reports whether err came from the transport or a 5xx.
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
