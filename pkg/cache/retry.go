package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrBackend marks a Redis or MongoDB failure that may clear up on its
	// own. Backends wrap it with Retryable.
	ErrBackend = errors.New("cache backend unavailable")

	// ErrUnknownBackend is returned by Open for an unsupported URL scheme.
	ErrUnknownBackend = errors.New("unknown cache backend")
)

type retryableError struct{ err error }

func (e retryableError) Error() string { return e.err.Error() }
func (e retryableError) Unwrap() error { return e.err }

// Retryable marks err as transient. Nil stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retryableError{err}
}

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool {
	var re retryableError
	return errors.As(err, &re)
}

// Backoff retries transient backend calls with a doubling delay capped at
// Max.
type Backoff struct {
	Attempts int
	Initial  time.Duration
	Max      time.Duration
}

// DefaultBackoff is used by the Redis and MongoDB caches.
var DefaultBackoff = Backoff{Attempts: 3, Initial: 200 * time.Millisecond, Max: 2 * time.Second}

// Do calls fn until it succeeds, returns an error not marked Retryable, or
// the attempts run out. The last error is returned.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Initial

	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
		if b.Max > 0 && delay > b.Max {
			delay = b.Max
		}
	}
	return err
}

// RetryWithBackoff runs fn under DefaultBackoff.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Do(ctx, fn)
}
