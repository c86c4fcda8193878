package store

import (
	"context"
	"errors"
	"time"
)

// WithRetry runs fn up to attempts times, waiting base, 2*base, 3*base...
// between tries. Only transient failures are retried; validation and
// not-found errors surface immediately. The caller's context bounds the
// whole sequence.
func WithRetry(ctx context.Context, attempts int, base time.Duration, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i) * base):
			}
		}
		err = fn(ctx)
		if err == nil || !errors.Is(err, ErrTransient) {
			return err
		}
	}
	return err
}
