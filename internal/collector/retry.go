package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// permanentError stops the retry loop.
type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

func permanent(err error) error { return &permanentError{err: err} }

// RetryPolicy controls how provider requests are retried.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration // doubled after each failure
}

// DefaultRetry is used by the production fetchers.
var DefaultRetry = RetryPolicy{Attempts: 3, Backoff: time.Second}

// do runs fn until it succeeds, returns a permanent error, runs out of
// attempts or ctx is cancelled.
func (p RetryPolicy) do(ctx context.Context, log logrus.FieldLogger, what string, fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		backoff := p.Backoff * time.Duration(1<<uint(i))
		log.Warnf("%s failed (attempt %d/%d): %v, retrying in %v", what, i+1, attempts, err, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}
