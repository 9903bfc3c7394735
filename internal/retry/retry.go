// Package retry provides the single retry policy applied to every
// remote call (mailbox and text-generation services). Transient
// failures are retried with exponential backoff up to a bounded
// attempt count; everything else fails immediately.
package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"google.golang.org/api/googleapi"
)

// Policy describes the backoff curve and attempt bound for remote calls.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// InitialInterval is the first backoff delay.
	InitialInterval time.Duration

	// MaxInterval caps the backoff delay.
	MaxInterval time.Duration
}

// DefaultPolicy returns the policy used for all remote calls unless
// overridden by configuration.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     4,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
	}
}

// transientError marks an error as retryable regardless of its type.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient wraps err so the retry policy treats it as retryable.
// Used by clients that detect rate limiting outside of googleapi errors.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// Retryable reports whether err is worth retrying. Rate-limit and
// server-side errors from the Google API client, explicitly marked
// transient errors, and network timeouts qualify. Context cancellation
// never does.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var transient *transientError
	if errors.As(err, &transient) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code >= 500 {
			return true
		}
		// Gmail reports per-user quota exhaustion as 403.
		if apiErr.Code == 403 && strings.Contains(apiErr.Error(), "rateLimitExceeded") {
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

// Do runs op under the policy, retrying transient failures with
// exponential backoff. The last error is returned once attempts are
// exhausted or a non-retryable error occurs.
func Do[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}

	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultPolicy().MaxAttempts
	}

	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !Retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(attempts)))
}
