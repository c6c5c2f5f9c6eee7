// Package retry implements the engine's retry policy: wrap a
// unit of backend work with a fixed number of attempts and exponential
// backoff, short-circuiting on cancellation.
//
// Backend calls are wrapped in cenkalti/backoff/v4 with a context-aware
// Retry loop.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultAttempts is the default attempt count.
const DefaultAttempts = 3

// Policy wraps a fallible operation with fixed-attempt exponential backoff:
// attempt i (1-indexed) waits 10*i^2 ms before the next try, per spec
// §4.8. A cancelled context short-circuits without a further attempt.
type Policy struct {
	// Attempts is the maximum number of tries; defaults to
	// DefaultAttempts when zero.
	Attempts int
	// OnRetry, if set, is called after each failed attempt before the
	// next backoff sleep (used by the engine to bump an OTel counter).
	OnRetry func(attempt int, err error)
}

// New returns a Policy with the default attempt count.
func New() *Policy {
	return &Policy{Attempts: DefaultAttempts}
}

// permanentMarker wraps an error so backoff.Retry treats it as terminal,
// wrapping non-retryable errors as backoff.Permanent.
type permanentMarker = backoff.PermanentError

// Permanent marks err as non-retryable: Do will fail immediately instead
// of spending the remaining attempts.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op, retrying on error up to p.Attempts times with 10*i^2 ms
// backoff between attempts. A context cancellation is checked before each
// attempt and aborts immediately without consuming a retry.
func (p *Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	attempt := 0
	bo := &fixedQuadraticBackoff{}
	wrapped := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(attempts-1)), ctx)

	return backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}
		var perm *permanentMarker
		if errors.As(err, &perm) {
			return err
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
		return err
	}, wrapped)
}

// fixedQuadraticBackoff implements backoff.BackOff with the
// 10*i^2 ms schedule (i is 1-indexed, tracked internally).
type fixedQuadraticBackoff struct {
	i int
}

func (b *fixedQuadraticBackoff) NextBackOff() time.Duration {
	b.i++
	return time.Duration(10*b.i*b.i) * time.Millisecond
}

func (b *fixedQuadraticBackoff) Reset() {
	b.i = 0
}
