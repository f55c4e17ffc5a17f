// Package retry spaces out repeated connect attempts against a game
// server that is not up yet.  The session never retries on its own;
// ConnectMode wraps Open in a Backoff when --retries is set.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ── Permanent errors ─────────────────────────────────────────────────

// PermanentError marks a failure that another attempt cannot fix, such
// as a rejected SSH key.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so Do returns it at once.  Permanent(nil) is nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err carries a PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// ── Backoff ──────────────────────────────────────────────────────────

// Zero-value fallbacks used by Do.
const (
	fallbackDelay      = time.Second
	fallbackMaxDelay   = 60 * time.Second
	fallbackMultiplier = 2.0
	jitterFraction     = 0.25
	minWait            = time.Millisecond
)

// Backoff is an exponential wait policy between connect attempts.
// The zero value is usable: 1s first wait, doubling, capped at 60s,
// no attempt limit.
type Backoff struct {
	InitialDelay time.Duration // wait after the first failure
	MaxDelay     time.Duration // ceiling for any single wait
	Multiplier   float64       // growth factor per failure

	// MaxAttempts counts every attempt, the first included.  0 keeps
	// trying until the context ends.
	MaxAttempts int

	// Jitter spreads each wait by up to a quarter either way, so several
	// pilots started together do not hit a restarted server in lockstep.
	Jitter bool

	// Retryable picks the failures worth another attempt.  Anything it
	// rejects is returned unchanged.  nil retries every failure.
	Retryable func(error) bool

	// OnRetry runs before each wait with the failed attempt number,
	// its error and the wait about to start.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultBackoff is the CLI's connect policy: half a second, doubling,
// never more than 10s, with jitter.
func DefaultBackoff(attempts int) *Backoff {
	return &Backoff{
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		MaxAttempts:  attempts,
		Jitter:       true,
	}
}

// Do calls fn until it returns nil, a permanent or non-retryable error,
// the attempt budget runs out, or ctx ends.  fn receives the 1-based
// attempt number.
func (b *Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	delay, maxDelay, mult := b.limits()

	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		switch {
		case err == nil:
			return nil
		case IsPermanent(err):
			return errors.Unwrap(err)
		case b.Retryable != nil && !b.Retryable(err):
			return err
		case b.MaxAttempts > 0 && attempt >= b.MaxAttempts:
			return fmt.Errorf("max retries (%d) exceeded: %w", b.MaxAttempts, err)
		}

		wait := delay
		if b.Jitter {
			wait = addJitter(delay)
		}
		if b.OnRetry != nil {
			b.OnRetry(attempt, err, wait)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-t.C:
		}

		delay = time.Duration(math.Min(float64(delay)*mult, float64(maxDelay)))
	}
}

func (b *Backoff) limits() (delay, maxDelay time.Duration, mult float64) {
	delay, maxDelay, mult = b.InitialDelay, b.MaxDelay, b.Multiplier
	if delay <= 0 {
		delay = fallbackDelay
	}
	if maxDelay <= 0 {
		maxDelay = fallbackMaxDelay
	}
	if mult <= 0 {
		mult = fallbackMultiplier
	}
	return delay, maxDelay, mult
}

// addJitter moves d by a random amount within ±jitterFraction, never
// below minWait.
func addJitter(d time.Duration) time.Duration {
	spread := float64(d) * jitterFraction
	shifted := float64(d) + (rand.Float64()*2-1)*spread
	return time.Duration(math.Max(shifted, float64(minWait)))
}
