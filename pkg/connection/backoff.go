package connection

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Retry defaults for BLE connection attempts.
const (
	// DefaultAttempts is the number of connection attempts per round.
	DefaultAttempts = 3

	// InitialBackoff is the delay before the first retry.
	InitialBackoff = 200 * time.Millisecond

	// MaxBackoff is the maximum delay between attempts.
	MaxBackoff = 5 * time.Second

	// BackoffMultiplier is the factor by which backoff increases.
	BackoffMultiplier = 2.0

	// JitterFactor is the maximum jitter as a fraction of base delay.
	JitterFactor = 0.25
)

// ErrRetriesExhausted indicates every attempt of a round failed.
var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryConfig controls how connection attempts are repeated.
type RetryConfig struct {
	// Attempts is the total number of attempts per round (default 3).
	Attempts int

	// Initial is the delay before the first retry (default 200ms).
	Initial time.Duration

	// Max caps the delay between attempts (default 5s).
	Max time.Duration

	// Multiplier grows the delay after each retry. 1 keeps it fixed.
	Multiplier float64

	// Jitter is the maximum random extra delay as a fraction of the base.
	Jitter float64

	// AttemptTimeout bounds a single attempt (0 = no timeout).
	AttemptTimeout time.Duration
}

// DefaultRetryConfig returns three attempts 200ms apart.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:   DefaultAttempts,
		Initial:    InitialBackoff,
		Max:        MaxBackoff,
		Multiplier: 1,
		Jitter:     0,
	}
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.Attempts <= 0 {
		c.Attempts = DefaultAttempts
	}
	if c.Initial <= 0 {
		c.Initial = InitialBackoff
	}
	if c.Max <= 0 {
		c.Max = MaxBackoff
	}
	if c.Max < c.Initial {
		c.Max = c.Initial
	}
	if c.Multiplier < 1 {
		c.Multiplier = BackoffMultiplier
	}
	if c.Jitter < 0 {
		c.Jitter = 0
	}
	return c
}

// Backoff calculates exponential backoff delays with jitter.
type Backoff struct {
	mu sync.Mutex

	// Current backoff delay (before jitter)
	current time.Duration

	initial    time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64

	attempts int

	rng *rand.Rand
}

// NewBackoff creates a backoff calculator from cfg. Zero fields take the
// package defaults.
func NewBackoff(cfg RetryConfig) *Backoff {
	cfg = cfg.withDefaults()
	return &Backoff{
		current:    cfg.Initial,
		initial:    cfg.Initial,
		max:        cfg.Max,
		multiplier: cfg.Multiplier,
		jitter:     cfg.Jitter,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the next backoff delay (with jitter) and advances the backoff.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	delay := b.addJitter(b.current)

	b.attempts++
	next := time.Duration(float64(b.current) * b.multiplier)
	if next > b.max {
		next = b.max
	}
	b.current = next

	return delay
}

// Reset resets the backoff to initial values.
// Call this after a successful connection.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.initial
	b.attempts = 0
}

// Attempts returns the number of delays handed out since the last reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// Current returns the current base backoff (without jitter).
func (b *Backoff) Current() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *Backoff) addJitter(d time.Duration) time.Duration {
	if b.jitter <= 0 {
		return d
	}
	return d + time.Duration(float64(d)*b.jitter*b.rng.Float64())
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. errors.Is and errors.As still
// see the wrapped error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Retry calls fn until it succeeds, fails permanently, runs out of attempts
// or ctx is done. attempt starts at 1.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context, attempt int) error) error {
	cfg = cfg.withDefaults()
	backoff := NewBackoff(cfg)

	var lastErr error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(backoff.Next())
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%w (last error: %w)", ctx.Err(), lastErr)
			case <-timer.C:
			}
		}

		lastErr = runAttempt(ctx, cfg.AttemptTimeout, attempt, fn)
		if lastErr == nil {
			return nil
		}
		if IsPermanent(lastErr) {
			return lastErr
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%w (last error: %w)", ctx.Err(), lastErr)
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, cfg.Attempts, lastErr)
}

func runAttempt(ctx context.Context, timeout time.Duration, attempt int, fn func(ctx context.Context, attempt int) error) error {
	if timeout <= 0 {
		return fn(ctx, attempt)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx, attempt)
}
