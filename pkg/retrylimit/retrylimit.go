// Package retrylimit paces calls against a rate-limited API and retries the
// ones that fail transiently.
//
//	lim := retrylimit.NewAdaptiveLimiter(40, 1, 50, 1, 0.5)
//	err := retrylimit.Do(ctx, lim, retrylimit.Config{Retryable: isTransient}, func() error {
//	    return callAPI()
//	})
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AdaptiveLimiter is a token bucket whose rate grows after successes and
// shrinks after throttling.
type AdaptiveLimiter struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
}

func NewAdaptiveLimiter(initial, min, max, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if min <= 0 {
		min = 1
	}
	if initial < min {
		initial = min
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, 1),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Unlimited returns a limiter that never waits.
func Unlimited() *AdaptiveLimiter {
	return &AdaptiveLimiter{limiter: rate.NewLimiter(rate.Inf, 1), minLimit: rate.Inf, maxLimit: rate.Inf, stepDown: 1}
}

func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate unless throttling happened in the last 10 seconds.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > 10*time.Second {
		a.setLimit(a.limiter.Limit() + a.stepUp)
	}
}

// Throttled lowers the rate by stepDown.
func (a *AdaptiveLimiter) Throttled() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.setLimit(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

func (a *AdaptiveLimiter) Limit() rate.Limit {
	return a.limiter.Limit()
}

func (a *AdaptiveLimiter) setLimit(l rate.Limit) {
	l = max(a.minLimit, min(a.maxLimit, l))
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
	}
}

// Config controls Do. Retryable reports whether err is transient and, when it
// is a throttling response, how long the server asked to wait.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Retryable    func(err error) (retry bool, wait time.Duration)
	OnRetry      func(attempt int, err error, wait time.Duration)
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = 500 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 10 * time.Second
	}
	if c.Retryable == nil {
		c.Retryable = func(error) (bool, time.Duration) { return false, 0 }
	}
	return c
}

var ErrAttemptsExceeded = errors.New("retrylimit: attempts exceeded")

// Do calls fn until it succeeds, fails permanently, ctx ends, or the attempt
// budget runs out. Each attempt first waits on lim.
func Do(ctx context.Context, lim *AdaptiveLimiter, cfg Config, fn func() error) error {
	cfg = cfg.withDefaults()
	delay := cfg.InitialDelay

	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if lim != nil {
			if werr := lim.Wait(ctx); werr != nil {
				return werr
			}
		}

		if err = fn(); err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}

		retry, wait := cfg.Retryable(err)
		if !retry || attempt == cfg.MaxAttempts {
			break
		}
		if wait > 0 {
			if lim != nil {
				lim.Throttled()
			}
		} else {
			wait = delay
			delay = min(cfg.MaxDelay, delay*2)
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}

	if retry, _ := cfg.Retryable(err); retry {
		return fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExceeded, cfg.MaxAttempts, err)
	}
	return err
}
