// Package retry wraps outbound calls with a shared minimum inter-call delay,
// bounded retries, and exponential backoff. A single Controller is shared by
// all batch workers so total provider throughput stays bounded regardless of
// pool size.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// ErrExhausted wraps the last failure after the retry budget is consumed.
var ErrExhausted = errors.New("retry budget exhausted")

// Policy configures retry behavior for external calls.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
}

// DefaultPolicy returns the policy used for provider and completion calls:
// three retries with exponential backoff from 1s to 30s and ±25% jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

func (p *Policy) normalize() {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	if p.Multiplier < 1.0 {
		p.Multiplier = 2.0
	}
}

// Controller executes functions under the retry policy and a shared rate
// limiter enforcing the minimum delay between consecutive outbound calls.
type Controller struct {
	policy  Policy
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewController creates a Controller. minInterval is the minimum spacing
// between outbound calls across all users of this controller; zero disables
// the limiter.
func NewController(policy Policy, minInterval time.Duration, logger *slog.Logger) *Controller {
	policy.normalize()

	var limiter *rate.Limiter
	if minInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(minInterval), 1)
	}

	return &Controller{
		policy:  policy,
		limiter: limiter,
		logger:  logger.With("system", "retry"),
	}
}

// Do executes fn under the controller's policy. Every attempt first waits on
// the shared limiter. Failures marked with Terminal abort immediately without
// consuming the retry budget; all other failures retry with backoff until the
// budget is exhausted, at which point the last error is wrapped in ErrExhausted.
func (c *Controller) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= c.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			c.logger.Debug(
				"retrying call",
				"op", op,
				"attempt", attempt,
				"max_retries", c.policy.MaxRetries,
				"delay", delay,
				"error", lastErr,
			)

			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: retry cancelled: %w", op, ctx.Err())
			case <-time.After(delay):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("%s: rate wait: %w", op, err)
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		var terminal *TerminalError
		if errors.As(lastErr, &terminal) {
			return fmt.Errorf("%s: %w", op, terminal.Err)
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", op, ctx.Err())
		}
	}

	c.logger.Warn(
		"retry budget exhausted",
		"op", op,
		"attempts", c.policy.MaxRetries+1,
		"error", lastErr,
	)

	return fmt.Errorf("%s: %w after %d attempts: %w", op, ErrExhausted, c.policy.MaxRetries+1, lastErr)
}

// Result executes fn under ctrl's policy and returns its value.
func Result[T any](ctx context.Context, ctrl *Controller, op string, fn func(context.Context) (T, error)) (T, error) {
	var result T
	err := ctrl.Do(ctx, op, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = fn(ctx)
		return innerErr
	})
	return result, err
}

// backoff computes the delay before the given attempt: exponential growth
// capped at MaxDelay, with optional ±25% jitter to spread concurrent retries.
func (c *Controller) backoff(attempt int) time.Duration {
	delay := float64(c.policy.InitialDelay) * math.Pow(c.policy.Multiplier, float64(attempt-1))

	if delay > float64(c.policy.MaxDelay) {
		delay = float64(c.policy.MaxDelay)
	}

	if c.policy.Jitter {
		jitter := delay * 0.25
		delay += (rand.Float64()*2 - 1) * jitter
	}

	if delay < float64(c.policy.InitialDelay) {
		delay = float64(c.policy.InitialDelay)
	}

	return time.Duration(delay)
}

// TerminalError marks a failure that no retry can recover from, such as a
// credential rejection or malformed input.
type TerminalError struct {
	Err error
}

func (e *TerminalError) Error() string {
	return e.Err.Error()
}

func (e *TerminalError) Unwrap() error {
	return e.Err
}

// Terminal wraps err so the controller aborts without retrying.
func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return &TerminalError{Err: err}
}

// IsTerminal reports whether err carries a Terminal marker.
func IsTerminal(err error) bool {
	var terminal *TerminalError
	return errors.As(err, &terminal)
}
