// Package retry computes backoff delays for transient failures and runs
// operations under such a policy.
package retry

import (
	"context"
	"time"

	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
)

// Mode selects how delays grow between attempts.
type Mode string

const (
	Fixed       Mode = "fixed"
	Linear      Mode = "linear"
	Exponential Mode = "exponential"
)

// Policy encapsulates retry/backoff settings. It is immutable after construction.
type Policy struct {
	Mode       Mode
	Initial    time.Duration // base delay
	Max        time.Duration // cap for growth
	MaxRetries int           // attempts after the first failure
}

// DefaultPolicy is short enough to run inside a compile job: exponential
// from 50ms, capped at 500ms, two retries.
func DefaultPolicy() Policy {
	return Policy{Mode: Exponential, Initial: 50 * time.Millisecond, Max: 500 * time.Millisecond, MaxRetries: 2}
}

// NewPolicy builds a policy; zero or unknown values fall back to defaults.
func NewPolicy(mode Mode, initial, maxDelay time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDelay > 0 {
		p.Max = maxDelay
	}
	switch mode {
	case Fixed, Linear, Exponential:
		p.Mode = mode
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the backoff before retry number retryCount (first retry => 1).
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case Fixed:
		return p.Initial
	case Exponential:
		d = p.Initial << (retryCount - 1)
	default:
		d = time.Duration(retryCount) * p.Initial
	}
	if d > p.Max || d <= 0 {
		return p.Max
	}
	return d
}

// Validate ensures the policy can be applied.
func (p Policy) Validate() error {
	switch {
	case p.Initial <= 0:
		return ferrors.ValidationError("retry initial delay must be > 0").Build()
	case p.Max <= 0:
		return ferrors.ValidationError("retry max delay must be > 0").Build()
	case p.MaxRetries < 0:
		return ferrors.ValidationError("retry count cannot be negative").Build()
	}
	return nil
}

// Do runs op until it succeeds, the retries are used up or ctx is done.
// Classified errors that cannot be retried end the loop at once. The last
// error is returned.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	err := op(ctx)
	for attempt := 1; err != nil && attempt <= p.MaxRetries; attempt++ {
		if ce, ok := ferrors.AsClassified(err); ok && !ce.CanRetry() {
			return err
		}
		timer := time.NewTimer(p.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		err = op(ctx)
	}
	return err
}
