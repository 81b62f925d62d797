// Package retry runs an operation repeatedly with capped exponential backoff between attempts.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds a retry loop.
type Policy struct {
	Attempts        int           // Total attempts, including the first.
	InitialInterval time.Duration // Wait after the first failure; doubles after each failure.
	MaxInterval     time.Duration // Upper bound on any single wait.
}

// DefaultPolicy waits 4s, 8s, 10s, 10s across five attempts.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:        5,
		InitialInterval: 4 * time.Second,
		MaxInterval:     10 * time.Second,
	}
}

// Operation is a single attempt. The attempt number starts at 1.
type Operation func(ctx context.Context, attempt int) error

// Notify is called after a failed attempt that will be retried.
type Notify func(attempt int, err error, wait time.Duration)

// Timer is the sleep source used between attempts.
type Timer = backoff.Timer

type options struct {
	notify Notify
	timer  Timer
}

// Option configures Do.
type Option func(*options)

// WithNotify registers a callback for failed attempts that will be retried.
func WithNotify(n Notify) Option {
	return func(o *options) {
		o.notify = n
	}
}

// WithTimer replaces the wall clock timer, used by tests to skip the waits.
func WithTimer(t Timer) Option {
	return func(o *options) {
		o.timer = t
	}
}

// Do calls op until it succeeds, the policy runs out of attempts or ctx is done. The error of the
// last attempt is returned, or ctx.Err() if ctx ended the loop.
func Do(ctx context.Context, p Policy, op Operation, opts ...Option) error {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if p.Attempts < 1 {
		p.Attempts = 1
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.Attempts-1)), ctx)

	attempt := 0
	operation := func() error {
		attempt++
		return op(ctx, attempt)
	}
	var notify backoff.Notify
	if o.notify != nil {
		notify = func(err error, wait time.Duration) {
			o.notify(attempt, err, wait)
		}
	}
	return backoff.RetryNotifyWithTimer(operation, b, notify, o.timer)
}
