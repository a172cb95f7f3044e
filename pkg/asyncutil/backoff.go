package asyncutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var (
	// ErrMaxElapsedTime is returned when the condition was not met within the
	// configured max elapsed time.
	ErrMaxElapsedTime = errors.New("max elapsed time exceeded")

	errNotDone = errors.New("condition not met")
)

// BackoffOpts configures the exponential backoff of PollUntil.
type BackoffOpts struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxElapsedTime  time.Duration
}

// DefaultBackoffOpts returns options doubling the delay from 500ms and giving
// up after maxElapsed.
func DefaultBackoffOpts(maxElapsed time.Duration) BackoffOpts {
	return BackoffOpts{
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     8 * time.Second,
		Multiplier:      2,
		MaxElapsedTime:  maxElapsed,
	}
}

// CheckFunc performs one attempt and reports whether the target condition is
// reached. Errors are treated as a failed attempt and retried.
type CheckFunc func(ctx context.Context) (bool, error)

// PollUntil runs check with exponential backoff until it reports done, the
// context is canceled or the max elapsed time is reached.
// A context already canceled results in no attempt at all.
func PollUntil(ctx context.Context, opts BackoffOpts, check CheckFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.InitialInterval
	b.MaxInterval = opts.MaxInterval
	b.Multiplier = opts.Multiplier
	b.MaxElapsedTime = opts.MaxElapsedTime
	b.RandomizationFactor = 0
	b.Reset()

	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if !done {
			return errNotDone
		}
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(b, ctx))
	if err == nil {
		return nil
	}
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	if errors.Is(err, errNotDone) {
		return ErrMaxElapsedTime
	}
	return fmt.Errorf("%w: %s", ErrMaxElapsedTime, err)
}
