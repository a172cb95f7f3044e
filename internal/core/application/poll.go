package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tdex-network/buysell-daemon/pkg/asyncutil"
)

// Poll is the handle of a running backoff poll.
type Poll struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	lock sync.RWMutex
	err  error
}

func newPoll() *Poll {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poll{
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func (p *Poll) start(fn func(ctx context.Context) error) {
	go func() {
		defer close(p.done)

		var err error
		if p.ctx.Err() != nil {
			err = ErrPollCanceled
		} else {
			err = pollError(fn(p.ctx))
		}

		p.lock.Lock()
		p.err = err
		p.lock.Unlock()
	}()
}

// Cancel stops any further attempt. It's safe to call at any time, any number
// of times.
func (p *Poll) Cancel() {
	p.cancel()
}

// Done is closed once the poll has settled.
func (p *Poll) Done() <-chan struct{} {
	return p.done
}

func (p *Poll) IsRunning() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Err returns the outcome of a settled poll, nil on success.
func (p *Poll) Err() error {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.err
}

// Wait blocks until the poll settles or ctx is done.
func (p *Poll) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return p.Err()
	}
}

func pollError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return ErrPollCanceled
	case errors.Is(err, asyncutil.ErrMaxElapsedTime):
		return fmt.Errorf("%w: %s", ErrPollTimeout, err)
	default:
		return err
	}
}
