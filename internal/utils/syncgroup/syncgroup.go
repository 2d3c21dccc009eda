package syncgroup

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/xerrors"
)

type (
	Group interface {
		Go(fn func() error)
		Wait() error
	}

	Option func(group *groupImpl)

	// MapFn transforms the input at the given index.
	MapFn[T any, R any] func(ctx context.Context, index int, input T) (R, error)

	groupImpl struct {
		group   *errgroup.Group
		ctx     context.Context
		err     error
		sem     *semaphore.Weighted
		recover bool
	}
)

var ErrPanic = xerrors.New("worker panicked")

func New(ctx context.Context, opts ...Option) (Group, context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	group := &groupImpl{
		group: g,
		ctx:   ctx,
	}

	for _, opt := range opts {
		opt(group)
	}

	return group, ctx
}

// WithThrottling bounds the number of workers running at the same time.
// A non-positive limit leaves the group unbounded.
func WithThrottling(limit int) Option {
	return func(group *groupImpl) {
		if limit > 0 {
			group.sem = semaphore.NewWeighted(int64(limit))
		}
	}
}

// WithRecover converts a panicking worker into an error wrapping ErrPanic.
func WithRecover() Option {
	return func(group *groupImpl) {
		group.recover = true
	}
}

func (g *groupImpl) Go(fn func() error) {
	if g.sem == nil {
		g.group.Go(func() error {
			return g.run(fn)
		})
		return
	}

	// Block until a slot is available.
	if err := g.sem.Acquire(g.ctx, 1); err != nil {
		// errgroup cancels the context once any worker fails, which makes Acquire fail.
		// Save the error and return it in Wait.
		g.err = err
		return
	}

	g.group.Go(func() error {
		defer g.sem.Release(1)
		return g.run(fn)
	})
}

func (g *groupImpl) Wait() error {
	// The error returned by the worker is more important than the one from the semaphore.
	if err := g.group.Wait(); err != nil {
		return err
	}

	if g.err != nil {
		return g.err
	}

	return nil
}

func (g *groupImpl) run(fn func() error) (err error) {
	if g.recover {
		defer func() {
			if r := recover(); r != nil {
				err = xerrors.Errorf("%v: %w", fmt.Sprint(r), ErrPanic)
			}
		}()
	}

	return fn()
}

// Map applies fn to every input concurrently and returns the outputs in input order.
// The first error cancels the context passed to the remaining calls and no output is returned.
func Map[T any, R any](ctx context.Context, inputs []T, fn MapFn[T, R], opts ...Option) ([]R, error) {
	outputs := make([]R, len(inputs))
	group, ctx := New(ctx, opts...)
	for i := range inputs {
		i := i
		group.Go(func() error {
			output, err := fn(ctx, i, inputs[i])
			if err != nil {
				return err
			}

			outputs[i] = output
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return outputs, nil
}
