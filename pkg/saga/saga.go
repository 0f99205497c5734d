// Package saga runs multi-step writes that have no shared transaction.
//
// Every step pairs an Action with a Compensate. When a step fails, the steps
// that already completed are compensated in reverse completion order. A saga
// can run its steps one after another or all at once.
//
// Compensations must be idempotent: a failed compensation may be retried by
// an operator replaying the reported event.
package saga

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Compensation undoes work that already happened.
type Compensation func(ctx context.Context) error

// Noop is a Compensation with nothing to undo.
func Noop(context.Context) error { return nil }

// Step is one unit of a saga.
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Observer receives saga lifecycle events. Implementations must be safe for
// concurrent use.
type Observer interface {
	Finished(saga string, elapsed time.Duration, err error)
	Compensated(saga, step string)
	CompensationFailed(saga, step string, err error)
}

type nopObserver struct{}

func (nopObserver) Finished(string, time.Duration, error)    {}
func (nopObserver) Compensated(string, string)               {}
func (nopObserver) CompensationFailed(string, string, error) {}

// Option configures a Saga.
type Option func(*Saga)

// WithTimeout bounds the whole execution. Compensation is not bounded by it.
func WithTimeout(d time.Duration) Option {
	return func(s *Saga) { s.timeout = d }
}

// Concurrent runs every step at the same time and joins them.
func Concurrent() Option {
	return func(s *Saga) { s.concurrent = true }
}

func WithObserver(o Observer) Option {
	return func(s *Saga) {
		if o != nil {
			s.observer = o
		}
	}
}

// Saga is not reusable: build a new one per operation.
type Saga struct {
	name       string
	steps      []Step
	timeout    time.Duration
	concurrent bool
	observer   Observer

	mu       sync.Mutex
	executed []Step
}

// New creates a saga.
//
//	s := saga.New("delete author", saga.Concurrent())
//	s.AddStep("author", deleteAuthor, restoreAuthor)
//	s.AddStep("books", deleteBooks, restoreBooks)
//	err := s.Execute(ctx)
func New(name string, opts ...Option) *Saga {
	s := &Saga{
		name:     name,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddStep appends a step. compensate may be nil when there is nothing to undo.
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Execute runs the steps. On failure the completed steps are compensated and
// the step error is returned wrapped, so callers can still match it with
// errors.Is and errors.As.
func (s *Saga) Execute(ctx context.Context) error {
	start := time.Now()
	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var err error
	if s.concurrent {
		err = s.runConcurrent(runCtx)
	} else {
		err = s.runSequential(runCtx)
	}

	if err != nil {
		// compensation outlives the request deadline but keeps its values
		_ = s.compensate(context.WithoutCancel(ctx))
	}
	s.observer.Finished(s.name, time.Since(start), err)
	return err
}

func (s *Saga) runSequential(ctx context.Context) error {
	for i, step := range s.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("saga %s: timed out before step %d (%s): %w", s.name, i, step.Name, err)
		}
		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				return fmt.Errorf("saga %s: step %s: %w", s.name, step.Name, err)
			}
		}
		s.record(step)
	}
	return nil
}

func (s *Saga) runConcurrent(ctx context.Context) error {
	// A plain group: a failing step must not cancel its siblings, otherwise
	// their outcome on the server would be unknown.
	var g errgroup.Group
	for _, step := range s.steps {
		step := step
		g.Go(func() error {
			if step.Action != nil {
				if err := step.Action(ctx); err != nil {
					return fmt.Errorf("saga %s: step %s: %w", s.name, step.Name, err)
				}
			}
			s.record(step)
			return nil
		})
	}
	return g.Wait()
}

func (s *Saga) record(step Step) {
	s.mu.Lock()
	s.executed = append(s.executed, step)
	s.mu.Unlock()
}

// Compensation returns a function undoing every step executed so far. It lets
// a caller roll back a saga that succeeded when an outer operation fails.
func (s *Saga) Compensation() Compensation {
	return s.compensate
}

func (s *Saga) compensate(ctx context.Context) error {
	s.mu.Lock()
	executed := s.executed
	s.executed = nil
	s.mu.Unlock()

	var errs []error
	for i := len(executed) - 1; i >= 0; i-- {
		step := executed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			s.observer.CompensationFailed(s.name, step.Name, err)
			errs = append(errs, fmt.Errorf("compensate %s: %w", step.Name, err))
			continue
		}
		s.observer.Compensated(s.name, step.Name)
	}
	return errors.Join(errs...)
}
