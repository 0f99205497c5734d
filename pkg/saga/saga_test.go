package saga

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	steps []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.steps = append(r.steps, s)
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.steps...)
}

func (r *recorder) action(name string, err error) func(context.Context) error {
	return func(context.Context) error {
		r.add(name)
		return err
	}
}

type countingObserver struct {
	mu          sync.Mutex
	finished    int
	compensated []string
	failed      []string
}

func (o *countingObserver) Finished(string, time.Duration, error) {
	o.mu.Lock()
	o.finished++
	o.mu.Unlock()
}

func (o *countingObserver) Compensated(_, step string) {
	o.mu.Lock()
	o.compensated = append(o.compensated, step)
	o.mu.Unlock()
}

func (o *countingObserver) CompensationFailed(_, step string, _ error) {
	o.mu.Lock()
	o.failed = append(o.failed, step)
	o.mu.Unlock()
}

func TestSaga_Execute_Success(t *testing.T) {
	rec := &recorder{}
	s := New("delete book")
	s.AddStep("book", rec.action("delete book", nil), rec.action("restore book", nil))
	s.AddStep("reviews", rec.action("delete reviews", nil), rec.action("restore reviews", nil))

	if err := s.Execute(context.Background()); err != nil {
		t.Fatalf("saga failed: %v", err)
	}

	got := rec.list()
	if len(got) != 2 || got[0] != "delete book" || got[1] != "delete reviews" {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestSaga_Execute_FailureCompensatesInReverse(t *testing.T) {
	rec := &recorder{}
	s := New("delete author")
	s.AddStep("author", rec.action("delete author", nil), rec.action("restore author", nil))
	s.AddStep("books", rec.action("delete books", nil), rec.action("restore books", nil))
	boom := errors.New("write conflict")
	s.AddStep("reviews", rec.action("delete reviews", boom), rec.action("restore reviews", nil))

	err := s.Execute(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped step error, got %v", err)
	}

	expected := []string{"delete author", "delete books", "delete reviews", "restore books", "restore author"}
	got := rec.list()
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("step %d: expected %q, got %q", i, expected[i], got[i])
		}
	}
}

func TestSaga_Concurrent_CompensatesOnlySucceededSteps(t *testing.T) {
	rec := &recorder{}
	obs := &countingObserver{}
	s := New("delete user", Concurrent(), WithObserver(obs))
	s.AddStep("user", rec.action("delete user", nil), rec.action("restore user", nil))
	s.AddStep("reviews", rec.action("delete reviews", errors.New("timeout")), rec.action("restore reviews", nil))

	if err := s.Execute(context.Background()); err == nil {
		t.Fatal("expected failure")
	}

	got := rec.list()
	sort.Strings(got)
	expected := []string{"delete reviews", "delete user", "restore user"}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("expected %v, got %v", expected, got)
			break
		}
	}
	if obs.finished != 1 || len(obs.compensated) != 1 || obs.compensated[0] != "user" {
		t.Errorf("unexpected observer state: %+v", obs)
	}
}

func TestSaga_Concurrent_RunsStepsInParallel(t *testing.T) {
	s := New("parallel", Concurrent())
	var wg sync.WaitGroup
	wg.Add(2)
	barrier := func(context.Context) error {
		wg.Done()
		wg.Wait()
		return nil
	}
	s.AddStep("a", barrier, nil)
	s.AddStep("b", barrier, nil)

	done := make(chan error, 1)
	go func() { done <- s.Execute(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("steps did not run concurrently")
	}
}

func TestSaga_Execute_Timeout(t *testing.T) {
	rec := &recorder{}
	s := New("slow", WithTimeout(50*time.Millisecond))
	s.AddStep("fast", rec.action("fast", nil), rec.action("undo fast", nil))
	s.AddStep("slow",
		func(ctx context.Context) error {
			select {
			case <-time.After(time.Second):
				rec.add("slow")
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
		rec.action("undo slow", nil),
	)

	err := s.Execute(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	got := rec.list()
	if got[len(got)-1] != "undo fast" {
		t.Errorf("expected compensation last, got %v", got)
	}
}

func TestSaga_CompensationFailureIsReported(t *testing.T) {
	obs := &countingObserver{}
	s := New("delete book", WithObserver(obs))
	s.AddStep("book", Noop, func(context.Context) error { return errors.New("restore failed") })
	s.AddStep("reviews", func(context.Context) error { return errors.New("boom") }, nil)

	if err := s.Execute(context.Background()); err == nil {
		t.Fatal("expected failure")
	}
	if len(obs.failed) != 1 || obs.failed[0] != "book" {
		t.Errorf("expected failed compensation for book, got %v", obs.failed)
	}
}

func TestSaga_CompensationAfterSuccess(t *testing.T) {
	rec := &recorder{}
	s := New("books for author")
	s.AddStep("books", rec.action("delete books", nil), rec.action("restore books", nil))
	s.AddStep("reviews", rec.action("delete reviews", nil), rec.action("restore reviews", nil))

	if err := s.Execute(context.Background()); err != nil {
		t.Fatalf("saga failed: %v", err)
	}
	if err := s.Compensation()(context.Background()); err != nil {
		t.Fatalf("compensation failed: %v", err)
	}
	// a second call has nothing left to undo
	if err := s.Compensation()(context.Background()); err != nil {
		t.Fatalf("second compensation failed: %v", err)
	}

	got := rec.list()
	expected := []string{"delete books", "delete reviews", "restore reviews", "restore books"}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("step %d: expected %q, got %q", i, expected[i], got[i])
		}
	}
}
