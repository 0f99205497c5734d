package logger

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Entry is one error report queued for background logging.
type Entry struct {
	Kind    string // validation | not_found | database | internal
	Message string
	Err     error
	Fields  map[string]interface{}
}

// Sink writes error reports on a background goroutine so request handlers
// never wait on log IO. Reports are dropped when the buffer is full.
type Sink struct {
	log     zerolog.Logger
	entries chan Entry
	dropped atomic.Uint64
	wg      sync.WaitGroup
	once    sync.Once
}

func NewSink(log zerolog.Logger, buffer int) *Sink {
	if buffer <= 0 {
		buffer = 256
	}
	s := &Sink{
		log:     log,
		entries: make(chan Entry, buffer),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Report enqueues e without blocking.
func (s *Sink) Report(e Entry) {
	defer func() {
		// Report after Close must not panic the request goroutine.
		if recover() != nil {
			s.dropped.Add(1)
		}
	}()
	select {
	case s.entries <- e:
	default:
		s.dropped.Add(1)
	}
}

// Dropped returns how many reports were discarded.
func (s *Sink) Dropped() uint64 {
	return s.dropped.Load()
}

// Close drains pending reports and stops the worker.
func (s *Sink) Close() error {
	s.once.Do(func() {
		close(s.entries)
		s.wg.Wait()
	})
	return nil
}

func (s *Sink) run() {
	defer s.wg.Done()
	for e := range s.entries {
		ev := s.log.Error().Str("kind", e.Kind)
		if e.Err != nil {
			ev = ev.Err(e.Err)
		}
		if len(e.Fields) > 0 {
			ev = ev.Fields(e.Fields)
		}
		ev.Msg(e.Message)
	}
}
