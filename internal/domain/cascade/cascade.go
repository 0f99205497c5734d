// Package cascade holds what the cascade deletes of the entity services share:
// the saga settings and the events they emit.
package cascade

import (
	"context"
	"time"

	"github.com/xiebiao/bookreviews/pkg/saga"
)

// Routing keys. Deleted events use "<entity>.deleted".
const (
	KeyCompensationFailed = "cascade.compensation_failed"
)

// DeletedKey is the routing key of the deleted event of entity.
func DeletedKey(entity string) string {
	return entity + ".deleted"
}

// Event is published after a cascade settles.
type Event struct {
	Key        string           `json:"-"`
	Entity     string           `json:"entity"`
	ID         string           `json:"id"`
	Removed    map[string]int64 `json:"removed,omitempty"`
	Step       string           `json:"step,omitempty"`
	Error      string           `json:"error,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// Notifier delivers events. Delivery is best effort: failures are the
// notifier's to log, never the caller's to handle.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Event) {}

// NopNotifier discards every event.
var NopNotifier Notifier = nopNotifier{}

// Settings configures the sagas a service runs.
type Settings struct {
	Timeout  time.Duration
	Observer saga.Observer
	Notifier Notifier
}

// NewSaga returns a concurrent saga bounded by Timeout.
func (s Settings) NewSaga(name string) *saga.Saga {
	opts := []saga.Option{saga.Concurrent(), saga.WithObserver(s.Observer)}
	if s.Timeout > 0 {
		opts = append(opts, saga.WithTimeout(s.Timeout))
	}
	return saga.New(name, opts...)
}

// Deleted publishes "<entity>.deleted".
func (s Settings) Deleted(ctx context.Context, entity, id string, removed map[string]int64) {
	n := s.Notifier
	if n == nil {
		n = NopNotifier
	}
	n.Notify(ctx, Event{
		Key:        DeletedKey(entity),
		Entity:     entity,
		ID:         id,
		Removed:    removed,
		OccurredAt: time.Now().UTC(),
	})
}
