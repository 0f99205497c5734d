// Package events connects cascade deletes to the message broker: deleted and
// compensation-failed events go out through a Notifier, saga outcomes are
// recorded by an Observer, and Audit consumes the events back.
package events

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/xiebiao/bookreviews/internal/domain/cascade"
	"github.com/xiebiao/bookreviews/pkg/metrics"
)

// Publisher is satisfied by *mq.Publisher.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// Notifier publishes cascade events. Publish failures are counted and logged,
// never returned: the delete they describe has already happened.
type Notifier struct {
	pub Publisher
}

var _ cascade.Notifier = (*Notifier)(nil)

func NewNotifier(pub Publisher) *Notifier {
	metrics.InitMetrics()
	return &Notifier{pub: pub}
}

func (n *Notifier) Notify(ctx context.Context, ev cascade.Event) {
	// the request may be gone by the time the broker answers
	err := n.pub.Publish(context.WithoutCancel(ctx), ev.Key, ev)
	metrics.IncCounterVec(metrics.EventsPublishedTotal, map[string]string{
		"routing_key": ev.Key,
		"result":      metrics.Result(err),
	})
	if err != nil {
		log.Error().Err(err).
			Str("routing_key", ev.Key).
			Str("entity", ev.Entity).
			Str("id", ev.ID).
			Msg("publish cascade event failed")
	}
}
