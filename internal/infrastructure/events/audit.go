package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/xiebiao/bookreviews/internal/domain/cascade"
	"github.com/xiebiao/bookreviews/pkg/metrics"
	"github.com/xiebiao/bookreviews/pkg/mq"
)

// Audit writes every consumed cascade event to its logger. Its Handle method
// is an mq.Handler.
type Audit struct {
	log zerolog.Logger
}

func NewAudit(log zerolog.Logger) *Audit {
	metrics.InitMetrics()
	return &Audit{log: log}
}

// Handle rejects bodies that are not events as permanent failures, so the
// consumer drops them instead of redelivering.
func (a *Audit) Handle(_ context.Context, routingKey string, body []byte) error {
	var ev cascade.Event
	err := json.Unmarshal(body, &ev)
	metrics.IncCounterVec(metrics.EventsConsumedTotal, map[string]string{
		"routing_key": routingKey,
		"result":      metrics.Result(err),
	})
	if err != nil {
		return mq.Permanent(fmt.Errorf("decode %s event: %w", routingKey, err))
	}

	entry := a.log.Info()
	if routingKey == cascade.KeyCompensationFailed {
		entry = a.log.Error().Str("step", ev.Step).Str("error", ev.Error)
	}
	entry.
		Str("routing_key", routingKey).
		Str("entity", ev.Entity).
		Str("id", ev.ID).
		Interface("removed", ev.Removed).
		Time("occurred_at", ev.OccurredAt).
		Msg("cascade event")
	return nil
}
