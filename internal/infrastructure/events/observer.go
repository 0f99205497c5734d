package events

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xiebiao/bookreviews/internal/domain/cascade"
	"github.com/xiebiao/bookreviews/pkg/metrics"
	"github.com/xiebiao/bookreviews/pkg/saga"
)

// Observer records saga outcomes. A failed compensation leaves the store
// inconsistent, so besides the log line it is published for operators.
type Observer struct {
	notifier cascade.Notifier
}

var _ saga.Observer = (*Observer)(nil)

func NewObserver(notifier cascade.Notifier) *Observer {
	metrics.InitMetrics()
	if notifier == nil {
		notifier = cascade.NopNotifier
	}
	return &Observer{notifier: notifier}
}

func (o *Observer) Finished(name string, elapsed time.Duration, err error) {
	metrics.IncCounterVec(metrics.CascadeExecutionsTotal, map[string]string{"cascade": name, "result": metrics.Result(err)})
	metrics.ObserveHistogramVec(metrics.CascadeDuration, map[string]string{"cascade": name}, elapsed.Seconds())

	if err != nil {
		log.Warn().Err(err).Str("cascade", name).Dur("elapsed", elapsed).Msg("cascade rolled back")
		return
	}
	log.Debug().Str("cascade", name).Dur("elapsed", elapsed).Msg("cascade finished")
}

func (o *Observer) Compensated(name, step string) {
	metrics.IncCounterVec(metrics.CascadeCompensationsTotal, map[string]string{"cascade": name, "result": "success"})
	log.Info().Str("cascade", name).Str("step", step).Msg("cascade step compensated")
}

func (o *Observer) CompensationFailed(name, step string, err error) {
	metrics.IncCounterVec(metrics.CascadeCompensationsTotal, map[string]string{"cascade": name, "result": "failure"})
	log.Error().Err(err).Str("cascade", name).Str("step", step).Msg("cascade compensation failed")

	o.notifier.Notify(context.Background(), cascade.Event{
		Key:        cascade.KeyCompensationFailed,
		Entity:     entityOf(name),
		Step:       step,
		Error:      err.Error(),
		OccurredAt: time.Now().UTC(),
	})
}

// entityOf maps "book.delete_for_author" to "book".
func entityOf(sagaName string) string {
	entity, _, _ := strings.Cut(sagaName, ".")
	return entity
}
