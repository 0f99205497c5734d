// Command cascade-audit consumes the cascade events published by the API and
// writes them to the log.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/xiebiao/bookreviews/internal/domain/cascade"
	"github.com/xiebiao/bookreviews/internal/infrastructure/config"
	"github.com/xiebiao/bookreviews/internal/infrastructure/events"
	"github.com/xiebiao/bookreviews/pkg/logger"
	"github.com/xiebiao/bookreviews/pkg/mq"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("cascade-audit stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	closer, err := logger.Init(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
		Caller: cfg.Log.EnableCaller,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closer.Close()

	keys := []string{cascade.DeletedKey("*"), cascade.KeyCompensationFailed}
	consumer, err := mq.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, "topic", cfg.RabbitMQ.Queue, keys)
	if err != nil {
		return err
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	audit := events.NewAudit(log.Logger.With().Str("component", "cascade-audit").Logger())
	log.Info().Str("exchange", cfg.RabbitMQ.Exchange).Msg("auditing cascade events")
	return consumer.Consume(ctx, audit.Handle)
}
