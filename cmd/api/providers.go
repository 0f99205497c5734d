package main

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/rs/zerolog/log"

	"github.com/xiebiao/bookreviews/internal/application"
	"github.com/xiebiao/bookreviews/internal/domain/cascade"
	"github.com/xiebiao/bookreviews/internal/infrastructure/config"
	"github.com/xiebiao/bookreviews/internal/infrastructure/events"
	"github.com/xiebiao/bookreviews/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookreviews/internal/infrastructure/persistence/mongodb"
	redisinfra "github.com/xiebiao/bookreviews/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookreviews/internal/interface/http/handler"
	"github.com/xiebiao/bookreviews/internal/interface/http/router"
	"github.com/xiebiao/bookreviews/pkg/mq"
)

// infrastructureSet covers everything that talks to an external system.
var infrastructureSet = wire.NewSet(
	provideRepositories,
	provideCaches,
	provideNotifier,
)

var applicationSet = wire.NewSet(
	provideCascadeSettings,
	application.NewServices,
)

var handlerSet = wire.NewSet(
	provideHandlers,
	router.New,
)

// provideRepositories picks the store named by database.driver.
func provideRepositories(cfg *config.Config) (application.Repositories, func(), error) {
	switch cfg.Database.Driver {
	case "memory":
		log.Warn().Msg("using the in-memory store, data is lost on restart")
		return application.Repositories{
			Authors: memory.NewAuthorRepository(),
			Books:   memory.NewBookRepository(),
			Users:   memory.NewUserRepository(),
			Reviews: memory.NewReviewRepository(),
		}, func() {}, nil
	case "mongo":
		db, cleanup, err := mongodb.NewDatabase(cfg)
		if err != nil {
			return application.Repositories{}, nil, err
		}
		return application.Repositories{
			Authors: mongodb.NewAuthorRepository(db),
			Books:   mongodb.NewBookRepository(db),
			Users:   mongodb.NewUserRepository(db),
			Reviews: mongodb.NewReviewRepository(db),
		}, cleanup, nil
	default:
		return application.Repositories{}, nil, fmt.Errorf("unknown database driver: %q", cfg.Database.Driver)
	}
}

// provideCaches returns empty caches when redis is disabled.
func provideCaches(ctx context.Context, cfg *config.Config) (application.Caches, func(), error) {
	if !cfg.Redis.Enabled {
		return application.Caches{}, func() {}, nil
	}

	client, err := redisinfra.NewClient(ctx, cfg)
	if err != nil {
		return application.Caches{}, nil, err
	}
	stats := redisinfra.NewStatsCache(client, cfg.Redis.StatsTTL)

	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}
	return application.Caches{BookCounts: stats, Ratings: stats}, cleanup, nil
}

// provideNotifier publishes cascade events to RabbitMQ when enabled.
func provideNotifier(cfg *config.Config) (cascade.Notifier, func(), error) {
	if !cfg.RabbitMQ.Enabled {
		return cascade.NopNotifier, func() {}, nil
	}

	pub, err := mq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, "topic")
	if err != nil {
		return nil, nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	log.Info().Str("exchange", cfg.RabbitMQ.Exchange).Msg("cascade events enabled")

	cleanup := func() {
		if err := pub.Close(); err != nil {
			log.Warn().Err(err).Msg("rabbitmq close failed")
		}
	}
	return events.NewNotifier(pub), cleanup, nil
}

func provideCascadeSettings(cfg *config.Config, notifier cascade.Notifier) cascade.Settings {
	return cascade.Settings{
		Timeout:  cfg.Cascade.Timeout,
		Observer: events.NewObserver(notifier),
		Notifier: notifier,
	}
}

func provideHandlers(s *application.Services) router.Handlers {
	return router.Handlers{
		Authors: handler.NewAuthorHandler(s.Authors),
		Books:   handler.NewBookHandler(s.Books),
		Users:   handler.NewUserHandler(s.Users),
		Reviews: handler.NewReviewHandler(s.Reviews),
	}
}
