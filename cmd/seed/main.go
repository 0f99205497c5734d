// Command seed fills the configured MongoDB database with demo data.
//
//	go run ./cmd/seed -clear
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xiebiao/bookreviews/internal/application"
	"github.com/xiebiao/bookreviews/internal/domain/cascade"
	"github.com/xiebiao/bookreviews/internal/infrastructure/config"
	"github.com/xiebiao/bookreviews/internal/infrastructure/persistence/mongodb"
	"github.com/xiebiao/bookreviews/pkg/logger"
)

func main() {
	clearFirst := flag.Bool("clear", false, "drop the collections before seeding")
	flag.Parse()

	if err := run(*clearFirst); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}

func run(clearFirst bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	closer, err := logger.Init(logger.Options{Level: cfg.Log.Level, Format: "console", Output: "stderr"})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closer.Close()

	db, cleanup, err := mongodb.NewDatabase(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if clearFirst {
		if err := mongodb.Drop(ctx, db); err != nil {
			return fmt.Errorf("clear database: %w", err)
		}
		log.Info().Str("database", cfg.Database.Name).Msg("collections dropped")
	}

	svc := application.NewServices(application.Repositories{
		Authors: mongodb.NewAuthorRepository(db),
		Books:   mongodb.NewBookRepository(db),
		Users:   mongodb.NewUserRepository(db),
		Reviews: mongodb.NewReviewRepository(db),
	}, application.Caches{}, cascade.Settings{Timeout: cfg.Cascade.Timeout})

	counts, err := seed(ctx, svc, time.Now())
	if err != nil {
		return err
	}
	log.Info().
		Int("users", counts.Users).
		Int("authors", counts.Authors).
		Int("books", counts.Books).
		Int("reviews", counts.Reviews).
		Msg("database seeded")
	return nil
}
