package mongodb

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xiebiao/bookreviews/internal/infrastructure/config"
)

// Collection names.
const (
	AuthorsCollection = "authors"
	BooksCollection   = "books"
	UsersCollection   = "users"
	ReviewsCollection = "reviews"
)

// NewDatabase connects, pings and makes sure the lookup indexes exist.
// The returned cleanup disconnects the client.
func NewDatabase(cfg *config.Config) (*mongo.Database, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.Database.URI).
		SetConnectTimeout(cfg.Database.ConnectTimeout).
		SetMaxPoolSize(cfg.Database.MaxPoolSize).
		SetMinPoolSize(cfg.Database.MinPoolSize)
	if cfg.Database.OperationTimeout > 0 {
		opts.SetTimeout(cfg.Database.OperationTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}

	if err := client.Ping(ctx, nil); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Database.Name)
	if err := ensureIndexes(ctx, db); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create indexes: %w", err)
	}

	log.Info().Str("database", cfg.Database.Name).Msg("mongo connected")
	return db, cleanup, nil
}

// ensureIndexes covers the cascade lookups. Creating an existing index is a no-op.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		BooksCollection: {
			{Keys: bson.D{{Key: "author_id", Value: 1}}},
		},
		ReviewsCollection: {
			{Keys: bson.D{{Key: "book_id", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%s: %w", coll, err)
		}
	}
	return nil
}

// Drop removes every collection of the service. Used by the seeder.
func Drop(ctx context.Context, db *mongo.Database) error {
	for _, coll := range []string{AuthorsCollection, BooksCollection, UsersCollection, ReviewsCollection} {
		if err := db.Collection(coll).Drop(ctx); err != nil {
			return fmt.Errorf("drop %s: %w", coll, err)
		}
	}
	return nil
}
