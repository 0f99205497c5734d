package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/book"
	"github.com/xiebiao/bookreviews/internal/domain/review"
	"github.com/xiebiao/bookreviews/pkg/circuitbreaker"
	"github.com/xiebiao/bookreviews/pkg/metrics"
)

const (
	keyPrefix       = "bookreviews:"
	booksCountCache = "books_count"
	avgRatingCache  = "avg_rating"

	defaultStatsTTL = 5 * time.Minute

	// tombstone replaces an invalidated value for invalidationHold. Writes
	// only land on absent keys, so a value read from the store before an
	// invalidation cannot be cached after it.
	tombstone        = "-"
	invalidationHold = 2 * time.Second
)

var (
	_ book.CountCache    = (*StatsCache)(nil)
	_ review.RatingCache = (*StatsCache)(nil)
)

// StatsCache keeps derived read-side numbers: books per author and average
// rating per book. Every failure degrades to a miss and is only logged.
type StatsCache struct {
	client  redis.Cmdable
	ttl     time.Duration
	hold    time.Duration
	breaker *circuitbreaker.CircuitBreaker
}

func NewStatsCache(client redis.Cmdable, ttl time.Duration) *StatsCache {
	metrics.InitMetrics()
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	hold := invalidationHold
	if hold > ttl {
		hold = ttl
	}
	return &StatsCache{
		client: client,
		ttl:    ttl,
		hold:   hold,
		breaker: circuitbreaker.New("redis-stats", circuitbreaker.Settings{
			Timeout: 10 * time.Second,
			OnStateChange: func(name string, from, to circuitbreaker.State) {
				metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
					Msg("circuit breaker state changed")
			},
		}),
	}
}

func booksCountKey(authorID primitive.ObjectID) string {
	return keyPrefix + "author:" + authorID.Hex() + ":" + booksCountCache
}

func avgRatingKey(bookID primitive.ObjectID) string {
	return keyPrefix + "book:" + bookID.Hex() + ":" + avgRatingCache
}

func (c *StatsCache) BooksCount(ctx context.Context, authorID primitive.ObjectID) (int64, bool) {
	var n int64
	ok := c.lookup(ctx, booksCountCache, booksCountKey(authorID), func(raw string) (err error) {
		n, err = strconv.ParseInt(raw, 10, 64)
		return err
	})
	return n, ok
}

// SetBooksCount caches n unless the key holds a value or was invalidated
// within the hold window.
func (c *StatsCache) SetBooksCount(ctx context.Context, authorID primitive.ObjectID, n int64) {
	c.write(ctx, booksCountCache, booksCountKey(authorID), n)
}

func (c *StatsCache) InvalidateBooksCount(ctx context.Context, authorIDs ...primitive.ObjectID) {
	keys := make([]string, 0, len(authorIDs))
	for _, id := range authorIDs {
		keys = append(keys, booksCountKey(id))
	}
	c.invalidate(ctx, booksCountCache, keys)
}

func (c *StatsCache) AverageRating(ctx context.Context, bookID primitive.ObjectID) (float64, bool) {
	var avg float64
	ok := c.lookup(ctx, avgRatingCache, avgRatingKey(bookID), func(raw string) (err error) {
		avg, err = strconv.ParseFloat(raw, 64)
		return err
	})
	return avg, ok
}

func (c *StatsCache) SetAverageRating(ctx context.Context, bookID primitive.ObjectID, avg float64) {
	c.write(ctx, avgRatingCache, avgRatingKey(bookID), avg)
}

func (c *StatsCache) InvalidateAverageRating(ctx context.Context, bookIDs ...primitive.ObjectID) {
	keys := make([]string, 0, len(bookIDs))
	for _, id := range bookIDs {
		keys = append(keys, avgRatingKey(id))
	}
	c.invalidate(ctx, avgRatingCache, keys)
}

// lookup reads key through the breaker and hands the value to parse. A
// missing key or a tombstone is a miss, not a failure.
func (c *StatsCache) lookup(ctx context.Context, cache, key string, parse func(raw string) error) bool {
	miss := false
	err := c.execute(func() error {
		raw, err := c.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) || (err == nil && raw == tombstone) {
			miss = true
			return nil
		}
		if err != nil {
			return err
		}
		return parse(raw)
	})

	result := "hit"
	switch {
	case err != nil:
		result = "error"
		log.Warn().Err(err).Str("cache", cache).Msg("stats cache read failed")
	case miss:
		result = "miss"
	}
	metrics.IncCounterVec(metrics.CacheRequestsTotal, map[string]string{"cache": cache, "result": result})
	return result == "hit"
}

func (c *StatsCache) write(ctx context.Context, cache, key string, value interface{}) {
	err := c.execute(func() error {
		return c.client.SetNX(ctx, key, value, c.ttl).Err()
	})
	if err != nil {
		log.Warn().Err(err).Str("cache", cache).Msg("stats cache write failed")
	}
}

// invalidate overwrites every key with a tombstone that expires after the
// hold window.
func (c *StatsCache) invalidate(ctx context.Context, cache string, keys []string) {
	if len(keys) == 0 {
		return
	}
	err := c.execute(func() error {
		_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, key := range keys {
				pipe.Set(ctx, key, tombstone, c.hold)
			}
			return nil
		})
		return err
	})
	if err != nil {
		log.Warn().Err(err).Str("cache", cache).Strs("keys", keys).Msg("stats cache invalidation failed")
	}
}

func (c *StatsCache) execute(fn func() error) error {
	err := c.breaker.Execute(fn)
	result := "success"
	switch {
	case errors.Is(err, circuitbreaker.ErrOpenState):
		result = "rejected"
	case err != nil:
		result = "failure"
	}
	metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{"name": c.breaker.Name(), "result": result})
	return err
}
