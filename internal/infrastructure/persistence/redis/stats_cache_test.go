package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestCache(t *testing.T) (*StatsCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStatsCache(client, time.Minute), mr
}

func TestStatsCache_BooksCount(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	authorID := primitive.NewObjectID()

	_, ok := cache.BooksCount(ctx, authorID)
	assert.False(t, ok, "empty cache is a miss")

	cache.SetBooksCount(ctx, authorID, 7)
	n, ok := cache.BooksCount(ctx, authorID)
	require.True(t, ok)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, time.Minute, mr.TTL(booksCountKey(authorID)))

	cache.InvalidateBooksCount(ctx, authorID)
	_, ok = cache.BooksCount(ctx, authorID)
	assert.False(t, ok)
}

func TestStatsCache_AverageRating(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)
	first, second := primitive.NewObjectID(), primitive.NewObjectID()

	cache.SetAverageRating(ctx, first, 3.25)
	cache.SetAverageRating(ctx, second, 4)

	avg, ok := cache.AverageRating(ctx, first)
	require.True(t, ok)
	assert.InDelta(t, 3.25, avg, 1e-9)

	cache.InvalidateAverageRating(ctx, first, second)
	_, ok = cache.AverageRating(ctx, first)
	assert.False(t, ok)
	_, ok = cache.AverageRating(ctx, second)
	assert.False(t, ok)
}

func TestStatsCache_ExpiredEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	bookID := primitive.NewObjectID()

	cache.SetAverageRating(ctx, bookID, 5)
	mr.FastForward(2 * time.Minute)

	_, ok := cache.AverageRating(ctx, bookID)
	assert.False(t, ok)
}

func TestStatsCache_UnavailableRedisDegradesToMiss(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	authorID := primitive.NewObjectID()
	cache.SetBooksCount(ctx, authorID, 2)

	mr.Close()

	for i := 0; i < 10; i++ {
		_, ok := cache.BooksCount(ctx, authorID)
		assert.False(t, ok)
	}
	cache.SetBooksCount(ctx, authorID, 3)
	cache.InvalidateBooksCount(ctx, authorID)
}

func TestStatsCache_StaleWriteAfterInvalidationIsDropped(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	authorID := primitive.NewObjectID()

	// A reader counted 4 books, then a write invalidated before it cached.
	cache.InvalidateBooksCount(ctx, authorID)
	cache.SetBooksCount(ctx, authorID, 4)

	_, ok := cache.BooksCount(ctx, authorID)
	assert.False(t, ok, "tombstone must hide the stale count")
	assert.Equal(t, invalidationHold, mr.TTL(booksCountKey(authorID)))

	mr.FastForward(invalidationHold + time.Second)
	cache.SetBooksCount(ctx, authorID, 5)
	n, ok := cache.BooksCount(ctx, authorID)
	require.True(t, ok)
	assert.Equal(t, int64(5), n)
}

func TestStatsCache_InvalidationHoldNeverExceedsTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewStatsCache(client, time.Second)
	bookID := primitive.NewObjectID()

	cache.InvalidateAverageRating(context.Background(), bookID)
	assert.Equal(t, time.Second, mr.TTL(avgRatingKey(bookID)))
}
