package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookreviews/internal/application"
	"github.com/xiebiao/bookreviews/internal/domain/cascade"
	"github.com/xiebiao/bookreviews/internal/domain/query"
	"github.com/xiebiao/bookreviews/internal/infrastructure/persistence/memory"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	svc := application.NewServices(application.Repositories{
		Authors: memory.NewAuthorRepository(),
		Books:   memory.NewBookRepository(),
		Users:   memory.NewUserRepository(),
		Reviews: memory.NewReviewRepository(),
	}, application.Caches{}, cascade.Settings{Timeout: time.Second})

	counts, err := seed(ctx, svc, time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, Counts{Users: 5, Authors: 3, Books: 4, Reviews: 9}, counts)

	res, err := svc.Books.Query(ctx, query.Request{
		Attributes: []string{"title"},
		Values:     []string{"Pepa Pig 1"},
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	view, err := svc.Books.GetOne(ctx, res.Items[0].ID)
	require.NoError(t, err)
	assert.InDelta(t, 10.0/3.0, view.AverageRating, 1e-9)

	pepa, err := svc.Authors.GetOne(ctx, res.Items[0].AuthorID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pepa.BooksCount)
}
