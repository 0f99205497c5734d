package review_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/book"
	"github.com/xiebiao/bookreviews/internal/domain/cascade"
	"github.com/xiebiao/bookreviews/internal/domain/query"
	"github.com/xiebiao/bookreviews/internal/domain/review"
	"github.com/xiebiao/bookreviews/internal/domain/user"
	"github.com/xiebiao/bookreviews/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/bookreviews/pkg/errors"
)

type existence struct {
	known    map[primitive.ObjectID]bool
	notFound func(primitive.ObjectID) error
	calls    atomic.Int32
}

func (e *existence) Exists(_ context.Context, id primitive.ObjectID) error {
	e.calls.Add(1)
	if !e.known[id] {
		return e.notFound(id)
	}
	return nil
}

type fixture struct {
	repo  review.Repository
	svc   *review.Service
	books *existence
	users *existence
	book  primitive.ObjectID
	user  primitive.ObjectID
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo: memory.NewReviewRepository(),
		book: primitive.NewObjectID(),
		user: primitive.NewObjectID(),
	}
	f.books = &existence{known: map[primitive.ObjectID]bool{f.book: true}, notFound: func(id primitive.ObjectID) error { return book.NotFound(id) }}
	f.users = &existence{known: map[primitive.ObjectID]bool{f.user: true}, notFound: func(id primitive.ObjectID) error { return user.NotFound(id) }}
	f.svc = review.NewService(f.repo, nil, cascade.Settings{})
	f.svc.Bind(f.books, f.users)
	return f
}

func TestService_CreateChecksReferences(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.Create(ctx, review.New(4, "Great", primitive.NewObjectID(), f.user))
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	_, err = f.svc.Create(ctx, review.New(4, "Great", f.book, primitive.NewObjectID()))
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	all, _ := f.repo.FindAll(ctx)
	assert.Empty(t, all, "nothing is written when a reference is missing")

	r, err := f.svc.Create(ctx, review.New(4, "Great", f.book, f.user))
	require.NoError(t, err)
	assert.False(t, r.ID.IsZero())
}

func TestService_CreateValidatesRating(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Create(context.Background(), review.New(6, "Too good", f.book, f.user))
	require.Error(t, err)
	assert.Equal(t, "rating", apperrors.GetAppError(err).Fields[0].Field)
	assert.Zero(t, f.books.calls.Load())
}

func TestService_UpdateRechecksChangedReferencesOnly(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	r, err := f.svc.Create(ctx, review.New(4, "Great", f.book, f.user))
	require.NoError(t, err)
	f.books.calls.Store(0)
	f.users.calls.Store(0)

	comment := "Still great"
	_, err = f.svc.Update(ctx, r.ID, review.Patch{Comment: &comment})
	require.NoError(t, err)
	assert.Zero(t, f.books.calls.Load())
	assert.Zero(t, f.users.calls.Load())

	newBook := primitive.NewObjectID()
	f.books.known[newBook] = true
	_, err = f.svc.Update(ctx, r.ID, review.Patch{BookID: &newBook})
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.books.calls.Load())
	assert.Zero(t, f.users.calls.Load())

	ghost := primitive.NewObjectID()
	_, err = f.svc.Update(ctx, r.ID, review.Patch{UserID: &ghost})
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = f.svc.Update(ctx, primitive.NewObjectID(), review.Patch{Comment: &comment})
	assert.ErrorIs(t, err, review.ErrReviewNotFound)
}

func TestService_AverageRating(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	avg, err := f.svc.AverageRatingForBook(ctx, f.book)
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg)

	for _, rating := range []int{1, 4, 5, 2} {
		_, err := f.svc.Create(ctx, review.New(rating, "ok", f.book, f.user))
		require.NoError(t, err)
	}
	avg, err = f.svc.AverageRatingForBook(ctx, f.book)
	require.NoError(t, err)
	assert.Equal(t, 3.0, avg)
}

func TestService_DeleteReviewsByUserAndRestore(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, review.New(3, "fine", f.book, f.user))
		require.NoError(t, err)
	}

	n, undo, err := f.svc.DeleteReviewsByUser(ctx, f.user)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	left, _ := f.repo.FindByUser(ctx, f.user)
	assert.Empty(t, left)

	require.NoError(t, undo(ctx))
	left, _ = f.repo.FindByUser(ctx, f.user)
	assert.Len(t, left, 3)
}

func TestService_DeleteReviewsForBooks(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	for i := 0; i < 2; i++ {
		_, err := f.svc.Create(ctx, review.New(4, "good", f.book, f.user))
		require.NoError(t, err)
	}

	n, undo, err := f.svc.DeleteReviewsForBooks(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, undo(ctx))

	n, _, err = f.svc.DeleteReviewsForBooks(ctx, []primitive.ObjectID{f.book, primitive.NewObjectID()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, _, err = f.svc.DeleteReviewsForBook(ctx, f.book)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestService_DefaultQueryOrder(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	for _, c := range []string{"cc", "aa", "bb"} {
		_, err := f.svc.Create(ctx, review.New(3, c, f.book, f.user))
		require.NoError(t, err)
	}

	res, err := f.svc.Query(ctx, query.Request{})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "aa", res.Items[0].Comment)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 10, res.Size)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	r, err := f.svc.Create(ctx, review.New(3, "fine", f.book, f.user))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, r.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, r.ID), review.ErrReviewNotFound)
}
