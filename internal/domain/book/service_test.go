package book_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/author"
	"github.com/xiebiao/bookreviews/internal/domain/book"
	"github.com/xiebiao/bookreviews/internal/domain/cascade"
	"github.com/xiebiao/bookreviews/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/bookreviews/pkg/errors"
	"github.com/xiebiao/bookreviews/pkg/saga"
)

type fakeAuthors struct {
	known map[primitive.ObjectID]bool
	calls int
	mu    sync.Mutex
}

func (f *fakeAuthors) Exists(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if !f.known[id] {
		return author.NotFound(id)
	}
	return nil
}

type fakeReviews struct {
	rating    float64
	perBook   int64
	deleteErr error

	mu       sync.Mutex
	deleted  [][]primitive.ObjectID
	restored int
}

func (f *fakeReviews) AverageRatingForBook(context.Context, primitive.ObjectID) (float64, error) {
	return f.rating, nil
}

func (f *fakeReviews) DeleteReviewsForBook(ctx context.Context, id primitive.ObjectID) (int64, saga.Compensation, error) {
	return f.DeleteReviewsForBooks(ctx, []primitive.ObjectID{id})
}

func (f *fakeReviews) DeleteReviewsForBooks(_ context.Context, ids []primitive.ObjectID) (int64, saga.Compensation, error) {
	if f.deleteErr != nil {
		return 0, nil, f.deleteErr
	}
	f.mu.Lock()
	f.deleted = append(f.deleted, ids)
	f.mu.Unlock()
	return f.perBook * int64(len(ids)), func(context.Context) error {
		f.mu.Lock()
		f.restored++
		f.mu.Unlock()
		return nil
	}, nil
}

type countingCache struct {
	counts      map[primitive.ObjectID]int64
	invalidated []primitive.ObjectID
}

func (c *countingCache) BooksCount(_ context.Context, id primitive.ObjectID) (int64, bool) {
	n, ok := c.counts[id]
	return n, ok
}

func (c *countingCache) SetBooksCount(_ context.Context, id primitive.ObjectID, n int64) {
	c.counts[id] = n
}

func (c *countingCache) InvalidateBooksCount(_ context.Context, ids ...primitive.ObjectID) {
	for _, id := range ids {
		delete(c.counts, id)
	}
	c.invalidated = append(c.invalidated, ids...)
}

// lateWriter saves one more book for the author right after the author's
// books are read, as a concurrent Create would.
type lateWriter struct {
	book.Repository
	late *book.Book
}

func (r *lateWriter) FindByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]*book.Book, error) {
	books, err := r.Repository.FindByAuthor(ctx, authorID)
	if err != nil || r.late == nil {
		return books, err
	}
	saved, err := r.Repository.Save(ctx, r.late)
	r.late = saved
	return books, err
}

type fixture struct {
	repo    book.Repository
	svc     *book.Service
	authors *fakeAuthors
	reviews *fakeReviews
	cache   *countingCache
	author  primitive.ObjectID
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:    memory.NewBookRepository(),
		reviews: &fakeReviews{},
		cache:   &countingCache{counts: map[primitive.ObjectID]int64{}},
		author:  primitive.NewObjectID(),
	}
	f.authors = &fakeAuthors{known: map[primitive.ObjectID]bool{f.author: true}}
	f.svc = book.NewService(f.repo, f.cache, cascade.Settings{Timeout: time.Second})
	f.svc.Bind(f.authors, f.reviews)
	return f
}

func newBook(authorID primitive.ObjectID) *book.Book {
	return book.New("1111111111", "Kindred", "A time travel novel", time.Date(1979, 6, 1, 0, 0, 0, 0, time.UTC), authorID)
}

func TestService_CreateRequiresAuthor(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.Create(ctx, newBook(primitive.NewObjectID()))
	assert.ErrorIs(t, err, author.ErrAuthorNotFound)
	all, _ := f.repo.FindAll(ctx)
	assert.Empty(t, all)

	b, err := f.svc.Create(ctx, newBook(f.author))
	require.NoError(t, err)
	assert.False(t, b.ID.IsZero())
	assert.Contains(t, f.cache.invalidated, f.author)
}

func TestService_CreateValidates(t *testing.T) {
	f := setup(t)
	b := newBook(f.author)
	b.ISBN = "123"
	b.Description = "short"

	_, err := f.svc.Create(context.Background(), b)
	require.Error(t, err)
	fields := apperrors.GetAppError(err).Fields
	require.Len(t, fields, 2)
	assert.Equal(t, "description", fields[0].Field)
	assert.Equal(t, "isbn", fields[1].Field)
	assert.Zero(t, f.authors.calls)
}

func TestService_UpdateChecksNewAuthorOnly(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	b, err := f.svc.Create(ctx, newBook(f.author))
	require.NoError(t, err)
	callsAfterCreate := f.authors.calls

	title := "Kindred (reissue)"
	sameAuthor := f.author
	_, err = f.svc.Update(ctx, b.ID, book.Patch{Title: &title, AuthorID: &sameAuthor})
	require.NoError(t, err)
	assert.Equal(t, callsAfterCreate, f.authors.calls)

	missing := primitive.NewObjectID()
	_, err = f.svc.Update(ctx, b.ID, book.Patch{AuthorID: &missing})
	assert.ErrorIs(t, err, author.ErrAuthorNotFound)

	stored, err := f.repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, f.author, stored.AuthorID)
	assert.Equal(t, title, stored.Title)
}

func TestService_UpdateMissing(t *testing.T) {
	f := setup(t)
	title := "Anything"
	_, err := f.svc.Update(context.Background(), primitive.NewObjectID(), book.Patch{Title: &title})
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestService_GetOne(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.reviews.rating = 3.0
	b, err := f.svc.Create(ctx, newBook(f.author))
	require.NoError(t, err)

	view, err := f.svc.GetOne(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, view.AverageRating)
	assert.Equal(t, "Kindred", view.Title)
}

func TestService_CountBooksForAuthorUsesCache(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, err := f.svc.Create(ctx, newBook(f.author))
	require.NoError(t, err)

	n, err := f.svc.CountBooksForAuthor(ctx, f.author)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, int64(1), f.cache.counts[f.author])

	f.cache.counts[f.author] = 42
	n, err = f.svc.CountBooksForAuthor(ctx, f.author)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestService_DeleteBooksForAuthor(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	for i := 0; i < 2; i++ {
		_, err := f.svc.Create(ctx, newBook(f.author))
		require.NoError(t, err)
	}

	f.reviews.perBook = 3
	removed, undo, err := f.svc.DeleteBooksForAuthor(ctx, f.author)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"books": 2, "reviews": 6}, removed)
	n, _ := f.repo.CountByAuthor(ctx, f.author)
	assert.Zero(t, n)
	require.Len(t, f.reviews.deleted, 1)
	assert.Len(t, f.reviews.deleted[0], 2)

	require.NoError(t, undo(ctx))
	n, _ = f.repo.CountByAuthor(ctx, f.author)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 1, f.reviews.restored)
}

func TestService_DeleteBooksForAuthorWithoutBooks(t *testing.T) {
	f := setup(t)
	removed, undo, err := f.svc.DeleteBooksForAuthor(context.Background(), f.author)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"books": 0, "reviews": 0}, removed)
	assert.NoError(t, undo(context.Background()))
	assert.Empty(t, f.reviews.deleted)
}

func TestService_DeleteBooksForAuthorKeepsLaterBooks(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	early, err := f.svc.Create(ctx, newBook(f.author))
	require.NoError(t, err)

	repo := &lateWriter{Repository: f.repo, late: newBook(f.author)}
	svc := book.NewService(repo, nil, cascade.Settings{Timeout: time.Second})
	svc.Bind(f.authors, f.reviews)

	removed, _, err := svc.DeleteBooksForAuthor(ctx, f.author)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed["books"])

	_, err = f.repo.FindByID(ctx, early.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	require.NotNil(t, repo.late)
	_, err = f.repo.FindByID(ctx, repo.late.ID)
	assert.NoError(t, err)
	require.Len(t, f.reviews.deleted, 1)
	assert.Equal(t, []primitive.ObjectID{early.ID}, f.reviews.deleted[0])
}

func TestService_DeleteRestoresBookWhenReviewsFail(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	b, err := f.svc.Create(ctx, newBook(f.author))
	require.NoError(t, err)

	f.reviews.deleteErr = apperrors.Database(errors.New("boom"), "delete reviews failed")
	require.Error(t, f.svc.Delete(ctx, b.ID))

	_, err = f.repo.FindByID(ctx, b.ID)
	assert.NoError(t, err)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []cascade.Event
}

func (r *recordingNotifier) Notify(_ context.Context, ev cascade.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	events := &recordingNotifier{}
	f.svc = book.NewService(f.repo, f.cache, cascade.Settings{Timeout: time.Second, Notifier: events})
	f.svc.Bind(f.authors, f.reviews)
	f.reviews.perBook = 4
	b, err := f.svc.Create(ctx, newBook(f.author))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, b.ID))
	_, err = f.repo.FindByID(ctx, b.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, b.ID), book.ErrBookNotFound)

	require.Len(t, events.events, 1)
	assert.Equal(t, "book.deleted", events.events[0].Key)
	assert.Equal(t, b.ID.Hex(), events.events[0].ID)
	assert.Equal(t, map[string]int64{"reviews": 4}, events.events[0].Removed)
}
