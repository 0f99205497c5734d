package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/xiebiao/bookreviews/internal/domain/author"
	"github.com/xiebiao/bookreviews/internal/domain/book"
	"github.com/xiebiao/bookreviews/internal/domain/query"
	"github.com/xiebiao/bookreviews/internal/domain/review"
	apperrors "github.com/xiebiao/bookreviews/pkg/errors"
)

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func ns(mt *mtest.T, coll string) string {
	return mt.DB.Name() + "." + coll
}

func TestAuthorRepository_FindByID(t *testing.T) {
	mt := newMock(t)
	id := primitive.NewObjectID()

	mt.Run("found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, AuthorsCollection), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Ursula K. Le Guin"},
			{Key: "bio", Value: "Earthsea"},
		}))

		got, err := NewAuthorRepository(mt.DB).FindByID(context.Background(), id)
		require.NoError(mt, err)
		assert.Equal(mt, id, got.ID)
		assert.Equal(mt, "Ursula K. Le Guin", got.Name)
		assert.Equal(mt, "Earthsea", got.Bio)
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, AuthorsCollection), mtest.FirstBatch))

		_, err := NewAuthorRepository(mt.DB).FindByID(context.Background(), id)
		assert.True(mt, apperrors.IsNotFound(err))
		assert.ErrorIs(mt, err, author.ErrAuthorNotFound)
	})

	mt.Run("driver error becomes database error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 2, Name: "BadValue", Message: "boom",
		}))

		_, err := NewAuthorRepository(mt.DB).FindByID(context.Background(), id)
		require.Error(mt, err)
		assert.Equal(mt, apperrors.ErrCodeDatabaseError, apperrors.GetAppError(err).Code)
	})
}

func TestAuthorRepository_SaveAssignsID(t *testing.T) {
	mt := newMock(t)

	mt.Run("new", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		saved, err := NewAuthorRepository(mt.DB).Save(context.Background(), &author.Author{Name: "Tove Jansson"})
		require.NoError(mt, err)
		assert.False(mt, saved.ID.IsZero())
		assert.Equal(mt, "Tove Jansson", saved.Name)
	})

	mt.Run("existing keeps id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))
		id := primitive.NewObjectID()

		saved, err := NewAuthorRepository(mt.DB).Save(context.Background(), &author.Author{ID: id, Name: "Tove Jansson"})
		require.NoError(mt, err)
		assert.Equal(mt, id, saved.ID)
	})
}

func TestBookRepository_Query(t *testing.T) {
	mt := newMock(t)
	authorID := primitive.NewObjectID()
	published := time.Date(1969, 3, 1, 0, 0, 0, 0, time.UTC)

	doc := func(title string) bson.D {
		return bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "isbn", Value: "9780441478125"},
			{Key: "title", Value: title},
			{Key: "description", Value: "A long enough description"},
			{Key: "publication_date", Value: primitive.NewDateTimeFromTime(published)},
			{Key: "author_id", Value: authorID},
		}
	}

	mt.Run("counts then pages", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, BooksCollection), mtest.FirstBatch, bson.D{{Key: "n", Value: int32(5)}}),
			mtest.CreateCursorResponse(0, ns(mt, BooksCollection), mtest.FirstBatch, doc("A Wizard of Earthsea"), doc("The Left Hand of Darkness")),
		)

		res, err := NewBookRepository(mt.DB).Query(context.Background(), query.Params{
			Filters:   map[string]interface{}{"author_id": authorID},
			Sort:      "title",
			Direction: query.Asc,
			Page:      2,
			Size:      2,
		})
		require.NoError(mt, err)
		assert.Equal(mt, int64(5), res.Total)
		assert.Equal(mt, 2, res.Page)
		require.Len(mt, res.Items, 2)
		assert.Equal(mt, "A Wizard of Earthsea", res.Items[0].Title)
		assert.Equal(mt, authorID, res.Items[1].AuthorID)
		assert.True(mt, published.Equal(res.Items[0].PublicationDate))
	})

	mt.Run("without count", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, BooksCollection), mtest.FirstBatch),
		)

		res, err := NewBookRepository(mt.DB).Query(context.Background(), query.Params{
			Sort: "title", Direction: query.Desc, Page: 1, Size: 10, WithoutCount: true,
		})
		require.NoError(mt, err)
		assert.Equal(mt, int64(-1), res.Total)
		assert.NotNil(mt, res.Items)
		assert.Empty(mt, res.Items)
	})
}

func TestBookRepository_DeleteByIDs(t *testing.T) {
	mt := newMock(t)

	mt.Run("empty is a no-op", func(mt *mtest.T) {
		n, err := NewBookRepository(mt.DB).DeleteByIDs(context.Background(), nil)
		require.NoError(mt, err)
		assert.Zero(mt, n)
	})

	mt.Run("returns deleted count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}))
		ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}

		n, err := NewBookRepository(mt.DB).DeleteByIDs(context.Background(), ids)
		require.NoError(mt, err)
		assert.Equal(mt, int64(2), n)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "delete", started.CommandName)
	})
}

func TestBookRepository_SaveMany(t *testing.T) {
	mt := newMock(t)

	mt.Run("empty is a no-op", func(mt *mtest.T) {
		require.NoError(mt, NewBookRepository(mt.DB).SaveMany(context.Background(), nil))
	})

	mt.Run("bulk upsert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 2},
			bson.E{Key: "nModified", Value: 0},
		))

		err := NewBookRepository(mt.DB).SaveMany(context.Background(), []*book.Book{
			{ID: primitive.NewObjectID(), Title: "One"},
			{ID: primitive.NewObjectID(), Title: "Two"},
		})
		require.NoError(mt, err)
	})
}

func TestReviewRepository_AverageRatingForBook(t *testing.T) {
	mt := newMock(t)
	bookID := primitive.NewObjectID()

	mt.Run("average", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, ReviewsCollection), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: nil},
			{Key: "average", Value: 3.5},
		}))

		avg, err := NewReviewRepository(mt.DB).AverageRatingForBook(context.Background(), bookID)
		require.NoError(mt, err)
		assert.InDelta(mt, 3.5, avg, 1e-9)
	})

	mt.Run("no reviews", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, ReviewsCollection), mtest.FirstBatch))

		avg, err := NewReviewRepository(mt.DB).AverageRatingForBook(context.Background(), bookID)
		require.NoError(mt, err)
		assert.Zero(mt, avg)
	})
}

func TestReviewRepository_FindByBooks(t *testing.T) {
	mt := newMock(t)
	bookID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	mt.Run("decodes reviews", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, ReviewsCollection), mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "rating", Value: int32(4)},
				{Key: "comment", Value: "Great"},
				{Key: "book_id", Value: bookID},
				{Key: "user_id", Value: userID},
			},
		))

		got, err := NewReviewRepository(mt.DB).FindByBooks(context.Background(), []primitive.ObjectID{bookID})
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, &review.Review{ID: got[0].ID, Rating: 4, Comment: "Great", BookID: bookID, UserID: userID}, got[0])
	})
}

func TestUserRepository_Delete(t *testing.T) {
	mt := newMock(t)

	mt.Run("missing id is not an error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		require.NoError(mt, NewUserRepository(mt.DB).Delete(context.Background(), primitive.NewObjectID()))
	})
}
