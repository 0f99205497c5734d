package review

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/query"
)

// Repository stores reviews.
type Repository interface {
	Save(ctx context.Context, r *Review) (*Review, error)
	// SaveMany upserts every review keeping its id. Used to restore deleted reviews.
	SaveMany(ctx context.Context, reviews []*Review) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Review, error)
	FindAll(ctx context.Context) ([]*Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Query(ctx context.Context, p query.Params) (query.Result[*Review], error)

	// AverageRatingForBook is the mean rating of the book's reviews, 0 without reviews.
	AverageRatingForBook(ctx context.Context, bookID primitive.ObjectID) (float64, error)
	FindByBook(ctx context.Context, bookID primitive.ObjectID) ([]*Review, error)
	FindByBooks(ctx context.Context, bookIDs []primitive.ObjectID) ([]*Review, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*Review, error)
	DeleteByBook(ctx context.Context, bookID primitive.ObjectID) (int64, error)
	DeleteByBooks(ctx context.Context, bookIDs []primitive.ObjectID) (int64, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// RatingCache keeps per-book average ratings.
type RatingCache interface {
	AverageRating(ctx context.Context, bookID primitive.ObjectID) (avg float64, ok bool)
	SetAverageRating(ctx context.Context, bookID primitive.ObjectID, avg float64)
	InvalidateAverageRating(ctx context.Context, bookIDs ...primitive.ObjectID)
}

type nopCache struct{}

func (nopCache) AverageRating(context.Context, primitive.ObjectID) (float64, bool) { return 0, false }
func (nopCache) SetAverageRating(context.Context, primitive.ObjectID, float64)     {}
func (nopCache) InvalidateAverageRating(context.Context, ...primitive.ObjectID)    {}
