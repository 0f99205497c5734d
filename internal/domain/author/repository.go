package author

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/query"
)

// Repository is implemented by the persistence layer. Store failures come
// back as database errors, a missing id as NotFound.
type Repository interface {
	// Save inserts or replaces by id, assigning an id when it is zero.
	Save(ctx context.Context, a *Author) (*Author, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Author, error)
	FindAll(ctx context.Context) ([]*Author, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Query(ctx context.Context, p query.Params) (query.Result[*Author], error)
}
