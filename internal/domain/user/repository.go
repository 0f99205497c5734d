package user

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/query"
)

type Repository interface {
	Save(ctx context.Context, u *User) (*User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	FindAll(ctx context.Context) ([]*User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Query(ctx context.Context, p query.Params) (query.Result[*User], error)
}
