package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/xiebiao/bookreviews/internal/domain/query"
	"github.com/xiebiao/bookreviews/internal/domain/user"
)

type userRepository struct {
	c collection[userDocument]
}

func NewUserRepository(db *mongo.Database) user.Repository {
	return &userRepository{c: newCollection[userDocument](db, UsersCollection)}
}

func (r *userRepository) Save(ctx context.Context, u *user.User) (*user.User, error) {
	doc := toUserDocument(u)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if err := r.c.replace(ctx, doc.ID, doc); err != nil {
		return nil, err
	}
	return toUserEntity(doc), nil
}

func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*user.User, error) {
	doc, found, err := r.c.findOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, user.NotFound(id)
	}
	return toUserEntity(doc), nil
}

func (r *userRepository) FindAll(ctx context.Context) ([]*user.User, error) {
	docs, err := r.c.find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	return mapDocs(docs, toUserEntity), nil
}

func (r *userRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.c.deleteOne(ctx, id)
}

func (r *userRepository) Query(ctx context.Context, p query.Params) (query.Result[*user.User], error) {
	docs, total, err := r.c.query(ctx, p)
	if err != nil {
		return query.Result[*user.User]{}, err
	}
	return query.NewResult(mapDocs(docs, toUserEntity), total, p), nil
}
