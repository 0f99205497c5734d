package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/xiebiao/bookreviews/internal/domain/author"
	"github.com/xiebiao/bookreviews/internal/domain/query"
)

type authorRepository struct {
	c collection[authorDocument]
}

func NewAuthorRepository(db *mongo.Database) author.Repository {
	return &authorRepository{c: newCollection[authorDocument](db, AuthorsCollection)}
}

func (r *authorRepository) Save(ctx context.Context, a *author.Author) (*author.Author, error) {
	doc := toAuthorDocument(a)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if err := r.c.replace(ctx, doc.ID, doc); err != nil {
		return nil, err
	}
	return toAuthorEntity(doc), nil
}

func (r *authorRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*author.Author, error) {
	doc, found, err := r.c.findOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, author.NotFound(id)
	}
	return toAuthorEntity(doc), nil
}

func (r *authorRepository) FindAll(ctx context.Context) ([]*author.Author, error) {
	docs, err := r.c.find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	return mapDocs(docs, toAuthorEntity), nil
}

func (r *authorRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.c.deleteOne(ctx, id)
}

func (r *authorRepository) Query(ctx context.Context, p query.Params) (query.Result[*author.Author], error) {
	docs, total, err := r.c.query(ctx, p)
	if err != nil {
		return query.Result[*author.Author]{}, err
	}
	return query.NewResult(mapDocs(docs, toAuthorEntity), total, p), nil
}
