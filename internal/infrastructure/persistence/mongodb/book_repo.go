package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/xiebiao/bookreviews/internal/domain/book"
	"github.com/xiebiao/bookreviews/internal/domain/query"
)

type bookRepository struct {
	c collection[bookDocument]
}

func NewBookRepository(db *mongo.Database) book.Repository {
	return &bookRepository{c: newCollection[bookDocument](db, BooksCollection)}
}

func (r *bookRepository) Save(ctx context.Context, b *book.Book) (*book.Book, error) {
	doc := toBookDocument(b)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if err := r.c.replace(ctx, doc.ID, doc); err != nil {
		return nil, err
	}
	return toBookEntity(doc), nil
}

func (r *bookRepository) SaveMany(ctx context.Context, books []*book.Book) error {
	ids := make([]primitive.ObjectID, len(books))
	docs := make([]*bookDocument, len(books))
	for i, b := range books {
		ids[i], docs[i] = b.ID, toBookDocument(b)
	}
	return r.c.replaceMany(ctx, ids, docs)
}

func (r *bookRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*book.Book, error) {
	doc, found, err := r.c.findOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, book.NotFound(id)
	}
	return toBookEntity(doc), nil
}

func (r *bookRepository) FindAll(ctx context.Context) ([]*book.Book, error) {
	docs, err := r.c.find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	return mapDocs(docs, toBookEntity), nil
}

func (r *bookRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.c.deleteOne(ctx, id)
}

func (r *bookRepository) Query(ctx context.Context, p query.Params) (query.Result[*book.Book], error) {
	docs, total, err := r.c.query(ctx, p)
	if err != nil {
		return query.Result[*book.Book]{}, err
	}
	return query.NewResult(mapDocs(docs, toBookEntity), total, p), nil
}

func (r *bookRepository) CountByAuthor(ctx context.Context, authorID primitive.ObjectID) (int64, error) {
	return r.c.count(ctx, bson.M{"author_id": authorID})
}

func (r *bookRepository) FindByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]*book.Book, error) {
	docs, err := r.c.find(ctx, bson.M{"author_id": authorID})
	if err != nil {
		return nil, err
	}
	return mapDocs(docs, toBookEntity), nil
}

func (r *bookRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.c.deleteMany(ctx, bson.M{"_id": in(ids)})
}
