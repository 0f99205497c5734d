package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/xiebiao/bookreviews/internal/domain/query"
	"github.com/xiebiao/bookreviews/internal/domain/review"
)

type reviewRepository struct {
	c collection[reviewDocument]
}

func NewReviewRepository(db *mongo.Database) review.Repository {
	return &reviewRepository{c: newCollection[reviewDocument](db, ReviewsCollection)}
}

func (r *reviewRepository) Save(ctx context.Context, rv *review.Review) (*review.Review, error) {
	doc := toReviewDocument(rv)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if err := r.c.replace(ctx, doc.ID, doc); err != nil {
		return nil, err
	}
	return toReviewEntity(doc), nil
}

func (r *reviewRepository) SaveMany(ctx context.Context, reviews []*review.Review) error {
	ids := make([]primitive.ObjectID, len(reviews))
	docs := make([]*reviewDocument, len(reviews))
	for i, rv := range reviews {
		ids[i], docs[i] = rv.ID, toReviewDocument(rv)
	}
	return r.c.replaceMany(ctx, ids, docs)
}

func (r *reviewRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*review.Review, error) {
	doc, found, err := r.c.findOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, review.NotFound(id)
	}
	return toReviewEntity(doc), nil
}

func (r *reviewRepository) FindAll(ctx context.Context) ([]*review.Review, error) {
	return r.findWhere(ctx, bson.M{})
}

func (r *reviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.c.deleteOne(ctx, id)
}

func (r *reviewRepository) Query(ctx context.Context, p query.Params) (query.Result[*review.Review], error) {
	docs, total, err := r.c.query(ctx, p)
	if err != nil {
		return query.Result[*review.Review]{}, err
	}
	return query.NewResult(mapDocs(docs, toReviewEntity), total, p), nil
}

// AverageRatingForBook runs $match on book_id then $group with $avg.
func (r *reviewRepository) AverageRatingForBook(ctx context.Context, bookID primitive.ObjectID) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "book_id", Value: bookID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "average", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
		}}},
	}

	var out []struct {
		Average float64 `bson:"average"`
	}
	if err := r.c.aggregate(ctx, pipeline, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Average, nil
}

func (r *reviewRepository) findWhere(ctx context.Context, filter bson.M) ([]*review.Review, error) {
	docs, err := r.c.find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return mapDocs(docs, toReviewEntity), nil
}

func (r *reviewRepository) FindByBook(ctx context.Context, bookID primitive.ObjectID) ([]*review.Review, error) {
	return r.findWhere(ctx, bson.M{"book_id": bookID})
}

func (r *reviewRepository) FindByBooks(ctx context.Context, bookIDs []primitive.ObjectID) ([]*review.Review, error) {
	return r.findWhere(ctx, bson.M{"book_id": in(bookIDs)})
}

func (r *reviewRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*review.Review, error) {
	return r.findWhere(ctx, bson.M{"user_id": userID})
}

func (r *reviewRepository) DeleteByBook(ctx context.Context, bookID primitive.ObjectID) (int64, error) {
	return r.c.deleteMany(ctx, bson.M{"book_id": bookID})
}

func (r *reviewRepository) DeleteByBooks(ctx context.Context, bookIDs []primitive.ObjectID) (int64, error) {
	return r.c.deleteMany(ctx, bson.M{"book_id": in(bookIDs)})
}

func (r *reviewRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.c.deleteMany(ctx, bson.M{"user_id": userID})
}
