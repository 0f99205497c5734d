package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xiebiao/bookreviews/internal/domain/query"
	apperrors "github.com/xiebiao/bookreviews/pkg/errors"
	"github.com/xiebiao/bookreviews/pkg/metrics"
)

// collection wraps one mongo collection of documents D. Every driver error is
// returned as a database error; the cause is kept for the logs only.
type collection[D any] struct {
	coll *mongo.Collection
	name string
}

func newCollection[D any](db *mongo.Database, name string) collection[D] {
	metrics.InitMetrics()
	return collection[D]{coll: db.Collection(name), name: name}
}

// observe is deferred by every operation:
//
//	defer c.observe("find", time.Now(), &err)
func (c collection[D]) observe(op string, start time.Time, err *error) {
	labels := map[string]string{"collection": c.name, "operation": op}
	metrics.ObserveHistogramVec(metrics.DBOperationDuration, labels, time.Since(start).Seconds())
	if *err != nil {
		metrics.IncCounterVec(metrics.DBErrorsTotal, labels)
		*err = apperrors.Database(*err, c.name+" "+op+" failed")
	}
}

// replace upserts doc under id.
func (c collection[D]) replace(ctx context.Context, id primitive.ObjectID, doc *D) (err error) {
	defer c.observe("replace", time.Now(), &err)
	_, err = c.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return err
}

// replaceMany upserts all docs in one unordered bulk write.
func (c collection[D]) replaceMany(ctx context.Context, ids []primitive.ObjectID, docs []*D) (err error) {
	if len(docs) == 0 {
		return nil
	}
	defer c.observe("replace_many", time.Now(), &err)
	models := make([]mongo.WriteModel, len(docs))
	for i := range docs {
		models[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": ids[i]}).
			SetReplacement(docs[i]).
			SetUpsert(true)
	}
	_, err = c.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

// findOne reports found=false without error when nothing matches.
func (c collection[D]) findOne(ctx context.Context, id primitive.ObjectID) (doc *D, found bool, err error) {
	defer c.observe("find_one", time.Now(), &err)
	doc = new(D)
	err = c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (c collection[D]) find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (docs []*D, err error) {
	defer c.observe("find", time.Now(), &err)
	cursor, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	docs = make([]*D, 0)
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c collection[D]) count(ctx context.Context, filter interface{}) (n int64, err error) {
	defer c.observe("count", time.Now(), &err)
	return c.coll.CountDocuments(ctx, filter)
}

func (c collection[D]) deleteOne(ctx context.Context, id primitive.ObjectID) (err error) {
	defer c.observe("delete_one", time.Now(), &err)
	_, err = c.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (c collection[D]) deleteMany(ctx context.Context, filter interface{}) (n int64, err error) {
	defer c.observe("delete_many", time.Now(), &err)
	res, err := c.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c collection[D]) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) (err error) {
	defer c.observe("aggregate", time.Now(), &err)
	cursor, err := c.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

// query counts the matches, unless p.WithoutCount, and reads one page sorted
// on p.Sort with _id as tie breaker.
func (c collection[D]) query(ctx context.Context, p query.Params) ([]*D, int64, error) {
	filter := bson.M{}
	for k, v := range p.Filters {
		filter[k] = v
	}

	total := int64(-1)
	if !p.WithoutCount {
		n, err := c.count(ctx, filter)
		if err != nil {
			return nil, 0, err
		}
		total = n
	}

	dir := 1
	if p.Direction == query.Desc {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: p.Sort, Value: dir}, {Key: "_id", Value: 1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Size))

	docs, err := c.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func in(ids []primitive.ObjectID) bson.M {
	return bson.M{"$in": ids}
}
