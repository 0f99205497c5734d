package book

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/query"
)

// Repository stores books.
type Repository interface {
	Save(ctx context.Context, b *Book) (*Book, error)
	// SaveMany upserts every book keeping its id. Used to restore deleted books.
	SaveMany(ctx context.Context, books []*Book) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Book, error)
	FindAll(ctx context.Context) ([]*Book, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Query(ctx context.Context, p query.Params) (query.Result[*Book], error)

	CountByAuthor(ctx context.Context, authorID primitive.ObjectID) (int64, error)
	FindByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]*Book, error)
	// DeleteByIDs removes exactly the given books and reports how many existed.
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

// CountCache keeps per-author book counts. Misses and failures both report
// ok=false, so a broken cache only costs a store round trip.
type CountCache interface {
	BooksCount(ctx context.Context, authorID primitive.ObjectID) (n int64, ok bool)
	SetBooksCount(ctx context.Context, authorID primitive.ObjectID, n int64)
	InvalidateBooksCount(ctx context.Context, authorIDs ...primitive.ObjectID)
}

type nopCache struct{}

func (nopCache) BooksCount(context.Context, primitive.ObjectID) (int64, bool) { return 0, false }
func (nopCache) SetBooksCount(context.Context, primitive.ObjectID, int64)     {}
func (nopCache) InvalidateBooksCount(context.Context, ...primitive.ObjectID)  {}
