package author

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/xiebiao/bookreviews/internal/domain/cascade"
	"github.com/xiebiao/bookreviews/internal/domain/query"
	"github.com/xiebiao/bookreviews/internal/domain/rules"
	"github.com/xiebiao/bookreviews/pkg/saga"
	"github.com/xiebiao/bookreviews/pkg/tracing"
)

const tracerName = "bookreviews/author"

// Schema lists the filterable fields of the authors collection.
var Schema = query.Schema{
	Fields: map[string]query.Converter{
		"name": query.String,
		"bio":  query.String,
	},
	DefaultSort: "name",
}

// BookCatalog is the part of the book service that authors depend on.
type BookCatalog interface {
	CountBooksForAuthor(ctx context.Context, authorID primitive.ObjectID) (int64, error)
	// DeleteBooksForAuthor reports the removed counts per collection and
	// returns a compensation restoring everything it removed.
	DeleteBooksForAuthor(ctx context.Context, authorID primitive.ObjectID) (map[string]int64, saga.Compensation, error)
}

// Service owns writes to the authors collection.
type Service struct {
	repo    Repository
	books   BookCatalog
	cascade cascade.Settings
}

// NewService builds the service. BindBooks must be called before GetOne or Delete.
func NewService(repo Repository, settings cascade.Settings) *Service {
	return &Service{repo: repo, cascade: settings}
}

// BindBooks wires the book side of the author cascade.
func (s *Service) BindBooks(books BookCatalog) {
	s.books = books
}

// Create validates a and stores it under a fresh id. Any id on a is ignored.
func (s *Service) Create(ctx context.Context, a *Author) (*Author, error) {
	a.ID = primitive.NilObjectID
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, a)
}

// Update applies p to an existing author. Nothing is written when the author
// is missing or the result is invalid.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, p Patch) (*Author, error) {
	if p.IsEmpty() {
		return nil, rules.ErrEmptyPatch
	}

	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Apply(a)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, a)
}

// GetOne loads the author and its book count concurrently.
func (s *Service) GetOne(ctx context.Context, id primitive.ObjectID) (_ *View, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "AuthorService.GetOne")
	defer func() { tracing.End(span, err) }()

	var (
		a     *Author
		count int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = s.repo.FindByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = s.books.CountBooksForAuthor(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &View{Author: a, BooksCount: count}, nil
}

// Exists returns NotFound when there is no author with id.
func (s *Service) Exists(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.repo.FindByID(ctx, id)
	return err
}

// Query returns one page of authors matching req.
func (s *Service) Query(ctx context.Context, req query.Request) (query.Result[*Author], error) {
	p, err := Schema.Build(req)
	if err != nil {
		return query.Result[*Author]{}, err
	}
	return s.repo.Query(ctx, p)
}

// Delete removes the author and, concurrently, its books and their reviews.
// If either branch fails the other one is restored.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "AuthorService.Delete")
	defer func() { tracing.End(span, err) }()

	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	var removed map[string]int64
	undoBooks := saga.Compensation(saga.Noop)
	sg := s.cascade.NewSaga("author.delete")
	sg.AddStep("author",
		func(ctx context.Context) error { return s.repo.Delete(ctx, id) },
		func(ctx context.Context) error {
			_, err := s.repo.Save(ctx, a)
			return err
		},
	)
	sg.AddStep("books",
		func(ctx context.Context) error {
			counts, undo, err := s.books.DeleteBooksForAuthor(ctx, id)
			if err != nil {
				return err
			}
			removed, undoBooks = counts, undo
			return nil
		},
		func(ctx context.Context) error { return undoBooks(ctx) },
	)
	if err := sg.Execute(ctx); err != nil {
		return err
	}

	s.cascade.Deleted(ctx, "author", id.Hex(), removed)
	return nil
}
