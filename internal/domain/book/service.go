package book

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

const tracerName = "bookreviews/book"

// Schema lists the book fields a query may filter and sort on.
var Schema = query.Schema{
	Fields: map[string]query.Converter{
		"isbn":             query.String,
		"title":            query.String,
		"description":      query.String,
		"publication_date": query.Date,
		"author_id":        query.ObjectID,
	},
	DefaultSort: "title",
}

// AuthorChecker reports a missing author as NotFound.
type AuthorChecker interface {
	Exists(ctx context.Context, id primitive.ObjectID) error
}

// ReviewCatalog is the part of the review service that books depend on.
type ReviewCatalog interface {
	AverageRatingForBook(ctx context.Context, bookID primitive.ObjectID) (float64, error)
	DeleteReviewsForBook(ctx context.Context, bookID primitive.ObjectID) (int64, saga.Compensation, error)
	DeleteReviewsForBooks(ctx context.Context, bookIDs []primitive.ObjectID) (int64, saga.Compensation, error)
}

// Service owns writes to the books collection.
type Service struct {
	repo    Repository
	cache   CountCache
	authors AuthorChecker
	reviews ReviewCatalog
	cascade cascade.Settings
}

// NewService builds the service; cache may be nil. Bind must be called
// before use.
func NewService(repo Repository, cache CountCache, settings cascade.Settings) *Service {
	if cache == nil {
		cache = nopCache{}
	}
	return &Service{repo: repo, cache: cache, cascade: settings}
}

// Bind wires the services books depend on.
func (s *Service) Bind(authors AuthorChecker, reviews ReviewCatalog) {
	s.authors = authors
	s.reviews = reviews
}

// Create persists b once its author is known to exist.
func (s *Service) Create(ctx context.Context, b *Book) (*Book, error) {
	b.ID = primitive.NilObjectID
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.authors.Exists(ctx, b.AuthorID); err != nil {
		return nil, err
	}

	saved, err := s.repo.Save(ctx, b)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateBooksCount(ctx, saved.AuthorID)
	return saved, nil
}

// Update applies p. A changed author_id must point to an existing author.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, p Patch) (*Book, error) {
	if p.IsEmpty() {
		return nil, rules.ErrEmptyPatch
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previousAuthor := b.AuthorID
	p.Apply(b)
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if b.AuthorID != previousAuthor {
		if err := s.authors.Exists(ctx, b.AuthorID); err != nil {
			return nil, err
		}
	}

	saved, err := s.repo.Save(ctx, b)
	if err != nil {
		return nil, err
	}
	if saved.AuthorID != previousAuthor {
		s.cache.InvalidateBooksCount(ctx, previousAuthor, saved.AuthorID)
	}
	return saved, nil
}

// GetOne loads the book and its average rating concurrently.
func (s *Service) GetOne(ctx context.Context, id primitive.ObjectID) (_ *View, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "BookService.GetOne")
	defer func() { tracing.End(span, err) }()

	var (
		b      *Book
		rating float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		b, err = s.repo.FindByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		rating, err = s.reviews.AverageRatingForBook(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &View{Book: b, AverageRating: rating}, nil
}

// GetOneWithoutRating skips the rating lookup.
func (s *Service) GetOneWithoutRating(ctx context.Context, id primitive.ObjectID) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// Exists returns NotFound when there is no book with id.
func (s *Service) Exists(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.GetOneWithoutRating(ctx, id)
	return err
}

// Query returns one page of books matching req.
func (s *Service) Query(ctx context.Context, req query.Request) (query.Result[*Book], error) {
	p, err := Schema.Build(req)
	if err != nil {
		return query.Result[*Book]{}, err
	}
	return s.repo.Query(ctx, p)
}

// CountBooksForAuthor reads through the count cache.
func (s *Service) CountBooksForAuthor(ctx context.Context, authorID primitive.ObjectID) (int64, error) {
	if n, ok := s.cache.BooksCount(ctx, authorID); ok {
		return n, nil
	}
	n, err := s.repo.CountByAuthor(ctx, authorID)
	if err != nil {
		return 0, err
	}
	s.cache.SetBooksCount(ctx, authorID, n)
	return n, nil
}

// Delete removes the book and, concurrently, its reviews.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "BookService.Delete")
	defer func() { tracing.End(span, err) }()

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	var reviews int64
	undoReviews := saga.Compensation(saga.Noop)
	sg := s.cascade.NewSaga("book.delete")
	sg.AddStep("book",
		func(ctx context.Context) error { return s.repo.Delete(ctx, id) },
		func(ctx context.Context) error {
			_, err := s.repo.Save(ctx, b)
			return err
		},
	)
	sg.AddStep("reviews",
		func(ctx context.Context) error {
			n, undo, err := s.reviews.DeleteReviewsForBook(ctx, id)
			if err != nil {
				return err
			}
			reviews, undoReviews = n, undo
			return nil
		},
		func(ctx context.Context) error { return undoReviews(ctx) },
	)
	if err := sg.Execute(ctx); err != nil {
		return err
	}

	s.cache.InvalidateBooksCount(ctx, b.AuthorID)
	s.cascade.Deleted(ctx, "book", id.Hex(), map[string]int64{"reviews": reviews})
	return nil
}

// DeleteBooksForAuthor removes every book the author has when it is called
// and, concurrently, all reviews of those books. It reports what it removed
// keyed "books" and "reviews"; the returned compensation restores both.
func (s *Service) DeleteBooksForAuthor(ctx context.Context, authorID primitive.ObjectID) (_ map[string]int64, _ saga.Compensation, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "BookService.DeleteBooksForAuthor")
	defer func() { tracing.End(span, err) }()

	books, err := s.repo.FindByAuthor(ctx, authorID)
	if err != nil {
		return nil, nil, err
	}
	if len(books) == 0 {
		return map[string]int64{"books": 0, "reviews": 0}, saga.Noop, nil
	}

	ids := make([]primitive.ObjectID, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}

	var deletedBooks, deletedReviews int64
	undoReviews := saga.Compensation(saga.Noop)
	sg := s.cascade.NewSaga("book.delete_for_author")
	sg.AddStep("books",
		func(ctx context.Context) error {
			n, err := s.repo.DeleteByIDs(ctx, ids)
			deletedBooks = n
			return err
		},
		func(ctx context.Context) error { return s.repo.SaveMany(ctx, books) },
	)
	sg.AddStep("reviews",
		func(ctx context.Context) error {
			n, undo, err := s.reviews.DeleteReviewsForBooks(ctx, ids)
			if err != nil {
				return err
			}
			deletedReviews, undoReviews = n, undo
			return nil
		},
		func(ctx context.Context) error { return undoReviews(ctx) },
	)
	if err := sg.Execute(ctx); err != nil {
		return nil, nil, err
	}
	s.cache.InvalidateBooksCount(ctx, authorID)

	restore := sg.Compensation()
	removed := map[string]int64{"books": deletedBooks, "reviews": deletedReviews}
	return removed, func(ctx context.Context) error {
		err := restore(ctx)
		s.cache.InvalidateBooksCount(ctx, authorID)
		return err
	}, nil
}
