package review

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/xiebiao/bookreviews/internal/domain/cascade"
	"github.com/xiebiao/bookreviews/internal/domain/query"
	"github.com/xiebiao/bookreviews/internal/domain/rules"
	"github.com/xiebiao/bookreviews/pkg/saga"
)

// Schema lists the review fields a query may filter and sort on.
var Schema = query.Schema{
	Fields: map[string]query.Converter{
		"rating":  query.Int,
		"comment": query.String,
		"book_id": query.ObjectID,
		"user_id": query.ObjectID,
	},
	DefaultSort: "comment",
}

// BookChecker must not compute ratings: it is called while a review is written.
type BookChecker interface {
	Exists(ctx context.Context, id primitive.ObjectID) error
}

type UserChecker interface {
	Exists(ctx context.Context, id primitive.ObjectID) error
}

// Service owns writes to the reviews collection and the rating aggregate.
type Service struct {
	repo    Repository
	cache   RatingCache
	books   BookChecker
	users   UserChecker
	cascade cascade.Settings
}

// NewService builds the service; cache may be nil. Bind must be called
// before Create or Update.
func NewService(repo Repository, cache RatingCache, settings cascade.Settings) *Service {
	if cache == nil {
		cache = nopCache{}
	}
	return &Service{repo: repo, cache: cache, cascade: settings}
}

func (s *Service) Bind(books BookChecker, users UserChecker) {
	s.books = books
	s.users = users
}

// Create checks the book and the user concurrently. Either one missing fails
// with NotFound and nothing is written.
func (s *Service) Create(ctx context.Context, r *Review) (*Review, error) {
	r.ID = primitive.NilObjectID
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, &r.BookID, &r.UserID); err != nil {
		return nil, err
	}

	saved, err := s.repo.Save(ctx, r)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateAverageRating(ctx, saved.BookID)
	return saved, nil
}

// Update re-checks only the references that changed.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, p Patch) (*Review, error) {
	if p.IsEmpty() {
		return nil, rules.ErrEmptyPatch
	}

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previousBook, previousUser := r.BookID, r.UserID
	p.Apply(r)
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var bookID, userID *primitive.ObjectID
	if r.BookID != previousBook {
		bookID = &r.BookID
	}
	if r.UserID != previousUser {
		userID = &r.UserID
	}
	if err := s.checkReferences(ctx, bookID, userID); err != nil {
		return nil, err
	}

	saved, err := s.repo.Save(ctx, r)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateAverageRating(ctx, previousBook, saved.BookID)
	return saved, nil
}

// checkReferences verifies the non-nil ids concurrently.
func (s *Service) checkReferences(ctx context.Context, bookID, userID *primitive.ObjectID) error {
	g, gctx := errgroup.WithContext(ctx)
	if bookID != nil {
		g.Go(func() error { return s.books.Exists(gctx, *bookID) })
	}
	if userID != nil {
		g.Go(func() error { return s.users.Exists(gctx, *userID) })
	}
	return g.Wait()
}

func (s *Service) GetOne(ctx context.Context, id primitive.ObjectID) (*Review, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) Query(ctx context.Context, req query.Request) (query.Result[*Review], error) {
	p, err := Schema.Build(req)
	if err != nil {
		return query.Result[*Review]{}, err
	}
	return s.repo.Query(ctx, p)
}

// AverageRatingForBook reads through the rating cache. A book without
// reviews averages 0.
func (s *Service) AverageRatingForBook(ctx context.Context, bookID primitive.ObjectID) (float64, error) {
	if avg, ok := s.cache.AverageRating(ctx, bookID); ok {
		return avg, nil
	}
	avg, err := s.repo.AverageRatingForBook(ctx, bookID)
	if err != nil {
		return 0, err
	}
	s.cache.SetAverageRating(ctx, bookID, avg)
	return avg, nil
}

// Delete removes one review. Nothing depends on reviews, so there is no cascade.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidateAverageRating(ctx, r.BookID)
	s.cascade.Deleted(ctx, "review", id.Hex(), nil)
	return nil
}

// DeleteReviewsForBook removes every review of the book and reports how many
// went. No existence check.
func (s *Service) DeleteReviewsForBook(ctx context.Context, bookID primitive.ObjectID) (int64, saga.Compensation, error) {
	return s.deleteSnapshot(ctx,
		func() ([]*Review, error) { return s.repo.FindByBook(ctx, bookID) },
		func() (int64, error) { return s.repo.DeleteByBook(ctx, bookID) },
	)
}

// DeleteReviewsForBooks removes the reviews of all the books in one batch.
func (s *Service) DeleteReviewsForBooks(ctx context.Context, bookIDs []primitive.ObjectID) (int64, saga.Compensation, error) {
	if len(bookIDs) == 0 {
		return 0, saga.Noop, nil
	}
	return s.deleteSnapshot(ctx,
		func() ([]*Review, error) { return s.repo.FindByBooks(ctx, bookIDs) },
		func() (int64, error) { return s.repo.DeleteByBooks(ctx, bookIDs) },
	)
}

// DeleteReviewsByUser removes every review the user wrote.
func (s *Service) DeleteReviewsByUser(ctx context.Context, userID primitive.ObjectID) (int64, saga.Compensation, error) {
	return s.deleteSnapshot(ctx,
		func() ([]*Review, error) { return s.repo.FindByUser(ctx, userID) },
		func() (int64, error) { return s.repo.DeleteByUser(ctx, userID) },
	)
}

// deleteSnapshot reads the reviews about to go, deletes them and returns the
// deleted count with a compensation saving the snapshot back with the
// original ids.
func (s *Service) deleteSnapshot(ctx context.Context, find func() ([]*Review, error), del func() (int64, error)) (int64, saga.Compensation, error) {
	snapshot, err := find()
	if err != nil {
		return 0, nil, err
	}
	if len(snapshot) == 0 {
		return 0, saga.Noop, nil
	}
	n, err := del()
	if err != nil {
		return 0, nil, err
	}

	books := bookIDsOf(snapshot)
	s.cache.InvalidateAverageRating(ctx, books...)

	return n, func(ctx context.Context) error {
		if err := s.repo.SaveMany(ctx, snapshot); err != nil {
			return err
		}
		s.cache.InvalidateAverageRating(ctx, books...)
		return nil
	}, nil
}

func bookIDsOf(reviews []*Review) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(reviews))
	ids := make([]primitive.ObjectID, 0, len(reviews))
	for _, r := range reviews {
		if _, ok := seen[r.BookID]; ok {
			continue
		}
		seen[r.BookID] = struct{}{}
		ids = append(ids, r.BookID)
	}
	return ids
}
