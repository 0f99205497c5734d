package user

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/cascade"
	"github.com/xiebiao/bookreviews/internal/domain/query"
	"github.com/xiebiao/bookreviews/internal/domain/rules"
	"github.com/xiebiao/bookreviews/pkg/saga"
	"github.com/xiebiao/bookreviews/pkg/tracing"
)

const tracerName = "bookreviews/user"

// Schema lists the user fields a query may filter and sort on.
var Schema = query.Schema{
	Fields: map[string]query.Converter{
		"name":     query.String,
		"birthday": query.Date,
		"email":    query.String,
		"phone":    query.String,
	},
	DefaultSort: "name",
}

// ReviewCatalog removes the reviews a user wrote.
type ReviewCatalog interface {
	DeleteReviewsByUser(ctx context.Context, userID primitive.ObjectID) (int64, saga.Compensation, error)
}

// Service owns writes to the users collection.
type Service struct {
	repo    Repository
	reviews ReviewCatalog
	cascade cascade.Settings
}

func NewService(repo Repository, settings cascade.Settings) *Service {
	return &Service{repo: repo, cascade: settings}
}

func (s *Service) BindReviews(reviews ReviewCatalog) {
	s.reviews = reviews
}

// Create validates u and stores it under a fresh id.
func (s *Service) Create(ctx context.Context, u *User) (*User, error) {
	u.ID = primitive.NilObjectID
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, u)
}

// Update applies p to an existing user and revalidates the result.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, p Patch) (*User, error) {
	if p.IsEmpty() {
		return nil, rules.ErrEmptyPatch
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Apply(u)
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, u)
}

func (s *Service) GetOne(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// Exists returns NotFound when there is no user with id.
func (s *Service) Exists(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.repo.FindByID(ctx, id)
	return err
}

// Query returns one page of users matching req.
func (s *Service) Query(ctx context.Context, req query.Request) (query.Result[*User], error) {
	p, err := Schema.Build(req)
	if err != nil {
		return query.Result[*User]{}, err
	}
	return s.repo.Query(ctx, p)
}

// Delete removes the user and, concurrently, every review the user wrote.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "UserService.Delete")
	defer func() { tracing.End(span, err) }()

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	var reviews int64
	undoReviews := saga.Compensation(saga.Noop)
	sg := s.cascade.NewSaga("user.delete")
	sg.AddStep("user",
		func(ctx context.Context) error { return s.repo.Delete(ctx, id) },
		func(ctx context.Context) error {
			_, err := s.repo.Save(ctx, u)
			return err
		},
	)
	sg.AddStep("reviews",
		func(ctx context.Context) error {
			n, undo, err := s.reviews.DeleteReviewsByUser(ctx, id)
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

	s.cascade.Deleted(ctx, "user", id.Hex(), map[string]int64{"reviews": reviews})
	return nil
}
