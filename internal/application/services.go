// Package application assembles the entity services. The services reference
// each other for existence checks and cascade deletes, so they are built
// first and bound together afterwards.
package application

import (
	"github.com/xiebiao/bookreviews/internal/domain/author"
	"github.com/xiebiao/bookreviews/internal/domain/book"
	"github.com/xiebiao/bookreviews/internal/domain/cascade"
	"github.com/xiebiao/bookreviews/internal/domain/review"
	"github.com/xiebiao/bookreviews/internal/domain/user"
)

// Repositories is one store per collection.
type Repositories struct {
	Authors author.Repository
	Books   book.Repository
	Users   user.Repository
	Reviews review.Repository
}

// Caches are optional; nil fields fall back to no caching.
type Caches struct {
	BookCounts book.CountCache
	Ratings    review.RatingCache
}

// Services are the four entity services, bound to each other.
type Services struct {
	Authors *author.Service
	Books   *book.Service
	Users   *user.Service
	Reviews *review.Service
}

// NewServices builds the services and binds every cross-entity dependency.
func NewServices(repos Repositories, caches Caches, settings cascade.Settings) *Services {
	s := &Services{
		Authors: author.NewService(repos.Authors, settings),
		Books:   book.NewService(repos.Books, caches.BookCounts, settings),
		Users:   user.NewService(repos.Users, settings),
		Reviews: review.NewService(repos.Reviews, caches.Ratings, settings),
	}

	s.Authors.BindBooks(s.Books)
	s.Books.Bind(s.Authors, s.Reviews)
	s.Users.BindReviews(s.Reviews)
	s.Reviews.Bind(s.Books, s.Users)
	return s
}
