package memory

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/author"
	"github.com/xiebiao/bookreviews/internal/domain/book"
	"github.com/xiebiao/bookreviews/internal/domain/query"
	"github.com/xiebiao/bookreviews/internal/domain/review"
	"github.com/xiebiao/bookreviews/internal/domain/user"
)

// =========================================
// Authors
// =========================================

type authorRepository struct {
	*store[author.Author]
}

func NewAuthorRepository() author.Repository {
	return &authorRepository{newStore("authors",
		func(a *author.Author) *primitive.ObjectID { return &a.ID },
		func(a *author.Author, f string) interface{} {
			switch f {
			case "name":
				return a.Name
			case "bio":
				return a.Bio
			}
			return nil
		},
		func(id primitive.ObjectID) error { return author.NotFound(id) },
	)}
}

func (r *authorRepository) Save(ctx context.Context, a *author.Author) (*author.Author, error) {
	return r.save(ctx, a)
}

func (r *authorRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*author.Author, error) {
	return r.find(ctx, id)
}

func (r *authorRepository) FindAll(ctx context.Context) ([]*author.Author, error) {
	return r.where(ctx, nil)
}

func (r *authorRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.delete(ctx, id)
}

func (r *authorRepository) Query(ctx context.Context, p query.Params) (query.Result[*author.Author], error) {
	items, total, err := r.query(ctx, p)
	if err != nil {
		return query.Result[*author.Author]{}, err
	}
	return query.NewResult(items, total, p), nil
}

// =========================================
// Books
// =========================================

type bookRepository struct {
	*store[book.Book]
}

func NewBookRepository() book.Repository {
	return &bookRepository{newStore("books",
		func(b *book.Book) *primitive.ObjectID { return &b.ID },
		func(b *book.Book, f string) interface{} {
			switch f {
			case "isbn":
				return b.ISBN
			case "title":
				return b.Title
			case "description":
				return b.Description
			case "publication_date":
				return b.PublicationDate
			case "author_id":
				return b.AuthorID
			}
			return nil
		},
		func(id primitive.ObjectID) error { return book.NotFound(id) },
	)}
}

func (r *bookRepository) Save(ctx context.Context, b *book.Book) (*book.Book, error) {
	return r.save(ctx, b)
}

func (r *bookRepository) SaveMany(ctx context.Context, books []*book.Book) error {
	return r.saveMany(ctx, books)
}

func (r *bookRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*book.Book, error) {
	return r.find(ctx, id)
}

func (r *bookRepository) FindAll(ctx context.Context) ([]*book.Book, error) {
	return r.where(ctx, nil)
}

func (r *bookRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.delete(ctx, id)
}

func (r *bookRepository) Query(ctx context.Context, p query.Params) (query.Result[*book.Book], error) {
	items, total, err := r.query(ctx, p)
	if err != nil {
		return query.Result[*book.Book]{}, err
	}
	return query.NewResult(items, total, p), nil
}

func byAuthor(authorID primitive.ObjectID) func(*book.Book) bool {
	return func(b *book.Book) bool { return b.AuthorID == authorID }
}

func (r *bookRepository) CountByAuthor(ctx context.Context, authorID primitive.ObjectID) (int64, error) {
	return r.count(ctx, byAuthor(authorID))
}

func (r *bookRepository) FindByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]*book.Book, error) {
	return r.where(ctx, byAuthor(authorID))
}

func (r *bookRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	return r.deleteWhere(ctx, func(b *book.Book) bool { return in(ids, b.ID) })
}

// =========================================
// Users
// =========================================

type userRepository struct {
	*store[user.User]
}

func NewUserRepository() user.Repository {
	return &userRepository{newStore("users",
		func(u *user.User) *primitive.ObjectID { return &u.ID },
		func(u *user.User, f string) interface{} {
			switch f {
			case "name":
				return u.Name
			case "birthday":
				return u.Birthday
			case "email":
				return u.Email
			case "phone":
				return u.Phone
			}
			return nil
		},
		func(id primitive.ObjectID) error { return user.NotFound(id) },
	)}
}

func (r *userRepository) Save(ctx context.Context, u *user.User) (*user.User, error) {
	return r.save(ctx, u)
}

func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*user.User, error) {
	return r.find(ctx, id)
}

func (r *userRepository) FindAll(ctx context.Context) ([]*user.User, error) {
	return r.where(ctx, nil)
}

func (r *userRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.delete(ctx, id)
}

func (r *userRepository) Query(ctx context.Context, p query.Params) (query.Result[*user.User], error) {
	items, total, err := r.query(ctx, p)
	if err != nil {
		return query.Result[*user.User]{}, err
	}
	return query.NewResult(items, total, p), nil
}

// =========================================
// Reviews
// =========================================

type reviewRepository struct {
	*store[review.Review]
}

func NewReviewRepository() review.Repository {
	return &reviewRepository{newStore("reviews",
		func(r *review.Review) *primitive.ObjectID { return &r.ID },
		func(r *review.Review, f string) interface{} {
			switch f {
			case "rating":
				return r.Rating
			case "comment":
				return r.Comment
			case "book_id":
				return r.BookID
			case "user_id":
				return r.UserID
			}
			return nil
		},
		func(id primitive.ObjectID) error { return review.NotFound(id) },
	)}
}

func (r *reviewRepository) Save(ctx context.Context, rv *review.Review) (*review.Review, error) {
	return r.save(ctx, rv)
}

func (r *reviewRepository) SaveMany(ctx context.Context, reviews []*review.Review) error {
	return r.saveMany(ctx, reviews)
}

func (r *reviewRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*review.Review, error) {
	return r.find(ctx, id)
}

func (r *reviewRepository) FindAll(ctx context.Context) ([]*review.Review, error) {
	return r.where(ctx, nil)
}

func (r *reviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.delete(ctx, id)
}

func (r *reviewRepository) Query(ctx context.Context, p query.Params) (query.Result[*review.Review], error) {
	items, total, err := r.query(ctx, p)
	if err != nil {
		return query.Result[*review.Review]{}, err
	}
	return query.NewResult(items, total, p), nil
}

func (r *reviewRepository) AverageRatingForBook(ctx context.Context, bookID primitive.ObjectID) (float64, error) {
	reviews, err := r.FindByBook(ctx, bookID)
	if err != nil || len(reviews) == 0 {
		return 0, err
	}
	var sum int
	for _, rv := range reviews {
		sum += rv.Rating
	}
	return float64(sum) / float64(len(reviews)), nil
}

func byBooks(bookIDs ...primitive.ObjectID) func(*review.Review) bool {
	return func(rv *review.Review) bool { return in(bookIDs, rv.BookID) }
}

func byUser(userID primitive.ObjectID) func(*review.Review) bool {
	return func(rv *review.Review) bool { return rv.UserID == userID }
}

func (r *reviewRepository) FindByBook(ctx context.Context, bookID primitive.ObjectID) ([]*review.Review, error) {
	return r.where(ctx, byBooks(bookID))
}

func (r *reviewRepository) FindByBooks(ctx context.Context, bookIDs []primitive.ObjectID) ([]*review.Review, error) {
	return r.where(ctx, byBooks(bookIDs...))
}

func (r *reviewRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*review.Review, error) {
	return r.where(ctx, byUser(userID))
}

func (r *reviewRepository) DeleteByBook(ctx context.Context, bookID primitive.ObjectID) (int64, error) {
	return r.deleteWhere(ctx, byBooks(bookID))
}

func (r *reviewRepository) DeleteByBooks(ctx context.Context, bookIDs []primitive.ObjectID) (int64, error) {
	return r.deleteWhere(ctx, byBooks(bookIDs...))
}

func (r *reviewRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.deleteWhere(ctx, byUser(userID))
}
