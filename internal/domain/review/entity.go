package review

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/rules"
)

// Review is written by one user about one book.
type Review struct {
	ID      primitive.ObjectID `json:"id"`
	Rating  int                `json:"rating"`
	Comment string             `json:"comment"`
	BookID  primitive.ObjectID `json:"book_id"`
	UserID  primitive.ObjectID `json:"user_id"`
}

// New returns an unsaved review.
func New(rating int, comment string, bookID, userID primitive.ObjectID) *Review {
	return &Review{
		Rating:  rating,
		Comment: comment,
		BookID:  bookID,
		UserID:  userID,
	}
}

// Validate checks rating is 1 to 5 and comment is 2 to 1000 characters.
func (r *Review) Validate() error {
	return rules.Check(validation.ValidateStruct(r,
		validation.Field(&r.Rating, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&r.Comment, validation.Required, validation.RuneLength(2, 1000)),
		validation.Field(&r.BookID, rules.ObjectID),
		validation.Field(&r.UserID, rules.ObjectID),
	))
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Rating  *int
	Comment *string
	BookID  *primitive.ObjectID
	UserID  *primitive.ObjectID
}

// IsEmpty reports whether the patch sets no field.
func (p Patch) IsEmpty() bool {
	return p.Rating == nil && p.Comment == nil && p.BookID == nil && p.UserID == nil
}

func (p Patch) Apply(r *Review) {
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	if p.Comment != nil {
		r.Comment = *p.Comment
	}
	if p.BookID != nil {
		r.BookID = *p.BookID
	}
	if p.UserID != nil {
		r.UserID = *p.UserID
	}
}
