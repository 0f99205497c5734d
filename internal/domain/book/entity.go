package book

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/rules"
)

// Book belongs to one author and is referenced by Review.BookID.
type Book struct {
	ID              primitive.ObjectID `json:"id"`
	ISBN            string             `json:"isbn"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	PublicationDate time.Time          `json:"publication_date"`
	AuthorID        primitive.ObjectID `json:"author_id"`
}

// New returns an unsaved book.
func New(isbn, title, description string, publicationDate time.Time, authorID primitive.ObjectID) *Book {
	return &Book{
		ISBN:            isbn,
		Title:           title,
		Description:     description,
		PublicationDate: publicationDate,
		AuthorID:        authorID,
	}
}

// Validate checks field invariants. The author reference is checked by the service.
func (b *Book) Validate() error {
	return rules.Check(validation.ValidateStruct(b,
		validation.Field(&b.ISBN, validation.Required, validation.RuneLength(10, 13)),
		validation.Field(&b.Title, validation.Required, validation.RuneLength(3, 300)),
		validation.Field(&b.Description, validation.Required, validation.RuneLength(10, 1000)),
		validation.Field(&b.PublicationDate, validation.Required),
		validation.Field(&b.AuthorID, rules.ObjectID),
	))
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	ISBN            *string
	Title           *string
	Description     *string
	PublicationDate *time.Time
	AuthorID        *primitive.ObjectID
}

// IsEmpty reports whether the patch sets no field.
func (p Patch) IsEmpty() bool {
	return p.ISBN == nil && p.Title == nil && p.Description == nil &&
		p.PublicationDate == nil && p.AuthorID == nil
}

// Apply copies the set fields onto b.
func (p Patch) Apply(b *Book) {
	if p.ISBN != nil {
		b.ISBN = *p.ISBN
	}
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.PublicationDate != nil {
		b.PublicationDate = *p.PublicationDate
	}
	if p.AuthorID != nil {
		b.AuthorID = *p.AuthorID
	}
}

// View is a book with the mean rating of its reviews, 0 without reviews.
type View struct {
	*Book
	AverageRating float64
}
