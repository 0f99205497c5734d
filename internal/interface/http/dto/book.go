package dto

import (
	"github.com/xiebiao/bookreviews/internal/domain/book"
	"github.com/xiebiao/bookreviews/internal/domain/query"
)

// CreateBookRequest. publication_date accepts YYYY-MM-DD or RFC 3339.
type CreateBookRequest struct {
	ISBN            string `json:"isbn" binding:"required,min=10,max=13" example:"9780061054884"`
	Title           string `json:"title" binding:"required,min=3,max=300" example:"The Dispossessed"`
	Description     string `json:"description" binding:"required,min=10,max=1000" example:"An ambiguous utopia"`
	PublicationDate string `json:"publication_date" binding:"required,date" example:"1974-05-01"`
	AuthorID        string `json:"author_id" binding:"required,objectid" example:"65a1f0c2e13b7a5d9c8b4567"`
}

func (r CreateBookRequest) ToEntity() *book.Book {
	return book.New(r.ISBN, r.Title, r.Description, mustDate(r.PublicationDate), mustObjectID(r.AuthorID))
}

// PatchBookRequest is the body of PATCH /books/{id}. Omitted fields are kept.
type PatchBookRequest struct {
	ISBN            *string `json:"isbn" binding:"omitempty,min=10,max=13"`
	Title           *string `json:"title" binding:"omitempty,min=3,max=300"`
	Description     *string `json:"description" binding:"omitempty,min=10,max=1000"`
	PublicationDate *string `json:"publication_date" binding:"omitempty,date"`
	AuthorID        *string `json:"author_id" binding:"omitempty,objectid"`
}

func (r PatchBookRequest) ToPatch() book.Patch {
	return book.Patch{
		ISBN:            r.ISBN,
		Title:           r.Title,
		Description:     r.Description,
		PublicationDate: datePtr(r.PublicationDate),
		AuthorID:        objectIDPtr(r.AuthorID),
	}
}

type BookResponse struct {
	ID              string `json:"id" example:"65a1f0c2e13b7a5d9c8b4568"`
	ISBN            string `json:"isbn" example:"9780061054884"`
	Title           string `json:"title" example:"The Dispossessed"`
	Description     string `json:"description" example:"An ambiguous utopia"`
	PublicationDate string `json:"publication_date" example:"1974-05-01"`
	AuthorID        string `json:"author_id" example:"65a1f0c2e13b7a5d9c8b4567"`
}

// BookDetailResponse adds the average rating to a book.
type BookDetailResponse struct {
	BookResponse
	AverageRating float64 `json:"average_rating" example:"4.5"`
}

func NewBookResponse(b *book.Book) BookResponse {
	return BookResponse{
		ID:              b.ID.Hex(),
		ISBN:            b.ISBN,
		Title:           b.Title,
		Description:     b.Description,
		PublicationDate: b.PublicationDate.Format(query.DateLayout),
		AuthorID:        b.AuthorID.Hex(),
	}
}

func NewBookDetailResponse(v *book.View) BookDetailResponse {
	return BookDetailResponse{BookResponse: NewBookResponse(v.Book), AverageRating: v.AverageRating}
}
