package dto

import "github.com/xiebiao/bookreviews/internal/domain/author"

// CreateAuthorRequest is the body of POST /authors.
type CreateAuthorRequest struct {
	Name string  `json:"name" binding:"required,min=3,max=200" example:"Ursula K. Le Guin"`
	Bio  *string `json:"bio" binding:"required" example:"American author of speculative fiction"`
}

func (r CreateAuthorRequest) ToEntity() *author.Author {
	return author.New(r.Name, *r.Bio)
}

// PatchAuthorRequest leaves absent fields untouched.
type PatchAuthorRequest struct {
	Name *string `json:"name" binding:"omitempty,min=3,max=200" example:"Ursula Le Guin"`
	Bio  *string `json:"bio" example:"Earthsea"`
}

func (r PatchAuthorRequest) ToPatch() author.Patch {
	return author.Patch{Name: r.Name, Bio: r.Bio}
}

type AuthorResponse struct {
	ID   string `json:"id" example:"65a1f0c2e13b7a5d9c8b4567"`
	Name string `json:"name" example:"Ursula K. Le Guin"`
	Bio  string `json:"bio" example:"American author of speculative fiction"`
}

// AuthorDetailResponse is returned by GET /authors/{id}.
type AuthorDetailResponse struct {
	AuthorResponse
	BooksCount int64 `json:"books_count" example:"3"`
}

func NewAuthorResponse(a *author.Author) AuthorResponse {
	return AuthorResponse{ID: a.ID.Hex(), Name: a.Name, Bio: a.Bio}
}

func NewAuthorDetailResponse(v *author.View) AuthorDetailResponse {
	return AuthorDetailResponse{AuthorResponse: NewAuthorResponse(v.Author), BooksCount: v.BooksCount}
}
