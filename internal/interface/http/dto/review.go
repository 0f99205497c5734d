package dto

import "github.com/xiebiao/bookreviews/internal/domain/review"

// CreateReviewRequest is the body of POST /reviews.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5" example:"4"`
	Comment string `json:"comment" binding:"required,min=2,max=1000" example:"Slow start, great ending"`
	BookID  string `json:"book_id" binding:"required,objectid" example:"65a1f0c2e13b7a5d9c8b4568"`
	UserID  string `json:"user_id" binding:"required,objectid" example:"65a1f0c2e13b7a5d9c8b4569"`
}

func (r CreateReviewRequest) ToEntity() *review.Review {
	return review.New(r.Rating, r.Comment, mustObjectID(r.BookID), mustObjectID(r.UserID))
}

// PatchReviewRequest is the body of PATCH /reviews/{id}. Omitted fields are kept.
type PatchReviewRequest struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" binding:"omitempty,min=2,max=1000"`
	BookID  *string `json:"book_id" binding:"omitempty,objectid"`
	UserID  *string `json:"user_id" binding:"omitempty,objectid"`
}

func (r PatchReviewRequest) ToPatch() review.Patch {
	return review.Patch{
		Rating:  r.Rating,
		Comment: r.Comment,
		BookID:  objectIDPtr(r.BookID),
		UserID:  objectIDPtr(r.UserID),
	}
}

type ReviewResponse struct {
	ID      string `json:"id" example:"65a1f0c2e13b7a5d9c8b456a"`
	Rating  int    `json:"rating" example:"4"`
	Comment string `json:"comment" example:"Slow start, great ending"`
	BookID  string `json:"book_id" example:"65a1f0c2e13b7a5d9c8b4568"`
	UserID  string `json:"user_id" example:"65a1f0c2e13b7a5d9c8b4569"`
}

func NewReviewResponse(r *review.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID.Hex(),
		Rating:  r.Rating,
		Comment: r.Comment,
		BookID:  r.BookID.Hex(),
		UserID:  r.UserID.Hex(),
	}
}
