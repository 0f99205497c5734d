package dto

import (
	"github.com/xiebiao/bookreviews/internal/domain/query"
	"github.com/xiebiao/bookreviews/internal/domain/user"
)

// Email and phone formats are checked by the domain rules; binding only
// requires presence.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=3,max=200" example:"Jane Reader"`
	Birthday string `json:"birthday" binding:"required,date" example:"1990-04-12"`
	Email    string `json:"email" binding:"required" example:"jane@example.com"`
	Phone    string `json:"phone" binding:"required" example:"555-123-4567"`
}

func (r CreateUserRequest) ToEntity() *user.User {
	return user.New(r.Name, mustDate(r.Birthday), r.Email, r.Phone)
}

// PatchUserRequest is the body of PATCH /users/{id}. Omitted fields are kept.
type PatchUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=3,max=200"`
	Birthday *string `json:"birthday" binding:"omitempty,date"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
}

func (r PatchUserRequest) ToPatch() user.Patch {
	return user.Patch{Name: r.Name, Birthday: datePtr(r.Birthday), Email: r.Email, Phone: r.Phone}
}

type UserResponse struct {
	ID       string `json:"id" example:"65a1f0c2e13b7a5d9c8b4569"`
	Name     string `json:"name" example:"Jane Reader"`
	Birthday string `json:"birthday" example:"1990-04-12"`
	Email    string `json:"email" example:"jane@example.com"`
	Phone    string `json:"phone" example:"555-123-4567"`
}

func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:       u.ID.Hex(),
		Name:     u.Name,
		Birthday: u.Birthday.Format(query.DateLayout),
		Email:    u.Email,
		Phone:    u.Phone,
	}
}
