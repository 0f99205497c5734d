package user

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/rules"
)

// User writes reviews.
type User struct {
	ID       primitive.ObjectID `json:"id"`
	Name     string             `json:"name"`
	Birthday time.Time          `json:"birthday"`
	Email    string             `json:"email"`
	Phone    string             `json:"phone"`
}

// New returns an unsaved user.
func New(name string, birthday time.Time, email, phone string) *User {
	return &User{
		Name:     name,
		Birthday: birthday,
		Email:    email,
		Phone:    phone,
	}
}

// Validate checks the name length and the email and phone formats.
func (u *User) Validate() error {
	return rules.Check(validation.ValidateStruct(u,
		validation.Field(&u.Name, validation.Required, validation.RuneLength(3, 200)),
		validation.Field(&u.Birthday, validation.Required),
		validation.Field(&u.Email, validation.Required, rules.Email),
		validation.Field(&u.Phone, validation.Required, rules.Phone),
	))
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Name     *string
	Birthday *time.Time
	Email    *string
	Phone    *string
}

func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Birthday == nil && p.Email == nil && p.Phone == nil
}

func (p Patch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Birthday != nil {
		u.Birthday = *p.Birthday
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
}
