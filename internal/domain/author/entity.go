package author

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/rules"
)

// Author is referenced by Book.AuthorID.
type Author struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
	Bio  string             `json:"bio"`
}

// New returns an unsaved author.
func New(name, bio string) *Author {
	return &Author{Name: name, Bio: bio}
}

// Validate checks the entity invariants: name is 3 to 200 characters.
func (a *Author) Validate() error {
	return rules.Check(validation.ValidateStruct(a,
		validation.Field(&a.Name, validation.Required, validation.RuneLength(3, 200)),
	))
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Name *string
	Bio  *string
}

// IsEmpty reports whether the patch sets no field.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Bio == nil
}

// Apply copies the set fields onto a.
func (p Patch) Apply(a *Author) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Bio != nil {
		a.Bio = *p.Bio
	}
}

// View is an author together with the number of books written.
type View struct {
	*Author
	BooksCount int64
}
