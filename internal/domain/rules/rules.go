// Package rules holds validation rules shared by the domain entities and the
// conversion of ozzo-validation errors into application errors.
package rules

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/xiebiao/bookreviews/pkg/errors"
)

var (
	emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
	phonePattern = regexp.MustCompile(`^[\+]?[(]?[0-9]{3}[)]?[-\s\.]?[0-9]{3}[-\s\.]?[0-9]{4,6}$`)
)

var (
	Email = validation.Match(emailPattern).Error("must be a valid email address")
	Phone = validation.Match(phonePattern).Error("must be a valid phone number")

	// ObjectID rejects the zero id.
	ObjectID = validation.By(func(value interface{}) error {
		id, ok := value.(primitive.ObjectID)
		if !ok {
			return errors.New("must be an object id")
		}
		if id.IsZero() {
			return errors.New("cannot be blank")
		}
		return nil
	})
)

// ErrEmptyPatch is returned for a partial update without any field.
var ErrEmptyPatch = apperrors.Validation("All fields cannot be empty")

// Check converts the result of validation.ValidateStruct into an AppError
// with one FieldError per rejected field.
func Check(err error) error {
	if err == nil {
		return nil
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return apperrors.Wrap(internal.InternalError(), "validation failed")
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return apperrors.Validation(err.Error())
	}

	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]apperrors.FieldError, 0, len(keys))
	for _, k := range keys {
		fe := apperrors.FieldError{Field: k, Rule: "invalid", Message: k + " " + errs[k].Error()}
		var ve validation.Error
		if errors.As(errs[k], &ve) {
			fe.Rule = strings.TrimPrefix(ve.Code(), "validation_")
		}
		fields = append(fields, fe)
	}
	return apperrors.Validation("validation failed", fields...)
}
