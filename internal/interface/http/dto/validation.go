package dto

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/query"
)

var registerOnce sync.Once

// customTags are the validation tags the request DTOs use beyond the
// validator's built-ins.
var customTags = map[string]validator.Func{
	"objectid": func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	},
	"date": func(fl validator.FieldLevel) bool {
		_, err := query.Date(fl.Field().String())
		return err == nil
	},
}

// RegisterValidators adds the "objectid" and "date" tags to gin's validator
// and makes it report json field names. Safe to call more than once. It
// panics if a tag cannot be registered.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := registerTags(v, customTags); err != nil {
			panic(err)
		}
	})
}

func registerTags(v *validator.Validate, tags map[string]validator.Func) error {
	v.RegisterTagNameFunc(jsonName)
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q validator: %w", tag, err)
		}
	}
	return nil
}

func jsonName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return strings.TrimSuffix(name, "[]")
		}
	}
	return f.Name
}

// The helpers below run after binding, so their inputs are already valid.

func mustDate(raw string) time.Time {
	t, _ := query.Date(raw)
	d, _ := t.(time.Time)
	return d
}

func mustObjectID(raw string) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(raw)
	return id
}

func datePtr(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	d := mustDate(*raw)
	return &d
}

func objectIDPtr(raw *string) *primitive.ObjectID {
	if raw == nil {
		return nil
	}
	id := mustObjectID(*raw)
	return &id
}
