package handler

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/xiebiao/bookreviews/pkg/errors"
	"github.com/xiebiao/bookreviews/pkg/response"
)

// pathID parses the ":id" segment. A malformed id is a 422, not a 404.
func pathID(c *gin.Context) (primitive.ObjectID, bool) {
	raw := c.Param("id")
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		response.Error(c, &apperrors.AppError{
			Code:    apperrors.ErrCodeInvalidID,
			Message: "Invalid id",
			Fields: []apperrors.FieldError{{
				Field:   "id",
				Rule:    "objectid",
				Message: fmt.Sprintf("%q is not a valid id", raw),
			}},
			Err: err,
		})
		return primitive.NilObjectID, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, bindError(err, "body"))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.Error(c, bindError(err, "query"))
		return false
	}
	return true
}

// bindError turns gin binding failures into per-field validation errors.
func bindError(err error, source string) *apperrors.AppError {
	var fields []apperrors.FieldError

	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			fields = append(fields, apperrors.FieldError{
				Field:   fe.Field(),
				Rule:    fe.Tag(),
				Message: ruleMessage(fe),
			})
		}
	case errors.As(err, &typeErr):
		fields = append(fields, apperrors.FieldError{
			Field:   typeErr.Field,
			Rule:    "type",
			Message: fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type),
		})
	default:
		fields = append(fields, apperrors.FieldError{
			Field:   source,
			Rule:    "parse",
			Message: err.Error(),
		})
	}

	return &apperrors.AppError{
		Code:    apperrors.ErrCodeBindError,
		Message: "Invalid request " + source,
		Fields:  fields,
		Err:     err,
	}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "objectid":
		return fe.Field() + " must be a valid id"
	case "date":
		return fe.Field() + " must be a date (YYYY-MM-DD)"
	default:
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
}
