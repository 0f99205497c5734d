package author

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/xiebiao/bookreviews/pkg/errors"
)

// ErrAuthorNotFound matches every NotFound error with errors.Is.
var ErrAuthorNotFound = apperrors.New(apperrors.ErrCodeAuthorNotFound, "Author not found")

func NotFound(id primitive.ObjectID) *apperrors.AppError {
	return apperrors.Newf(apperrors.ErrCodeAuthorNotFound, "Author with id %s not found", id.Hex())
}
