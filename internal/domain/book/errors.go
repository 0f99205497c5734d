package book

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/xiebiao/bookreviews/pkg/errors"
)

var ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "Book not found")

func NotFound(id primitive.ObjectID) *apperrors.AppError {
	return apperrors.Newf(apperrors.ErrCodeBookNotFound, "Book with id %s not found", id.Hex())
}
