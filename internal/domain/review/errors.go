package review

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/xiebiao/bookreviews/pkg/errors"
)

var ErrReviewNotFound = apperrors.New(apperrors.ErrCodeReviewNotFound, "Review not found")

func NotFound(id primitive.ObjectID) *apperrors.AppError {
	return apperrors.Newf(apperrors.ErrCodeReviewNotFound, "Review with id %s not found", id.Hex())
}
