package user

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/xiebiao/bookreviews/pkg/errors"
)

var ErrUserNotFound = apperrors.New(apperrors.ErrCodeUserNotFound, "User not found")

func NotFound(id primitive.ObjectID) *apperrors.AppError {
	return apperrors.Newf(apperrors.ErrCodeUserNotFound, "User with id %s not found", id.Hex())
}
