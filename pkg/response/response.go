package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookreviews/pkg/errors"
)

// ErrorBody is returned for 404 and 500 responses.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// ValidationBody is returned for 422 responses.
type ValidationBody struct {
	Errors []apperrors.FieldError `json:"errors"`
}

// Success writes data with status 200.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// NoContent writes an empty 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error translates err into the matching HTTP response and records it on the
// gin context so the error middleware can log it.
//
//	view, err := h.authors.GetOne(ctx, id)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	_ = c.Error(appErr)

	status := apperrors.HTTPStatus(appErr.Code)
	switch status {
	case http.StatusUnprocessableEntity:
		fields := appErr.Fields
		if len(fields) == 0 {
			fields = []apperrors.FieldError{{Rule: "invalid", Message: appErr.Message}}
		}
		c.AbortWithStatusJSON(status, ValidationBody{Errors: fields})
	case http.StatusNotFound:
		c.AbortWithStatusJSON(status, ErrorBody{Detail: appErr.Message})
	default:
		// the internal cause is never exposed
		c.AbortWithStatusJSON(status, ErrorBody{Detail: "Internal Server Error"})
	}
}
