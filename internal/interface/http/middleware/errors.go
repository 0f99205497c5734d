package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/xiebiao/bookreviews/pkg/errors"
	"github.com/xiebiao/bookreviews/pkg/logger"
	"github.com/xiebiao/bookreviews/pkg/response"
)

// ErrorReporter hands every error attached with c.Error to the sink once the
// response is written, so logging never delays it.
func ErrorReporter(sink *logger.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, ge := range c.Errors {
			appErr := apperrors.GetAppError(ge.Err)
			fields := map[string]interface{}{
				"request_id": GetRequestID(c),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"code":       appErr.Code,
			}
			if len(appErr.Fields) > 0 {
				fields["fields"] = appErr.Fields
			}
			sink.Report(logger.Entry{
				Kind:    kindOf(appErr),
				Message: appErr.Message,
				Err:     appErr.Err,
				Fields:  fields,
			})
		}
	}
}

func kindOf(e *apperrors.AppError) string {
	switch {
	case apperrors.IsValidation(e):
		return "validation"
	case apperrors.IsNotFound(e):
		return "not_found"
	case e.Code == apperrors.ErrCodeDatabaseError:
		return "database"
	default:
		return "internal"
	}
}

// Recovery turns a panic into a 500 with the usual body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered interface{}) {
		log.Error().Interface("panic", recovered).Str("request_id", GetRequestID(c)).
			Str("path", c.Request.URL.Path).Msg("handler panicked")
		if c.Writer.Written() {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		response.Error(c, apperrors.ErrInternal)
	})
}
