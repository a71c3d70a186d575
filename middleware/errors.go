package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-mess-api/apperr"
)

// ErrorHandler renders the last error attached to the context as
// {success:false, message, error}. Internal errors are logged with their cause,
// which is also returned as error when showDetail is set.
func ErrorHandler(log *zap.Logger, showDetail bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := apperr.Status(err)
		body := gin.H{"success": false, "message": apperr.Message(err)}

		if apperr.KindOf(err) == apperr.KindInternal {
			log.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err))
			if diag := apperr.Diagnostic(err); showDetail && diag != "" {
				body["error"] = diag
			}
		}
		c.JSON(status, body)
	}
}
