package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/pkg/response"
)

// ErrorHandler renders the last error attached to the context as {success:false, error}.
// Handlers and middleware never write error responses themselves.
func ErrorHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := apperror.KindOf(err).Status()
		if status >= http.StatusInternalServerError && logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString(CtxRequestIDKey),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
			}).Error("request failed")
		}
		response.Fail(c, status, apperror.PublicMessage(err))
	}
}

// Recovery turns a panic into the generic 500 envelope.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"request_id": c.GetString(CtxRequestIDKey),
				"panic":      recovered,
				"path":       c.Request.URL.Path,
			}).Error("panic recovered")
		}
		response.Fail(c, http.StatusInternalServerError, "Server Error")
	})
}

// NotFound answers unknown routes with the error envelope.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, "Route not found")
	}
}
