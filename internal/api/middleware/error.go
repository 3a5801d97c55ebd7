package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dashview-backend-go/pkg/errors"
	"github.com/frostdev-ops/dashview-backend-go/pkg/utils"
)

// ErrorHandlingMiddleware recovers panics and renders unhandled errors in
// the standard response envelope
func ErrorHandlingMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"panic":  recovered,
			"stack":  string(debug.Stack()),
		}).Error("Panic recovered in HTTP handler")

		utils.SendError(c, http.StatusInternalServerError, errors.ErrInternalServer.Message)
		c.Abort()
	})
}
