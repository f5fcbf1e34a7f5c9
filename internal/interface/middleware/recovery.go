package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wander-api/wander/pkg/response"
)

// Recovery converts panics into a generic 500. Recoverable conditions are
// handled as typed errors long before this point; a panic here is a defect.
// When onFatal is non-nil it is called after the response is written, which
// main uses to trigger a controlled shutdown when configured to do so.
func Recovery(logger *logrus.Logger, onFatal func()) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.Request.URL.Path,
			"panic":      recovered,
		}).Error("panic recovered")
		response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
		c.Abort()
		if onFatal != nil {
			onFatal()
		}
	})
}
