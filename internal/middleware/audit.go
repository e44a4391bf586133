package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/transport-request-api/internal/models"
)

// ActivityRecorder appends entries to the system activity log.
type ActivityRecorder interface {
	Record(session models.Session, action, details string)
}

// Activity records action in the system log after a successful response.
// describe builds the details text from the finished request.
func Activity(recorder ActivityRecorder, action string, describe func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if recorder == nil || c.Writer.Status() >= 400 {
			return
		}
		session, _ := Session(c)
		details := c.Request.Method + " " + c.FullPath()
		if describe != nil {
			details = describe(c)
		}
		recorder.Record(session, action, details)
	}
}
