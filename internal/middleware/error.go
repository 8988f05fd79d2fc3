package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/physiotrack/clinic-api/pkg/httputil"
)

// abort ends the request with the standard error envelope.
func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, httputil.Response{
		Status:  "error",
		Message: message,
	})
}
