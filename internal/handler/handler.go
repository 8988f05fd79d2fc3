// Package handler holds helpers shared by the HTTP handlers in its
// subpackages.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/physiotrack/clinic-api/pkg/errors"
)

// Handler is implemented by every resource handler.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// ParseID reads a positive integer path parameter.
func ParseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Validation("invalid "+name, errors.FieldError{
			Field:   name,
			Message: "must be a positive integer",
		})
	}
	return id, nil
}
