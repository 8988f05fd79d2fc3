package httputil

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/physiotrack/clinic-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    interface{}            `json:"data,omitempty"`
	Errors  []errors.FieldError    `json:"errors,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Status: "success",
		Data:   data,
	})
}

// RespondWithError sends an error response. Anything that is not an
// AppError is treated as an internal failure.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.Internal(err)
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.FullPath()).
			Msg("request failed")
	}

	c.AbortWithStatusJSON(status, Response{
		Status:  "error",
		Message: appErr.Message,
		Errors:  appErr.Fields,
		Details: appErr.Details,
	})
}

// BindJSON decodes the body into obj and turns binding failures into a
// validation AppError with per-field messages.
func BindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return ValidationError(err)
	}
	return nil
}

// ValidationError converts decoder and validator errors into an AppError.
func ValidationError(err error) *errors.AppError {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		fields := make([]errors.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, errors.FieldError{
				Field:   fe.Field(),
				Message: fieldMessage(fe),
			})
		}
		return errors.Validation("validation failed", fields...)
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		return errors.Validation("validation failed", errors.FieldError{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be a %s", typeErr.Type.String()),
		})
	}

	if stderrors.Is(err, io.EOF) {
		return errors.Validation("request body is required")
	}

	return errors.Validation(fmt.Sprintf("invalid request body: %v", err))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "money":
		return "must be a non-negative amount with at most two decimal places"
	default:
		return fmt.Sprintf("failed on %s validation", fe.Tag())
	}
}
