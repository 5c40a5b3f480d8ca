package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/followup-compliance/pkg/errors"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AbortWithError maps err to its HTTP status and writes the error body.
// Server-side failures keep their code but hide the message. The error is
// attached to the gin context so the logging middleware reports it.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)

	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Code:    string(errors.ErrCodeInternal),
			Message: "internal server error",
		})
		return
	}

	status := appErr.HTTPStatus()
	msg := appErr.Message
	if appErr.Detail != "" {
		msg += ": " + appErr.Detail
	}
	if status >= http.StatusInternalServerError {
		msg = errors.DefaultMessageForCode(appErr.Code)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Code: string(appErr.Code), Message: msg})
}
