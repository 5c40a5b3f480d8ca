// Package handlers holds the gin handlers of the follow-up API. Handlers only
// translate HTTP to service calls; identity comes from the middleware.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/followup-compliance/internal/interfaces/http/middleware"
	"github.com/turtacn/followup-compliance/pkg/errors"
)

// DataResponse wraps every successful payload.
type DataResponse struct {
	Data interface{} `json:"data"`
}

func writeData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, DataResponse{Data: data})
}

// bindBody decodes the JSON body into dst and aborts with 400 on failure.
func bindBody(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.AbortWithError(c, errors.InvalidParam("invalid request body").WithCause(err))
		return false
	}
	return true
}

// fail aborts the request with err. Server-side failures are also logged
// here with the operation name.
func fail(c *gin.Context, logger logging.Logger, op string, err error) {
	status := http.StatusInternalServerError
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		status = appErr.HTTPStatus()
	}
	if status >= http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error(op+" failed", logging.Err(err))
	}
	middleware.AbortWithError(c, err)
}
