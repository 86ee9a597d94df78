package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"crm/logger"
	"crm/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// NewErrorResponse maps err onto a status and body. Unexpected errors keep
// their cause out of the body.
func NewErrorResponse(err error, path string) ErrorResponse {
	resp := ErrorResponse{
		Status:  http.StatusInternalServerError,
		Message: "Internal Server Error",
		Details: "uri=" + path,
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Kind != models.KindUnexpected {
		resp.Status = appErr.Status()
		resp.Message = appErr.Message
	}
	return resp
}

// ErrorHandler renders the last error recorded with c.Error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}
		resp := NewErrorResponse(last.Err, c.Request.URL.Path)

		entry := logger.L().WithFields(logrus.Fields{
			"status":     resp.Status,
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(RequestIDKey),
		}).WithError(last.Err)
		if resp.Status >= http.StatusInternalServerError {
			entry.Error("request failed")
		} else {
			entry.Warn("request rejected")
		}

		if c.Writer.Written() {
			return
		}
		c.JSON(resp.Status, resp)
	}
}

// Recovery turns a panic into a 500 with the standard error body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		err := fmt.Errorf("panic: %v", recovered)
		logger.L().WithFields(logrus.Fields{
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(RequestIDKey),
		}).WithError(err).Error("request panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, NewErrorResponse(err, c.Request.URL.Path))
	})
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
