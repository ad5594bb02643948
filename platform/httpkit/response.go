// Package httpkit holds the gin middleware, caller identity and response
// envelopes shared by every module.
package httpkit

import (
	"net/http"

	"leadscore_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: data})
}

var internalErrorBody = ErrorResponse{Error: "internal server error", Code: string(apperr.CodeInternal)}

// HandleError writes err and reports whether there was one. Errors outside the
// apperr taxonomy become an opaque 500. Every 5xx is recorded on c.Errors for
// the request logger.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	status, body := http.StatusInternalServerError, internalErrorBody
	if e, ok := apperr.As(err); ok {
		status = e.HTTPStatus()
		body = ErrorResponse{Error: e.Message, Code: string(e.Code), Details: e.Details}
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, body)
	return true
}
