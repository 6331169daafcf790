package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projectdesk/internal/domain/apperror"
)

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// respond writes a success envelope
func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

// respondError maps the domain error taxonomy onto HTTP statuses: NotFound →
// 404, Forbidden → 403, BadRequest → 400, anything else → 500 with a generic
// message so internals never leak.
func respondError(c *gin.Context, err error) {
	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case apperror.KindForbidden:
		c.JSON(http.StatusForbidden, Response{Success: false, Error: err.Error()})
	case apperror.KindBadRequest:
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}

// respondBadRequest writes a 400 for malformed request payloads
func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}
