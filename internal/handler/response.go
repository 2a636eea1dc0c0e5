package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// envelope is the response shape shared by every API route. Code is zero on
// success and mirrors the HTTP status on errors, so clients can branch
// without re-reading the transport status.
type envelope struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, envelope{
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, envelope{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

func listMeta(count int) map[string]any {
	return map[string]any{"count": count}
}
