package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string            `json:"error_code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Details string            `json:"details,omitempty"`
}

// ShowDetails adds the underlying error text to 500 responses. Enabled in development only.
var ShowDetails bool

func Write(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

func TooLarge(c *gin.Context, code, message string) {
	Write(c, http.StatusRequestEntityTooLarge, code, message)
}

func TooManyRequests(c *gin.Context, code, message string) {
	Write(c, http.StatusTooManyRequests, code, message)
}

// Internal writes a 500. err is only echoed back when ShowDetails is set.
func Internal(c *gin.Context, code, message string, err ...error) {
	body := HTTPError{Code: code, Message: message}
	if ShowDetails && len(err) > 0 && err[0] != nil {
		body.Details = err[0].Error()
	}
	if len(err) > 0 && err[0] != nil {
		_ = c.Error(err[0])
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, body)
}

// Validation writes a 400 listing every invalid field.
func Validation(c *gin.Context, fields map[string]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, HTTPError{
		Code:    "validation_failed",
		Message: "Please correct the highlighted fields.",
		Fields:  fields,
	})
}
