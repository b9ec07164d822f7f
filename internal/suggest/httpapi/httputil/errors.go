package httputil

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CodeInvalidRequest  = "invalid_request"
	CodeRequestTooLarge = "request_too_large"
	CodeRateLimited     = "rate_limited"
	CodeInternal        = "internal_error"
)

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

// WriteError aborts the chain and answers with the JSON error envelope.
func WriteError(c *gin.Context, status int, message, code, param string) {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: ErrorBody{
			Message: msg,
			Code:    strings.TrimSpace(code),
			Param:   strings.TrimSpace(param),
		},
	})
}
