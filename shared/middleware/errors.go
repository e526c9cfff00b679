package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/gin-gonic/gin"
)

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrBankUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperrors.ErrBank), errors.Is(err, apperrors.ErrAgent):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithAppError writes err as a {"message": ...} body. fallback is used
// when err carries no public message. Server errors are logged and never echoed.
func RespondWithAppError(c *gin.Context, err error, fallback string) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		RespondWithError(c, code, fallback)
		return
	}
	if msg, ok := apperrors.PublicMessage(err); ok {
		RespondWithError(c, code, msg)
		return
	}
	RespondWithError(c, code, fallback)
}
