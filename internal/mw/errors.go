package mw

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"measure-reading-backend/internal/apperr"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	ErrorCode        string `json:"error_code"`
	ErrorDescription any    `json:"error_description"`
}

// Errors translates the last error attached by a handler into a response.
// Handlers report failures with c.Error and return without writing a body.
func Errors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		status, body := translate(c.Errors.Last().Err)
		if status == http.StatusInternalServerError {
			log.Printf("%s %s: unhandled error: %v", c.Request.Method, c.Request.URL.Path, c.Errors.Last().Err)
		}
		c.AbortWithStatusJSON(status, body)
	}
}

var serverError = ErrorResponse{ErrorCode: "SERVER_ERROR", ErrorDescription: "Internal server error."}

// Recovery turns a panic into the same opaque 500 body as an unclassified
// error. gin logs the stack trace.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, serverError)
	})
}

func translate(err error) (int, ErrorResponse) {
	var (
		verr  *apperr.ValidationError
		derr  *apperr.DomainError
		exErr *apperr.ExtractionError
	)

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrorResponse{ErrorCode: "INVALID_DATA", ErrorDescription: verr.Fields}
	case errors.As(err, &derr):
		return derr.Status, ErrorResponse{ErrorCode: derr.Code, ErrorDescription: derr.Message}
	case errors.As(err, &exErr):
		return http.StatusBadRequest, ErrorResponse{
			ErrorCode:        "INVALID_DATA",
			ErrorDescription: map[string][]string{"image": {"Invalid input"}},
		}
	default:
		return http.StatusInternalServerError, serverError
	}
}
