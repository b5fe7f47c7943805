package mw

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"measure-reading-backend/internal/apperr"
)

func TestErrors(t *testing.T) {
	testCases := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Validation error",
			err:          apperr.NewValidationError("image", "Required"),
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error_code":"INVALID_DATA","error_description":{"image":["Required"]}}`,
		},
		{
			name:         "Wrapped domain error",
			err:          fmt.Errorf("upload: %w", apperr.ErrDoubleReport),
			expectedCode: http.StatusConflict,
			expectedBody: `{"error_code":"DOUBLE_REPORT","error_description":"Monthly reading already taken"}`,
		},
		{
			name:         "Not found",
			err:          apperr.ErrMeasureNotFound,
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error_code":"MEASURE_NOT_FOUND","error_description":"Measure not found"}`,
		},
		{
			name:         "Extraction error",
			err:          &apperr.ExtractionError{Err: errors.New("Error 400, Status: INVALID_ARGUMENT")},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error_code":"INVALID_DATA","error_description":{"image":["Invalid input"]}}`,
		},
		{
			name:         "Unclassified error does not leak",
			err:          errors.New("pq: password authentication failed"),
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error_code":"SERVER_ERROR","error_description":"Internal server error."}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(Errors())
			r.GET("/", func(c *gin.Context) {
				c.Error(tc.err)
			})

			w := serve(r, http.MethodGet, "/")
			assert.Equal(t, tc.expectedCode, w.Code)
			assert.JSONEq(t, tc.expectedBody, w.Body.String())
		})
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), Errors())
	r.GET("/", func(c *gin.Context) {
		var m map[string]int
		m["boom"] = 1
	})

	w := serve(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error_code":"SERVER_ERROR","error_description":"Internal server error."}`, w.Body.String())
}
