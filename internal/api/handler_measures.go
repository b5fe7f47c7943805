package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"measure-reading-backend/internal/apperr"
	"measure-reading-backend/internal/measure"
)

// Upload handles POST /upload.
func (h *Handler) Upload(c *gin.Context) {
	var req measure.CreatePayload
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	res, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// Confirm handles PATCH /confirm.
func (h *Handler) Confirm(c *gin.Context) {
	var req measure.ConfirmPayload
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	if err := h.service.Confirm(c.Request.Context(), req); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListMeasures handles GET /:customer_code/list.
func (h *Handler) ListMeasures(c *gin.Context) {
	res, err := h.service.List(c.Request.Context(), c.Param("customer_code"), c.Query("measure_type"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// bindJSON decodes the request body, reporting malformed JSON as a
// validation error on the offending field.
func bindJSON(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return apperr.NewValidationError(typeErr.Field, typeMessage(typeErr))
	case errors.Is(err, io.EOF):
		return apperr.NewValidationError("body", "Required")
	default:
		return apperr.NewValidationError("body", "Invalid JSON")
	}
}

func typeMessage(err *json.UnmarshalTypeError) string {
	expected := jsonKind(err.Type.Kind().String())
	// A fractional number aimed at an integer field.
	if expected == "number" && strings.HasPrefix(err.Value, "number") {
		return "Expected integer, received float"
	}
	return "Expected " + expected + ", received " + err.Value
}

func jsonKind(goKind string) string {
	switch goKind {
	case "int", "int64", "ptr":
		return "number"
	default:
		return goKind
	}
}
