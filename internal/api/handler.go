package api

import (
	"measure-reading-backend/internal/measure"
	"measure-reading-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	service *measure.Service
	store   store.Store
}

// NewHandler creates a new API handler.
func NewHandler(service *measure.Service, s store.Store) *Handler {
	return &Handler{
		service: service,
		store:   s,
	}
}
