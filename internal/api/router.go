package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"measure-reading-backend/internal/measure"
	"measure-reading-backend/internal/mw"
	"measure-reading-backend/internal/store"
)

// NewRouter creates and configures a new Gin router. A cacheTTL of zero
// disables response caching.
func NewRouter(service *measure.Service, s store.Store, cacheTTL time.Duration) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), mw.Recovery(), mw.Errors())

	handler := NewHandler(service, s)

	cacheStore := mw.NewResponseCache(cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)
	invalidate := mw.Invalidate(cacheStore)

	r.GET("/healthz", handler.Health)

	// POST /upload
	r.POST("/upload", invalidate, handler.Upload)

	// PATCH /confirm
	r.PATCH("/confirm", invalidate, handler.Confirm)

	// GET /{customer_code}/list?measure_type=
	r.GET("/:customer_code/list", caching, handler.ListMeasures)

	return r
}
