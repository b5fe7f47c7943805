package mw

import (
	"bytes"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// ResponseCache holds cached GET responses. Entries are keyed by a
// generation that Invalidate advances, so a response computed before a write
// can never be served after it.
type ResponseCache struct {
	store      *cache.Cache
	generation atomic.Uint64
}

// NewResponseCache creates an empty response cache.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{store: cache.New(ttl, 10*time.Minute)}
}

func (rc *ResponseCache) key(r *http.Request) string {
	return strconv.FormatUint(rc.generation.Load(), 10) + " " + r.URL.RequestURI()
}

// ItemCount returns the number of cached responses, including stale ones
// not yet flushed.
func (rc *ResponseCache) ItemCount() int {
	return rc.store.ItemCount()
}

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache is a middleware for in-memory caching of GET requests.
func Cache(rc *ResponseCache, duration time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || duration <= 0 {
			c.Next()
			return
		}

		key := rc.key(c.Request)
		if resp, found := rc.store.Get(key); found {
			cached := resp.(cachedResponse)
			for k, v := range cached.headers {
				c.Writer.Header()[k] = v
			}
			c.Writer.WriteHeader(cached.status)
			c.Writer.Write(cached.body)
			c.Abort()
			return
		}

		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only cache successful responses. Errors attached with c.Error are
		// rendered later by the Errors middleware, so the status is not final yet.
		if len(c.Errors) == 0 && blw.Written() && blw.Status() >= 200 && blw.Status() < 300 {
			response := cachedResponse{
				status:  blw.Status(),
				headers: blw.Header().Clone(),
				body:    blw.body.Bytes(),
			}
			rc.store.Set(key, response, duration)
		}
	}
}

// Invalidate advances the cache generation and flushes the cache after a
// successful mutating request, so that cached listings never hide a new or
// confirmed reading. Responses still in flight store under the old
// generation and are never read.
func Invalidate(rc *ResponseCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			return
		}
		if status := c.Writer.Status(); len(c.Errors) == 0 && status >= 200 && status < 300 {
			rc.generation.Add(1)
			rc.store.Flush()
		}
	}
}
