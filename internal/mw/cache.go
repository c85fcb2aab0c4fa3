package mw

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// entry is a replayable snapshot of a handler's response.
type entry struct {
	status int
	header http.Header
	body   []byte
}

func (e entry) replay(c *gin.Context) {
	dst := c.Writer.Header()
	for name, values := range e.header {
		dst[name] = values
	}
	dst.Set("X-Cache", "HIT")
	c.Data(e.status, e.header.Get("Content-Type"), e.body)
}

// teeWriter copies the response body aside while it is written to the client.
type teeWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *teeWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	return w.ResponseWriter.Write(p)
}

func (w *teeWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func successful(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// ResponseCache keeps successful GET responses in memory until they expire or a write succeeds.
// It only sees writes handled by the same process, so it must not be enabled when several
// instances serve the same database.
type ResponseCache struct {
	store      *cache.Cache
	ttl        time.Duration
	userHeader string

	// generation advances on every flush. A GET stores its snapshot only if no flush
	// happened while its handler ran.
	mu         sync.Mutex
	generation uint64
}

// NewResponseCache creates a cache whose entries live for ttl. Entries are keyed per caller using userHeader.
func NewResponseCache(ttl time.Duration, userHeader string) *ResponseCache {
	return &ResponseCache{
		store:      cache.New(ttl, 2*ttl),
		ttl:        ttl,
		userHeader: userHeader,
	}
}

// Flush drops every cached response.
func (rc *ResponseCache) Flush() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.generation++
	rc.store.Flush()
}

func (rc *ResponseCache) currentGeneration() uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.generation
}

// storeIf caches e under key unless the cache was flushed since generation gen.
func (rc *ResponseCache) storeIf(gen uint64, key string, e entry) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.generation != gen {
		return false
	}
	rc.store.Set(key, e, rc.ttl)
	return true
}

func (rc *ResponseCache) key(c *gin.Context) string {
	return c.GetHeader(rc.userHeader) + "|" + c.Request.RequestURI
}

// Middleware serves GET requests from the cache and flushes it after any successful write,
// so a client never reads its own stale data back.
func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			if successful(c.Writer.Status()) {
				rc.Flush()
			}
			return
		}

		key := rc.key(c)
		if v, ok := rc.store.Get(key); ok {
			v.(entry).replay(c)
			c.Abort()
			return
		}

		gen := rc.currentGeneration()
		tee := &teeWriter{ResponseWriter: c.Writer}
		c.Writer = tee
		c.Next()

		if !successful(tee.Status()) {
			return
		}
		rc.storeIf(gen, key, entry{
			status: tee.Status(),
			header: tee.Header().Clone(),
			body:   bytes.Clone(tee.buf.Bytes()),
		})
	}
}
