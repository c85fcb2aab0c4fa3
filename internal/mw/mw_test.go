package mw

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"maintenance-records-backend/internal/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(rate.Limit(1), 2))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestIPRateLimiter_Evict(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(rate.Limit(1), 1)
	l.now = func() time.Time { return now }

	l.GetLimiter("10.0.0.1")
	now = now.Add(10 * time.Minute)
	l.GetLimiter("10.0.0.2")

	assert.Equal(t, 1, l.Evict(5*time.Minute))
	assert.Equal(t, 1, l.Len())
}

func TestResponseCache(t *testing.T) {
	rc := NewResponseCache(time.Minute, "X-User-ID")
	calls := 0

	r := gin.New()
	r.Use(rc.Middleware())
	r.GET("/records", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	r.POST("/records", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.PATCH("/records", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	get := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/records", nil)
		req.Header.Set("X-User-ID", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := get("1")
	second := get("1")
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, 1, calls)

	get("2")
	assert.Equal(t, 2, calls, "cache is per caller")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/records", nil))
	get("1")
	assert.Equal(t, 2, calls, "failed writes keep the cache")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/records", nil))
	require.Equal(t, http.StatusCreated, w.Code)
	get("1")
	assert.Equal(t, 3, calls, "successful writes flush the cache")
}

func TestResponseCache_InFlightGetDoesNotOutliveFlush(t *testing.T) {
	rc := NewResponseCache(time.Minute, "X-User-ID")
	photos := []string{"photo1"}
	var mu sync.Mutex
	started := make(chan struct{})
	release := make(chan struct{})
	blockNext := true

	r := gin.New()
	r.Use(rc.Middleware())
	r.GET("/photos", func(c *gin.Context) {
		mu.Lock()
		snapshot := append([]string{}, photos...)
		block := blockNext
		blockNext = false
		mu.Unlock()
		if block {
			close(started)
			<-release
		}
		c.JSON(http.StatusOK, snapshot)
	})
	r.DELETE("/photos", func(c *gin.Context) {
		mu.Lock()
		photos = []string{}
		mu.Unlock()
		c.Status(http.StatusOK)
	})

	get := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/photos", nil))
		return w
	}

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- get() }()
	<-started

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/photos", nil))
	require.Equal(t, http.StatusOK, w.Code)

	close(release)
	stale := <-done
	assert.JSONEq(t, `["photo1"]`, stale.Body.String())

	fresh := get()
	assert.Empty(t, fresh.Header().Get("X-Cache"))
	assert.JSONEq(t, `[]`, fresh.Body.String())
}

func TestRequestLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	var sawLogger bool
	r.GET("/x", func(c *gin.Context) {
		sawLogger = logging.From(c.Request.Context()) != logging.Default()
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.True(t, sawLogger)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}
