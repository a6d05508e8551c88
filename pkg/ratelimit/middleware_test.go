package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_LimitsPerClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := NewStore(RateLimitConfig{RPS: 0.001, Burst: 2, MaxAge: time.Minute})
	router := gin.New()
	router.Use(store.Middleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, store.Len())
}

func TestStore_Evict(t *testing.T) {
	store := NewStore(RateLimitConfig{RPS: 1, Burst: 1, MaxAge: time.Second})
	store.get("a")

	store.evict(time.Now())
	assert.Equal(t, 1, store.Len())

	store.evict(time.Now().Add(2 * time.Second))
	assert.Equal(t, 0, store.Len())
}
