package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadflow/internal/broker"
	"leadflow/internal/cache"
	"leadflow/internal/config"
	"leadflow/internal/logger"
	"leadflow/pkg/resolver"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Backend: config.BackendConfig{
			BaseURL: baseURL,
			Timeout: time.Second,
			Probe: config.ProbeConfig{
				Enabled:         true,
				Path:            "/automations",
				MaxAttempts:     3,
				InitialInterval: time.Millisecond,
				MaxInterval:     5 * time.Millisecond,
				Multiplier:      2,
			},
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:      true,
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      time.Minute,
			MinRequests:  2,
			FailureRatio: 0.5,
		},
	}
}

func TestNewBase_Defaults(t *testing.T) {
	b := NewBase(testConfig("http://x"), logger.NopLogger())
	assert.Equal(t, cache.Nop{}, b.Cache)
	assert.Nil(t, b.Resolver)
}

func TestInitResolver_WithBreaker(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := NewBase(testConfig(srv.URL), logger.NopLogger())
	b.InitResolver(srv.Client())
	require.NotNil(t, b.Resolver)
	require.NotNil(t, b.Breaker)

	for i := 0; i < 2; i++ {
		_, err := b.Resolver.Resolve(context.Background(), resolver.Get("/automations"))
		assert.Equal(t, http.StatusInternalServerError, resolver.StatusOf(err))
	}

	_, err := b.Resolver.Resolve(context.Background(), resolver.Get("/automations"))
	require.Error(t, err)
	assert.Equal(t, 0, resolver.StatusOf(err))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.True(t, b.Breaker.Breaker().IsOpen())
}

func TestInitResolver_WithoutBreaker(t *testing.T) {
	cfg := testConfig("http://x")
	cfg.CircuitBreaker.Enabled = false

	b := NewBase(cfg, logger.NopLogger())
	b.InitResolver(nil)
	assert.NotNil(t, b.Resolver)
	assert.Nil(t, b.Breaker)
}

func TestProbeBackend_RetriesUntilReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	b := NewBase(testConfig(srv.URL), logger.NopLogger())
	assert.NoError(t, b.ProbeBackend(context.Background(), srv.Client()))
}

func TestProbeBackend_GivesUp(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	b := NewBase(testConfig(url), logger.NopLogger())
	assert.Error(t, b.ProbeBackend(context.Background(), nil))
}

func TestProbeBackend_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Backend.Probe.Enabled = false

	assert.NoError(t, NewBase(cfg, logger.NopLogger()).ProbeBackend(context.Background(), nil))
}

func TestInitBroker_DisabledIsNop(t *testing.T) {
	b := NewBase(testConfig("http://x"), logger.NopLogger())
	require.NoError(t, b.InitBroker())
	assert.IsType(t, broker.NopProducer{}, b.Producer)
	assert.NoError(t, b.Shutdown(context.Background()))
}

func TestInitCache_DisabledKeepsNop(t *testing.T) {
	b := NewBase(testConfig("http://x"), logger.NopLogger())
	b.InitCache(context.Background())
	assert.Nil(t, b.Redis)
	assert.Equal(t, cache.Nop{}, b.Cache)
}

func TestInitCache_UnreachableRedisFallsBackToMemory(t *testing.T) {
	cfg := testConfig("http://x")
	cfg.Cache.Enabled = true
	cfg.Cache.TTL = time.Minute
	cfg.Cache.Redis.Host = "127.0.0.1"
	cfg.Cache.Redis.Port = 1

	b := NewBase(cfg, logger.NopLogger())
	b.InitCache(context.Background())

	assert.Nil(t, b.Redis)
	assert.IsType(t, &cache.Memory{}, b.Cache)
}
