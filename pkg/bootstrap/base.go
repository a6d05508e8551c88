package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"leadflow/internal/broker"
	"leadflow/internal/cache"
	"leadflow/internal/config"
	"leadflow/internal/constants"
	"leadflow/internal/logger"
	"leadflow/pkg/circuitbreaker"
	"leadflow/pkg/resolver"
	"leadflow/pkg/retry"
)

// Base owns the shared collaborators of the server and the CLI.
type Base struct {
	Config   *config.Config
	Logger   logger.Logger
	Producer broker.Producer
	Cache    cache.Cache
	Redis    *redis.Client
	Breaker  *resolver.BreakerTransport
	Resolver *resolver.Resolver
}

func NewBase(cfg *config.Config, log logger.Logger) *Base {
	return &Base{
		Config: cfg,
		Logger: log,
		Cache:  cache.Nop{},
	}
}

// InitResolver builds the HTTP transport, optionally wrapped in a circuit
// breaker, and the resolver on top of it.
func (b *Base) InitResolver(client *http.Client) {
	backend := b.Config.Backend
	var transport resolver.Transport = resolver.NewHTTPTransport(resolver.HTTPConfig{
		BaseURL:          backend.BaseURL,
		AuthToken:        backend.AuthToken,
		UserAgent:        backend.UserAgent,
		Timeout:          backend.Timeout,
		Headers:          backend.Headers,
		MaxResponseBytes: constants.MaxResponseBytes,
	}, client)

	if cb := b.Config.CircuitBreaker; cb.Enabled {
		b.Breaker = resolver.NewBreakerTransport(transport, circuitbreaker.Config{
			Name:         "backend",
			MaxRequests:  cb.MaxRequests,
			Interval:     cb.Interval,
			Timeout:      cb.Timeout,
			MinRequests:  cb.MinRequests,
			FailureRatio: cb.FailureRatio,
			OnStateChange: func(name string, from, to gobreaker.State) {
				b.Logger.Warnw("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		})
		transport = b.Breaker
	}

	b.Resolver = resolver.New(transport, b.Logger)
}

func (b *Base) InitBroker() error {
	producer, err := broker.NewProducer(b.Config.Events, b.Logger)
	if err != nil {
		return fmt.Errorf("failed to create producer: %w", err)
	}
	b.Producer = producer
	return nil
}

// InitCache connects to Redis when caching is enabled. When Redis cannot be
// reached the instance caches in process instead.
func (b *Base) InitCache(ctx context.Context) {
	cfg := b.Config.Cache
	if !cfg.Enabled {
		return
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		b.Logger.WarnwCtx(ctx, "Redis unavailable, falling back to in-process cache", "error", err)
		rdb.Close()
		b.Cache = cache.NewMemory()
		return
	}

	b.Logger.InfowCtx(ctx, "Redis connected successfully", "host", cfg.Redis.Host)
	b.Redis = rdb
	b.Cache = cache.NewRedisCache(rdb, cfg.KeyPrefix)
}

// ProbeBackend waits for the backend to answer at all, with exponential
// backoff. Any HTTP response counts as reachable.
func (b *Base) ProbeBackend(ctx context.Context, client *http.Client) error {
	probe := b.Config.Backend.Probe
	if !probe.Enabled {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: b.Config.Backend.Timeout}
	}
	url := b.Config.Backend.BaseURL + probe.Path

	policy := retry.Policy{
		MaxAttempts:     probe.MaxAttempts,
		InitialInterval: probe.InitialInterval,
		MaxInterval:     probe.MaxInterval,
		Multiplier:      probe.Multiplier,
	}

	return retry.Do(ctx, policy, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		return nil
	}, func(attempt int, err error, next time.Duration) {
		b.Logger.WarnwCtx(ctx, "Backend not reachable yet", "attempt", attempt, "retry_in", next, "error", err)
	})
}

func (b *Base) Shutdown(ctx context.Context) error {
	var errs []error

	if b.Producer != nil {
		if err := b.Producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("producer close error: %w", err))
		}
	}

	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close error: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}
