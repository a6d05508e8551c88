package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"leadflow/internal/api"
	"leadflow/internal/automation"
	"leadflow/internal/broker"
	"leadflow/internal/config"
	"leadflow/internal/constants"
	"leadflow/internal/integration"
	"leadflow/internal/logger"
	"leadflow/pkg/bootstrap"
	"leadflow/pkg/health"
	"leadflow/pkg/metrics"
	"leadflow/pkg/middleware"
	"leadflow/pkg/ratelimit"
)

type App struct {
	config  *config.Config
	logger  logger.Logger
	base    *bootstrap.Base
	router  *gin.Engine
	server  *http.Server
	limiter *ratelimit.Store
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		config: cfg,
		logger: log,
		base:   bootstrap.NewBase(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	metrics.RegisterAll()

	if err := a.base.ProbeBackend(ctx, nil); err != nil {
		return fmt.Errorf("backend probe failed: %w", err)
	}

	a.base.InitResolver(nil)

	if err := a.base.InitBroker(); err != nil {
		return fmt.Errorf("failed to initialize event producer: %w", err)
	}

	a.base.InitCache(ctx)

	if err := a.initRouter(); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}
	return nil
}

func (a *App) initRouter() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(a.logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.logger))
	router.Use(middleware.MetricsMiddleware())

	if rl := a.config.RateLimit; rl.Enabled {
		a.limiter = ratelimit.NewStore(ratelimit.RateLimitConfig{
			RPS:             rl.RPS,
			Burst:           rl.Burst,
			CleanupInterval: rl.CleanupInterval,
			MaxAge:          rl.MaxAge,
		})
		router.Use(a.limiter.Middleware())
		a.logger.Infow("Rate limiting enabled", "rps", rl.RPS, "burst", rl.Burst)
	}

	previewer, err := automation.NewPreviewer()
	if err != nil {
		return err
	}

	notifier := broker.NewNotifier(a.base.Producer, a.config.Events.Kafka.Topic, a.logger)
	automations := automation.NewRepository(a.base.Resolver, a.logger, automation.WithNotifier(notifier))
	integrations := integration.NewRepository(a.base.Resolver, a.logger,
		integration.WithNotifier(notifier),
		integration.WithCache(a.base.Cache, a.config.Cache.TTL),
	)

	api.NewHandler(automations, integrations, previewer, a.logger).RegisterRoutes(router)

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewHTTPChecker("backend", a.config.Backend.BaseURL+a.config.Backend.Probe.Path, nil))
	if a.base.Redis != nil {
		healthRegistry.RegisterOptional(health.NewRedisChecker(a.base.Redis))
	}
	if a.config.Events.Enabled {
		healthRegistry.RegisterOptional(health.NewKafkaChecker(a.config.Events.Kafka.Brokers))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a.router = router
	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfowCtx(ctx, "Server listening", "port", a.config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if a.limiter != nil {
		g.Go(func() error {
			a.limiter.Cleanup(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return a.Shutdown(ctx)
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.InfowCtx(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}

	if err := a.base.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.logger.InfowCtx(ctx, "Server exited successfully")
	return nil
}
