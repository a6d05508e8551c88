package integration

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"leadflow/internal/cache"
	"leadflow/internal/constants"
	"leadflow/internal/logger"
	"leadflow/pkg/logging"
	"leadflow/pkg/metrics"
	"leadflow/pkg/models"
	"leadflow/pkg/resolver"
)

var ErrMissingProvider = errors.New("integration: provider key is required")

const listCacheKey = "integrations:list"

// listRoutes are tried in order until one answers.
var listRoutes = []string{
	constants.IntegrationsPath,
	constants.IntegrationsPath + "/list",
	constants.IntegrationsPath + "/providers",
	"/settings/integrations",
	"/integration",
}

type Repository interface {
	List(ctx context.Context) ([]Integration, error)
	Connect(ctx context.Context, key string) (json.RawMessage, error)
	Disconnect(ctx context.Context, key string) (json.RawMessage, error)
	Sync(ctx context.Context, key string) (json.RawMessage, error)
	Status(ctx context.Context, key string) (*Integration, error)
}

type ChangeNotifier interface {
	IntegrationChanged(ctx context.Context, action, provider string)
}

type RepositoryOption func(*HTTPRepository)

func WithNotifier(n ChangeNotifier) RepositoryOption {
	return func(r *HTTPRepository) {
		r.notifier = n
	}
}

// WithCache caches the normalized list for ttl. Mutations invalidate it.
func WithCache(c cache.Cache, ttl time.Duration) RepositoryOption {
	return func(r *HTTPRepository) {
		r.cache = c
		r.ttl = ttl
	}
}

type HTTPRepository struct {
	resolver *resolver.Resolver
	logger   logger.Logger
	notifier ChangeNotifier
	cache    cache.Cache
	ttl      time.Duration
}

func NewRepository(res *resolver.Resolver, log logger.Logger, opts ...RepositoryOption) *HTTPRepository {
	r := &HTTPRepository{
		resolver: res,
		logger:   log,
		cache:    cache.Nop{},
		ttl:      constants.DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func providerPath(key, action string) string {
	p := constants.IntegrationsPath + "/" + url.PathEscape(key)
	if action != "" {
		p += "/" + action
	}
	return p
}

func (r *HTTPRepository) List(ctx context.Context) ([]Integration, error) {
	if cached, ok := r.cachedList(ctx); ok {
		return cached, nil
	}

	done := r.observe(ctx, "list")

	candidates := make([]resolver.Candidate, 0, len(listRoutes))
	for _, route := range listRoutes {
		candidates = append(candidates, resolver.Get(route))
	}

	resp, err := r.resolver.Resolve(ctx, candidates...)
	if err != nil {
		done(err)
		return nil, err
	}

	items := resolver.NormalizeList(resp.Body)
	list := make([]Integration, 0, len(items))
	for i, raw := range items {
		var in Integration
		if err := json.Unmarshal(raw, &in); err != nil {
			r.logger.WarnwCtx(ctx, "Skipping malformed integration", "index", i, "error", err)
			continue
		}
		list = append(list, in)
	}
	done(nil)

	r.storeList(ctx, list)
	return list, nil
}

func (r *HTTPRepository) cachedList(ctx context.Context) ([]Integration, bool) {
	data, ok, err := r.cache.Get(ctx, listCacheKey)
	if err != nil {
		metrics.IncCacheRequest("integrations", "error")
		r.logger.WarnwCtx(ctx, "Integration cache read failed", "error", err)
		return nil, false
	}
	if !ok {
		metrics.IncCacheRequest("integrations", "miss")
		return nil, false
	}

	var list []Integration
	if err := json.Unmarshal(data, &list); err != nil {
		metrics.IncCacheRequest("integrations", "error")
		return nil, false
	}
	metrics.IncCacheRequest("integrations", "hit")
	return list, true
}

func (r *HTTPRepository) storeList(ctx context.Context, list []Integration) {
	data, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, listCacheKey, data, r.ttl); err != nil {
		r.logger.WarnwCtx(ctx, "Integration cache write failed", "error", err)
	}
}

// Connect tries the provider route, then the collection route with the
// provider in the body.
func (r *HTTPRepository) Connect(ctx context.Context, key string) (json.RawMessage, error) {
	return r.mutate(ctx, "connect", key, models.ActionConnect,
		func(key string) []resolver.Candidate {
			return []resolver.Candidate{
				resolver.Post(providerPath(key, "connect"), nil),
				resolver.Post(constants.IntegrationsPath+"/connect", providerBody{Provider: key}),
			}
		})
}

// Disconnect tries the provider action route, a DELETE of the provider and
// finally the collection route.
func (r *HTTPRepository) Disconnect(ctx context.Context, key string) (json.RawMessage, error) {
	return r.mutate(ctx, "disconnect", key, models.ActionDisconnect,
		func(key string) []resolver.Candidate {
			return []resolver.Candidate{
				resolver.Post(providerPath(key, "disconnect"), nil),
				resolver.Delete(providerPath(key, "")),
				resolver.Post(constants.IntegrationsPath+"/disconnect", providerBody{Provider: key}),
			}
		})
}

func (r *HTTPRepository) Sync(ctx context.Context, key string) (json.RawMessage, error) {
	return r.mutate(ctx, "sync", key, models.ActionSync,
		func(key string) []resolver.Candidate {
			return []resolver.Candidate{
				resolver.Post(providerPath(key, "sync"), nil),
				resolver.Post(constants.IntegrationsPath+"/sync", providerBody{Provider: key}),
			}
		})
}

func (r *HTTPRepository) mutate(
	ctx context.Context,
	op, key, action string,
	chain func(key string) []resolver.Candidate,
) (json.RawMessage, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrMissingProvider
	}
	ctx = logging.WithProvider(ctx, key)
	done := r.observe(ctx, op)

	resp, err := r.resolver.Resolve(ctx, chain(key)...)
	done(err)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx)
	if r.notifier != nil {
		r.notifier.IntegrationChanged(ctx, action, key)
	}

	body := resolver.UnwrapObject(resp.Body)
	if len(body) == 0 || !json.Valid(body) {
		return nil, nil
	}
	return json.RawMessage(body), nil
}

// Status tries the provider status route, the collection status route with a
// provider query and finally the provider resource itself.
func (r *HTTPRepository) Status(ctx context.Context, key string) (*Integration, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrMissingProvider
	}
	ctx = logging.WithProvider(ctx, key)
	done := r.observe(ctx, "status")

	query := url.Values{"provider": []string{key}}
	resp, err := r.resolver.Resolve(ctx,
		resolver.Get(providerPath(key, "status")),
		resolver.Get(constants.IntegrationsPath+"/status?"+query.Encode()),
		resolver.Get(providerPath(key, "")),
	)
	done(err)
	if err != nil {
		return nil, err
	}

	status := &Integration{Key: key}
	body := resolver.UnwrapObject(resp.Body)
	if len(body) > 0 && body[0] == '{' {
		if err := json.Unmarshal(body, status); err != nil {
			r.logger.WarnwCtx(ctx, "Unreadable integration status", "error", err)
			status = &Integration{Key: key}
		}
	}
	if status.Key == "" {
		status.Key = key
	}
	return status, nil
}

func (r *HTTPRepository) invalidate(ctx context.Context) {
	if err := r.cache.Delete(ctx, listCacheKey); err != nil {
		r.logger.WarnwCtx(ctx, "Integration cache invalidation failed", "error", err)
	}
}

func (r *HTTPRepository) observe(ctx context.Context, op string) func(err error) {
	start := time.Now()
	return func(err error) {
		metrics.ObserveRepositoryOperationDuration("integration", op, time.Since(start))
		if err != nil {
			metrics.IncRepositoryOperation("integration", op, "error")
			r.logger.ErrorwCtx(ctx, "Integration operation failed",
				"operation", op,
				"status", resolver.StatusOf(err),
				"error", err,
			)
			return
		}
		metrics.IncRepositoryOperation("integration", op, "success")
	}
}
