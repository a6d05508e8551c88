package automation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"leadflow/internal/constants"
	"leadflow/internal/logger"
	"leadflow/pkg/logging"
	"leadflow/pkg/metrics"
	"leadflow/pkg/models"
	"leadflow/pkg/resolver"
)

var ErrMissingID = errors.New("automation: rule id is required")

type Repository interface {
	List(ctx context.Context) ([]AutomationRule, error)
	Create(ctx context.Context, rule AutomationRule) (*AutomationRule, error)
	Update(ctx context.Context, id ID, patch RulePatch) (*AutomationRule, error)
	Remove(ctx context.Context, id ID) error
	Execute(ctx context.Context, req ExecuteRequest) (json.RawMessage, error)
	Save(ctx context.Context, draft RuleDraft) (*AutomationRule, error)
}

// ChangeNotifier is told about every successful mutation.
type ChangeNotifier interface {
	RuleChanged(ctx context.Context, action, ruleID string)
}

type RepositoryOption func(*HTTPRepository)

func WithNotifier(n ChangeNotifier) RepositoryOption {
	return func(r *HTTPRepository) {
		r.notifier = n
	}
}

// HTTPRepository talks to the backend through the request resolver. Mutating
// operations with an uncertain route are expressed as candidate chains.
type HTTPRepository struct {
	resolver *resolver.Resolver
	logger   logger.Logger
	notifier ChangeNotifier
}

func NewRepository(res *resolver.Resolver, log logger.Logger, opts ...RepositoryOption) *HTTPRepository {
	r := &HTTPRepository{
		resolver: res,
		logger:   log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func rulePath(id ID) string {
	return constants.AutomationsPath + "/" + url.PathEscape(id.String())
}

func (r *HTTPRepository) List(ctx context.Context) ([]AutomationRule, error) {
	done := r.observe(ctx, "list")

	resp, err := r.resolver.Resolve(ctx, resolver.Get(constants.AutomationsPath))
	if err != nil {
		done(err)
		return nil, err
	}

	items := resolver.NormalizeList(resp.Body)
	rules := make([]AutomationRule, 0, len(items))
	for i, raw := range items {
		var rule AutomationRule
		if err := json.Unmarshal(raw, &rule); err != nil {
			r.logger.WarnwCtx(ctx, "Skipping malformed automation rule", "index", i, "error", err)
			continue
		}
		rules = append(rules, rule)
	}

	done(nil)
	return rules, nil
}

func (r *HTTPRepository) Create(ctx context.Context, rule AutomationRule) (*AutomationRule, error) {
	done := r.observe(ctx, "create")

	resp, err := r.resolver.Resolve(ctx, resolver.Post(constants.AutomationsPath, bodyFromRule(rule)))
	if err != nil {
		done(err)
		return nil, err
	}

	created := decodeRule(resp.Body, rule)
	done(nil)
	r.notify(ctx, models.ActionCreate, created.ID)
	return created, nil
}

// Update tries PATCH by id, then POST by id, then either POST to the
// collection (when the patch is a complete rule) or POST by id once more.
func (r *HTTPRepository) Update(ctx context.Context, id ID, patch RulePatch) (*AutomationRule, error) {
	if strings.TrimSpace(id.String()) == "" {
		return nil, ErrMissingID
	}
	ctx = logging.WithRuleID(ctx, id.String())
	done := r.observe(ctx, "update")

	path := rulePath(id)
	last := resolver.Post(path, patch)
	if patch.IsFullRule() {
		last = resolver.Post(constants.AutomationsPath, patch.CreateBody())
	}

	resp, err := r.resolver.Resolve(ctx,
		resolver.Patch(path, patch),
		resolver.Post(path, patch),
		last,
	)
	if err != nil {
		done(err)
		return nil, err
	}

	updated := decodeRule(resp.Body, ruleFromPatch(id, patch))
	if updated.ID == "" {
		updated.ID = id
	}
	done(nil)
	r.notify(ctx, models.ActionUpdate, updated.ID)
	return updated, nil
}

// Remove deletes the rule, or deactivates it when the backend has no delete
// route.
func (r *HTTPRepository) Remove(ctx context.Context, id ID) error {
	if strings.TrimSpace(id.String()) == "" {
		return ErrMissingID
	}
	ctx = logging.WithRuleID(ctx, id.String())
	done := r.observe(ctx, "remove")

	path := rulePath(id)
	deactivate := map[string]bool{"active": false}

	resp, err := r.resolver.Resolve(ctx,
		resolver.Delete(path),
		resolver.Patch(path, deactivate),
		resolver.Post(path, deactivate),
	)
	done(err)
	if err != nil {
		return err
	}

	if resp.Candidate.Method != http.MethodDelete {
		r.logger.InfowCtx(ctx, "Rule deactivated instead of deleted", "method", resp.Candidate.Method)
	}
	r.notify(ctx, models.ActionDelete, id)
	return nil
}

// Execute manually fires rules for a trigger type. The response body is
// returned as is; an empty body yields nil.
func (r *HTTPRepository) Execute(ctx context.Context, req ExecuteRequest) (json.RawMessage, error) {
	done := r.observe(ctx, "execute")

	resp, err := r.resolver.Resolve(ctx, resolver.Post(constants.AutomationExecutePath, req))
	done(err)
	if err != nil {
		return nil, err
	}

	body := resolver.UnwrapObject(resp.Body)
	if len(body) == 0 || !json.Valid(body) {
		return nil, nil
	}
	return json.RawMessage(body), nil
}

// Save compiles draft and creates or updates the rule depending on whether
// the draft carries an id. Compile failures are returned before any request
// is made.
func (r *HTTPRepository) Save(ctx context.Context, draft RuleDraft) (*AutomationRule, error) {
	rule, err := Compile(draft)
	if err != nil {
		metrics.IncCompileFailure(ErrorCode(err))
		r.logger.DebugwCtx(ctx, "Draft rejected by compiler", "code", ErrorCode(err), "error", err)
		return nil, err
	}

	if rule.ID == "" {
		return r.Create(ctx, *rule)
	}
	return r.Update(ctx, rule.ID, PatchFromRule(*rule))
}

func (r *HTTPRepository) observe(ctx context.Context, op string) func(err error) {
	start := time.Now()
	return func(err error) {
		metrics.ObserveRepositoryOperationDuration("automation", op, time.Since(start))
		if err != nil {
			metrics.IncRepositoryOperation("automation", op, "error")
			r.logger.ErrorwCtx(ctx, "Automation operation failed",
				"operation", op,
				"status", resolver.StatusOf(err),
				"error", err,
			)
			return
		}
		metrics.IncRepositoryOperation("automation", op, "success")
	}
}

func (r *HTTPRepository) notify(ctx context.Context, action string, id ID) {
	if r.notifier != nil {
		r.notifier.RuleChanged(ctx, action, id.String())
	}
}

// decodeRule reads a rule from a response body, unwrapping {"data": {...}}.
// Bodies that do not hold a rule yield fallback.
func decodeRule(body []byte, fallback AutomationRule) *AutomationRule {
	body = resolver.UnwrapObject(body)
	if len(body) == 0 || body[0] != '{' {
		return &fallback
	}

	var rule AutomationRule
	if err := json.Unmarshal(body, &rule); err != nil || (rule.ID == "" && rule.Name == "") {
		return &fallback
	}
	return &rule
}

func ruleFromPatch(id ID, patch RulePatch) AutomationRule {
	rule := AutomationRule{ID: id, Actions: patch.Actions}
	if patch.Name != nil {
		rule.Name = *patch.Name
	}
	if patch.Active != nil {
		rule.Active = *patch.Active
	}
	if patch.Trigger != nil {
		rule.Trigger = *patch.Trigger
	}
	return rule
}
