package resolver

import (
	"context"
	"time"

	"leadflow/pkg/metrics"
)

// Transport issues exactly one candidate request. Non-2xx responses and
// failures to get a response must be returned as *Error.
type Transport interface {
	Do(ctx context.Context, c Candidate) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, c Candidate) (*Response, error)

func (f TransportFunc) Do(ctx context.Context, c Candidate) (*Response, error) {
	return f(ctx, c)
}

type Logger interface {
	DebugwCtx(ctx context.Context, msg string, keysAndValues ...interface{})
	InfowCtx(ctx context.Context, msg string, keysAndValues ...interface{})
	WarnwCtx(ctx context.Context, msg string, keysAndValues ...interface{})
}

// Resolver tries candidates in order. A candidate answering 404, 405 or 501
// means the route does not exist and the next one is tried; any other
// failure ends the chain. Candidates never run concurrently.
type Resolver struct {
	transport Transport
	logger    Logger
}

func New(transport Transport, logger Logger) *Resolver {
	return &Resolver{
		transport: transport,
		logger:    logger,
	}
}

// Resolve returns the first successful response. When every candidate falls
// through, the error of the last one is returned.
func (r *Resolver) Resolve(ctx context.Context, candidates ...Candidate) (*Response, error) {
	if len(candidates) == 0 {
		metrics.IncResolverResolution("empty")
		return nil, ErrNoCandidates
	}

	var lastErr error
	for i, c := range candidates {
		if r.logger != nil {
			r.logger.DebugwCtx(ctx, "Trying candidate request",
				"method", c.Method,
				"url", c.URL,
				"attempt", i+1,
			)
		}
		start := time.Now()
		resp, err := r.transport.Do(ctx, c)
		metrics.ObserveResolverAttemptDuration(c.Method, time.Since(start))

		if err == nil {
			metrics.IncResolverAttempt(c.Method, "success")
			metrics.IncResolverResolution("success")
			metrics.ObserveResolverFallbackDepth(i)
			if resp == nil {
				resp = &Response{}
			}
			if resp.Candidate.Method == "" {
				resp.Candidate = c
			}
			return resp, nil
		}

		if !IsFallbackEligible(err) {
			metrics.IncResolverAttempt(c.Method, "error")
			metrics.IncResolverResolution("aborted")
			if r.logger != nil {
				r.logger.WarnwCtx(ctx, "Candidate request failed",
					"method", c.Method,
					"url", c.URL,
					"status", StatusOf(err),
					"attempt", i+1,
					"error", err,
				)
			}
			return nil, err
		}

		metrics.IncResolverAttempt(c.Method, "fallthrough")
		if r.logger != nil {
			r.logger.InfowCtx(ctx, "Candidate route unavailable, trying next",
				"method", c.Method,
				"url", c.URL,
				"status", StatusOf(err),
				"attempt", i+1,
				"remaining", len(candidates)-i-1,
			)
		}
		lastErr = err
	}

	metrics.IncResolverResolution("exhausted")
	if r.logger != nil {
		r.logger.WarnwCtx(ctx, "All candidate requests exhausted",
			"candidates", len(candidates),
			"status", StatusOf(lastErr),
			"error", lastErr,
		)
	}
	return nil, lastErr
}
