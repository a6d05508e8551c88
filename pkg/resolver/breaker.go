package resolver

import (
	"context"
	"errors"
	"net/http"

	"leadflow/pkg/circuitbreaker"
)

// BreakerTransport guards a Transport with a circuit breaker. Only network
// failures and 5xx responses other than 501 count against the breaker, so
// probing for routes that do not exist never opens it.
type BreakerTransport struct {
	next    Transport
	breaker *circuitbreaker.Wrapper
}

func NewBreakerTransport(next Transport, cfg circuitbreaker.Config) *BreakerTransport {
	cfg.IsSuccessful = countsAsSuccess
	return &BreakerTransport{
		next:    next,
		breaker: circuitbreaker.NewWrapper(cfg),
	}
}

func (t *BreakerTransport) Do(ctx context.Context, c Candidate) (*Response, error) {
	result, err := t.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
		return t.next.Do(ctx, c)
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpen) {
			return nil, &Error{Method: c.Method, URL: c.URL, Cause: err}
		}
		return nil, err
	}
	return result.(*Response), nil
}

func (t *BreakerTransport) Breaker() *circuitbreaker.Wrapper {
	return t.breaker
}

func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	status := StatusOf(err)
	if status == 0 {
		return false
	}
	return status < http.StatusInternalServerError || status == http.StatusNotImplemented
}
