package resolver

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadflow/pkg/circuitbreaker"
)

func breakerConfig(name string) circuitbreaker.Config {
	return circuitbreaker.Config{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  2,
		FailureRatio: 0.5,
	}
}

func TestBreakerTransport_FallbackStatusesDoNotTrip(t *testing.T) {
	next := TransportFunc(func(ctx context.Context, c Candidate) (*Response, error) {
		return nil, &Error{Method: c.Method, URL: c.URL, Status: http.StatusNotFound}
	})
	tr := NewBreakerTransport(next, breakerConfig("resolver-404"))

	for i := 0; i < 10; i++ {
		_, err := tr.Do(context.Background(), Get("/missing"))
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, StatusOf(err))
	}
	assert.True(t, tr.Breaker().IsClosed())
}

func TestBreakerTransport_OpenStateIsNonFallbackError(t *testing.T) {
	calls := 0
	next := TransportFunc(func(ctx context.Context, c Candidate) (*Response, error) {
		calls++
		return nil, &Error{Method: c.Method, URL: c.URL, Status: http.StatusBadGateway}
	})
	tr := NewBreakerTransport(next, breakerConfig("resolver-502"))

	for i := 0; i < 2; i++ {
		_, err := tr.Do(context.Background(), Get("/flaky"))
		require.Error(t, err)
	}
	require.True(t, tr.Breaker().IsOpen())

	_, err := tr.Do(context.Background(), Get("/flaky"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, circuitbreaker.ErrOpen))
	assert.Equal(t, 0, StatusOf(err))
	assert.False(t, IsFallbackEligible(err))
	assert.Equal(t, 2, calls)
}
