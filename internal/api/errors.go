package api

import (
	"context"
	stderrors "errors"
	"net/http"

	"leadflow/internal/automation"
	"leadflow/internal/integration"
	"leadflow/pkg/circuitbreaker"
	"leadflow/pkg/errors"
	"leadflow/pkg/resolver"
)

// toAppError maps domain, resolver and transport failures onto the
// application error taxonomy served to clients.
func toAppError(err error) *errors.Error {
	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var ce *automation.CompileError
	if stderrors.As(err, &ce) {
		out := errors.ErrValidation.
			WithMessage(ce.Err.Error()).
			WithCause(err).
			WithDetail("code", ce.Code)
		if ce.Field != "" {
			out = out.WithDetail("field", ce.Field)
		}
		if ce.Index >= 0 {
			out = out.WithDetail("index", ce.Index).WithDetail("local_id", ce.LocalID)
		}
		return out
	}

	if stderrors.Is(err, automation.ErrMissingID) || stderrors.Is(err, integration.ErrMissingProvider) {
		return errors.ErrValidation.WithMessage(err.Error()).WithCause(err)
	}

	if stderrors.Is(err, circuitbreaker.ErrOpen) {
		return errors.ErrUpstreamUnavailable.WithCause(err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.ErrTimeout.WithCause(err)
	}

	var rerr *resolver.Error
	if stderrors.As(err, &rerr) {
		return fromResolverError(rerr)
	}

	return errors.ErrInternal.WithCause(err)
}

func fromResolverError(rerr *resolver.Error) *errors.Error {
	var out *errors.Error
	switch status := rerr.Status; {
	case status == 0:
		out = errors.ErrUpstream
	case status == http.StatusNotFound:
		out = errors.ErrNotFound
	case status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented:
		out = errors.ErrUnsupported
	case status == http.StatusUnauthorized:
		out = errors.ErrUnauthorized
	case status == http.StatusForbidden:
		out = errors.ErrForbidden
	case status == http.StatusConflict:
		out = errors.ErrConflict
	case status == http.StatusServiceUnavailable:
		out = errors.ErrUpstreamUnavailable
	case status == http.StatusGatewayTimeout:
		out = errors.ErrTimeout
	case status >= 400 && status < 500:
		out = errors.ErrValidation.WithStatus(status)
	default:
		out = errors.ErrUpstream
	}

	if rerr.Message != "" {
		out = out.WithMessage(rerr.Message)
	}
	out = out.WithCause(rerr)
	if rerr.Status != 0 {
		out = out.WithDetail("upstream_status", rerr.Status)
	}
	return out
}

var errMissingTriggerType = errors.ErrValidation.WithMessage("trigger type is required")
