package resolver

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNoCandidates     = errors.New("resolver: no candidate requests")
	ErrResponseTooLarge = errors.New("resolver: response body too large")
)

// Error is the network error surfaced to callers. Status is the HTTP status
// of the failed response, or 0 when no response was received.
type Error struct {
	Method  string
	URL     string
	Status  int
	Message string
	Body    []byte
	Cause   error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		if e.Cause != nil {
			return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Cause)
		}
		return fmt.Sprintf("%s %s: request failed", e.Method, e.URL)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// fallbackStatuses mean "this route or verb does not exist here".
var fallbackStatuses = map[int]bool{
	http.StatusNotFound:         true,
	http.StatusMethodNotAllowed: true,
	http.StatusNotImplemented:   true,
}

func IsFallbackStatus(status int) bool {
	return fallbackStatuses[status]
}

// IsFallbackEligible reports whether err allows the resolver to try the next
// candidate.
func IsFallbackEligible(err error) bool {
	var rerr *Error
	if errors.As(err, &rerr) {
		return IsFallbackStatus(rerr.Status)
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Status
	}
	return 0
}

func IsNetworkError(err error) bool {
	var rerr *Error
	return errors.As(err, &rerr)
}
