package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"leadflow/internal/constants"
)

type HTTPConfig struct {
	BaseURL   string
	AuthToken string
	UserAgent string
	Timeout   time.Duration
	Headers   map[string]string
	// MaxResponseBytes caps how much of a response body is read.
	MaxResponseBytes int64
}

// HTTPTransport sends candidates to the backend as JSON requests.
type HTTPTransport struct {
	client *http.Client
	cfg    HTTPConfig
}

func NewHTTPTransport(cfg HTTPConfig, client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = constants.MaxResponseBytes
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &HTTPTransport{client: client, cfg: cfg}
}

func (t *HTTPTransport) Do(ctx context.Context, c Candidate) (*Response, error) {
	target := t.resolveURL(c.URL)

	var body io.Reader
	if c.Body != nil {
		payload, err := json.Marshal(c.Body)
		if err != nil {
			return nil, &Error{Method: c.Method, URL: target, Cause: fmt.Errorf("encode request body: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, c.Method, target, body)
	if err != nil {
		return nil, &Error{Method: c.Method, URL: target, Cause: err}
	}

	req.Header.Set("Accept", "application/json")
	if c.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", t.cfg.UserAgent)
	}
	if t.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.cfg.AuthToken)
	}
	for k, v := range t.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &Error{Method: c.Method, URL: target, Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, t.cfg.MaxResponseBytes+1))
	if err != nil {
		return nil, &Error{Method: c.Method, URL: target, Status: resp.StatusCode, Cause: fmt.Errorf("read response body: %w", err)}
	}
	if int64(len(data)) > t.cfg.MaxResponseBytes {
		return nil, &Error{
			Method: c.Method,
			URL:    target,
			Status: resp.StatusCode,
			Cause:  fmt.Errorf("%w: limit is %d bytes", ErrResponseTooLarge, t.cfg.MaxResponseBytes),
		}
	}

	if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode > constants.HTTPStatusOKMax {
		return nil, &Error{
			Method:  c.Method,
			URL:     target,
			Status:  resp.StatusCode,
			Message: errorMessage(data),
			Body:    data,
		}
	}

	return &Response{
		Status:    resp.StatusCode,
		Header:    resp.Header,
		Body:      data,
		Candidate: c,
	}, nil
}

func (t *HTTPTransport) resolveURL(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return t.cfg.BaseURL + u
}

// errorMessage pulls a human readable message out of an error body. It
// understands {"message": ...}, {"error": "..."} and {"error": {"message": ...}}.
func errorMessage(body []byte) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		text := strings.TrimSpace(string(body))
		return truncateRunes(text, maxMessageLen)
	}
	if msg, ok := payload["message"].(string); ok && msg != "" {
		return msg
	}
	switch e := payload["error"].(type) {
	case string:
		return e
	case map[string]interface{}:
		if msg, ok := e["message"].(string); ok {
			return msg
		}
	}
	return ""
}

const maxMessageLen = 200

// truncateRunes cuts s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
