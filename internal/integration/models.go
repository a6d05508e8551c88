package integration

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Integration is one provider connection as reported by the backend.
// Backends disagree on field names, so decoding accepts the common aliases.
type Integration struct {
	Key        string `json:"key"`
	Name       string `json:"name,omitempty"`
	Connected  bool   `json:"connected"`
	Status     string `json:"status,omitempty"`
	LastSyncAt string `json:"lastSyncAt,omitempty"`
}

type integrationWire struct {
	Key         json.RawMessage `json:"key"`
	Provider    json.RawMessage `json:"provider"`
	Slug        json.RawMessage `json:"slug"`
	ID          json.RawMessage `json:"id"`
	Name        string          `json:"name"`
	DisplayName string          `json:"displayName"`
	Label       string          `json:"label"`
	Connected   *bool           `json:"connected"`
	IsConnected *bool           `json:"isConnected"`
	Status      string          `json:"status"`
	LastSyncAt  string          `json:"lastSyncAt"`
	LastSync    string          `json:"last_sync_at"`
}

var connectedStatuses = map[string]bool{
	"connected": true,
	"active":    true,
	"enabled":   true,
	"ok":        true,
}

func (i *Integration) UnmarshalJSON(data []byte) error {
	var w integrationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*i = Integration{
		Key:        firstNonEmpty(scalar(w.Key), scalar(w.Provider), scalar(w.Slug), scalar(w.ID)),
		Name:       firstNonEmpty(w.Name, w.DisplayName, w.Label),
		Status:     w.Status,
		LastSyncAt: firstNonEmpty(w.LastSyncAt, w.LastSync),
	}

	switch {
	case w.Connected != nil:
		i.Connected = *w.Connected
	case w.IsConnected != nil:
		i.Connected = *w.IsConnected
	default:
		i.Connected = connectedStatuses[strings.ToLower(w.Status)]
	}
	return nil
}

// scalar renders a JSON string or number as text. Anything else is "".
func scalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// providerBody is the body sent to the provider-agnostic action routes.
type providerBody struct {
	Provider string `json:"provider"`
}
