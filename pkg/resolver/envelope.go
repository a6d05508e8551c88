package resolver

import (
	"bytes"
	"encoding/json"
)

var listKeys = []string{"data", "items", "results"}

// NormalizeList accepts a bare JSON array or an object wrapping one under
// "data", "items" or "results". Anything else is an empty list.
func NormalizeList(body []byte) []json.RawMessage {
	body = bytes.TrimSpace(body)

	var list []json.RawMessage
	if err := json.Unmarshal(body, &list); err == nil {
		if list == nil {
			return []json.RawMessage{}
		}
		return list
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return []json.RawMessage{}
	}
	for _, key := range listKeys {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &list); err == nil && list != nil {
			return list
		}
	}
	return []json.RawMessage{}
}

// UnwrapObject returns the object under "data" when body is a {"data": {...}}
// envelope, and body itself otherwise.
func UnwrapObject(body []byte) []byte {
	body = bytes.TrimSpace(body)
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return body
	}
	raw, ok := envelope["data"]
	if !ok {
		return body
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return body
	}
	return raw
}
