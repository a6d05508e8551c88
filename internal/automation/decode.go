package automation

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
)

// Backends are loose about types. The helpers below read a single raw value
// and degrade anything they cannot interpret to the zero value instead of
// failing the whole rule.

var errTrailingData = errors.New("invalid character after top-level value")

// decodeValue decodes raw into v keeping numbers as json.Number, so large
// integers survive a decode and re-encode unchanged.
func decodeValue(raw []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errTrailingData
	}
	return nil
}

func looseString(raw json.RawMessage) string {
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
		return n.String()
	}
	return ""
}

func looseBool(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	switch strings.ToLower(looseString(raw)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// looseMinutes reads a non-negative whole number of minutes from a number or
// a numeric string. Fractions are truncated; anything else is absent.
func looseMinutes(raw json.RawMessage) *int {
	s := strings.TrimSpace(looseString(raw))
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return nil
		}
		return intPtr(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 {
		return nil
	}
	return intPtr(int(f))
}

func looseFields(data []byte) map[string]json.RawMessage {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	return fields
}
