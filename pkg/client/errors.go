package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is a non-2xx answer from the travel API.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	detail := e.Detail()
	if detail == "" {
		return fmt.Sprintf("travel api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("travel api returned status %d: %s", e.StatusCode, detail)
}

// Detail extracts the most specific human-readable message, trying
// detail, error, message, non_field_errors and then the first field error
// in document order.
func (e *APIError) Detail() string {
	fields, order := decodeErrorBody(e.Body)
	if fields == nil {
		return strings.TrimSpace(plainText(e.Body))
	}

	for _, key := range []string{"detail", "error", "message", "non_field_errors"} {
		if msg := firstMessage(fields[key]); msg != "" {
			return msg
		}
	}
	for _, key := range order {
		if msg := firstMessage(fields[key]); msg != "" {
			return msg
		}
	}
	return ""
}

// FieldMessage returns the first message the API attached to field.
func (e *APIError) FieldMessage(field string) (string, bool) {
	fields, _ := decodeErrorBody(e.Body)
	msg := firstMessage(fields[field])
	return msg, msg != ""
}

func decodeErrorBody(body []byte) (map[string]json.RawMessage, []string) {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		if s, ok := tok.(string); ok {
			raw, _ := json.Marshal(s)
			return map[string]json.RawMessage{"detail": raw}, []string{"detail"}
		}
		return nil, nil
	}

	fields := make(map[string]json.RawMessage)
	var order []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fields, order
		}
		key, _ := keyTok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fields, order
		}
		fields[key] = value
		order = append(order, key)
	}
	return fields, order
}

// firstMessage accepts "text", ["text", ...] or {"field": ["text"]}.
func firstMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if msg := firstMessage(item); msg != "" {
				return msg
			}
		}
		return ""
	}

	nested, order := decodeErrorBody(raw)
	for _, key := range order {
		if msg := firstMessage(nested[key]); msg != "" {
			return msg
		}
	}
	return ""
}

func plainText(body []byte) string {
	s := string(body)
	if strings.HasPrefix(strings.TrimSpace(s), "<") {
		return ""
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
