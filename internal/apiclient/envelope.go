package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope is the {message, data} wrapper every backend endpoint uses.
type Envelope struct {
	Message string          `json:"message"`
	Status  string          `json:"status,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// Unwrap decodes the envelope of body.
func Unwrap(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}
	return &env, nil
}

// Items normalises envelope data to a list: an array is split into its
// elements, an object becomes a one-element list and null an empty one.
func Items(data json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to decode data array: %w", err)
		}
		return items, nil
	}
	return []json.RawMessage{trimmed}, nil
}

// DecodeOne decodes a single entity whether the backend wrapped it in an
// array or not. An empty result is ErrNotFound.
func DecodeOne[T any](body []byte) (*T, error) {
	env, err := Unwrap(body)
	if err != nil {
		return nil, err
	}
	items, err := Items(env.Data)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	var out T
	if err := json.Unmarshal(items[0], &out); err != nil {
		return nil, fmt.Errorf("failed to decode entity: %w", err)
	}
	return &out, nil
}

// DecodeList decodes a list of entities; a single object is accepted as a list of one.
func DecodeList[T any](body []byte) ([]T, error) {
	env, err := Unwrap(body)
	if err != nil {
		return nil, err
	}
	items, err := Items(env.Data)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for i, raw := range items {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to decode entity %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
