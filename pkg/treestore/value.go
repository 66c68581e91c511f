package treestore

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// NormalizeValue converts a Go value into the JSON-shaped form every backend stores.
// The Delete marker passes through unchanged.
func NormalizeValue(v any) (any, error) {
	if IsDelete(v) {
		return v, nil
	}
	switch v.(type) {
	case string, bool, float64:
		return v, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return prune(out), nil
}

// prune drops null members and empty objects, which the store never keeps.
func prune(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			child = prune(child)
			if child == nil {
				delete(t, k)
				continue
			}
			t[k] = child
		}
		if len(t) == 0 {
			return nil
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = prune(child)
		}
		return t
	default:
		return v
	}
}

// Clone deep-copies a normalized value so callers cannot mutate backend state.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = Clone(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = Clone(child)
		}
		return out
	default:
		return v
	}
}

// Decode re-encodes a normalized value into a typed destination.
func Decode(v any, dst any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode node: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode node: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
