package workflow

import (
	"fmt"

	"dario.cat/mergo"
	json "github.com/goccy/go-json"
)

// Patch is a partial node data update keyed by JSON field name
// (for example {"label": "Summarize", "temperature": 0.2}).
type Patch map[string]any

// ApplyPatch returns a copy of data with the fields named in patch replaced.
// Fields not named in patch keep their values; a field patched to nil is cleared.
// Named fields are replaced whole, so patching "config" swaps the entire map.
// The result is always the same variant as data.
func ApplyPatch(data NodeData, patch Patch) (NodeData, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: no data to patch", ErrInvalidPatch)
	}
	if len(patch) == 0 {
		return CloneData(data), nil
	}

	fields, err := toFields(data)
	if err != nil {
		return nil, err
	}

	// mergo merges nested maps key by key and skips nil sources, while a
	// patch replaces each named field whole and nil clears it. Dropping the
	// named keys first leaves mergo only the whole-value copies.
	for key := range patch {
		delete(fields, key)
	}

	if err := mergo.Merge(&fields, map[string]any(patch)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPatch, err)
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPatch, err)
	}

	patched, err := DecodeData(data.Type(), raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPatch, err)
	}
	return patched, nil
}

func toFields(data NodeData) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPatch, err)
	}

	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPatch, err)
	}
	return fields, nil
}
