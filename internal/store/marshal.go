package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/tilematch/internal/ir"
)

// marshalObject converts an Object to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON so stored payloads hash the same as the
// payloads their event IDs were computed from.
func marshalObject(obj ir.Object) (string, error) {
	if obj == nil {
		obj = ir.Object{}
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// unmarshalObject parses JSON TEXT to an Object.
// Uses ir.Object.UnmarshalJSON, which decodes integers via json.Number to
// avoid float64 precision loss.
func unmarshalObject(data string) (ir.Object, error) {
	if data == "" || data == "{}" {
		return ir.Object{}, nil
	}
	var obj ir.Object
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal object: %w", err)
	}
	return obj, nil
}
