// Package override resolves the effective contact and impact of a dependency
// from its polled value and the operator overrides layered above it.
//
// Precedence, highest first: instance override > team canonical override >
// global canonical override > polled value. Contact is merged field by field
// across every tier; impact takes the first tier that has a value.
package override

import (
	"encoding/json"
	"strings"

	"depcatalog/internal/util/jsonutil"
)

// ResolveContact merges contact JSON objects. Keys from canonical replace
// polled keys and keys from instance replace both. Absent or malformed layers
// are skipped. It returns nil when no layer holds a JSON object.
func ResolveContact(polled, canonical, instance *string) *string {
	return MergeContact(polled, canonical, instance)
}

// ResolveContactTiered is the four tier form used for edges whose consuming
// team may carry its own canonical override.
func ResolveContactTiered(polled, globalCanonical, teamCanonical, instance *string) *string {
	return MergeContact(polled, globalCanonical, teamCanonical, instance)
}

// MergeContact merges layers ordered lowest precedence first. Values are
// copied as raw JSON, so numbers keep their exact text.
func MergeContact(layers ...*string) *string {
	var merged map[string]json.RawMessage
	for _, layer := range layers {
		obj, ok := jsonutil.ParseObject(layer)
		if !ok {
			continue
		}
		if merged == nil {
			merged = make(map[string]json.RawMessage, len(obj))
		}
		for k, v := range obj {
			merged[k] = v
		}
	}
	if merged == nil {
		return nil
	}
	raw, err := jsonutil.MarshalNoEscape(merged)
	if err != nil {
		return nil
	}
	out := string(raw)
	return &out
}

// ResolveImpact returns the first non-empty value in the order
// instance, canonical, polled. Impact is never merged.
func ResolveImpact(polled, canonical, instance *string) *string {
	return firstNonEmpty(instance, canonical, polled)
}

// ResolveImpactTiered is the four tier form of ResolveImpact.
func ResolveImpactTiered(polled, globalCanonical, teamCanonical, instance *string) *string {
	return firstNonEmpty(instance, teamCanonical, globalCanonical, polled)
}

func firstNonEmpty(values ...*string) *string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			out := *v
			return &out
		}
	}
	return nil
}
