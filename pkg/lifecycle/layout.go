package lifecycle

import (
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/cacheflow/pkg/domain"
)

// Layout is the set of port positions a step measured in one render pass.
type Layout struct {
	Inputs  map[string]domain.Position `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs map[string]domain.Position `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// Ports expands the layout into fully qualified keys for a step.
func (l Layout) Ports(stepID string) map[domain.PortKey]domain.Position {
	out := make(map[domain.PortKey]domain.Position, len(l.Inputs)+len(l.Outputs))
	for name, pos := range l.Inputs {
		out[domain.InputKey(stepID, name)] = pos
	}
	for name, pos := range l.Outputs {
		out[domain.OutputKey(stepID, name)] = pos
	}
	return out
}

// Len returns the number of ports in the layout.
func (l Layout) Len() int {
	return len(l.Inputs) + len(l.Outputs)
}

// DiffKeys compares the port sets of two passes. Both results are
// ordered by key string.
func DiffKeys[P, C any](previous map[domain.PortKey]P, current map[domain.PortKey]C) (added, removed []domain.PortKey) {
	for k := range current {
		if _, ok := previous[k]; !ok {
			added = append(added, k)
		}
	}
	for k := range previous {
		if _, ok := current[k]; !ok {
			removed = append(removed, k)
		}
	}
	sortKeys(added)
	sortKeys(removed)
	return added, removed
}

func sortKeys(keys []domain.PortKey) {
	slices.SortFunc(keys, func(a, b domain.PortKey) int {
		return strings.Compare(a.String(), b.String())
	})
}

func sortedKeys[V any](m map[domain.PortKey]V) []domain.PortKey {
	keys := slices.Collect(maps.Keys(m))
	sortKeys(keys)
	return keys
}
