package memory

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/cacheflow/pkg/domain"
	"github.com/aretw0/cacheflow/pkg/ports"
)

var _ ports.PortRegistry = (*Registry)(nil)

// Registry implements ports.PortRegistry in memory.
// Safe for concurrent use.
type Registry struct {
	ports map[domain.PortKey]domain.Position
	mu    sync.RWMutex
}

// NewRegistry creates an empty in-memory port registry.
func NewRegistry() *Registry {
	return &Registry{
		ports: make(map[domain.PortKey]domain.Position),
	}
}

// SetPort inserts or updates a port position.
//
// A report for an existing port is dropped when either axis is unchanged.
// This coalesces re-renders that did not move the element, and it also
// drops genuine moves along a single axis; callers that need such a move
// to land must UnsetPort first.
func (r *Registry) SetPort(key domain.PortKey, position domain.Position) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.ports[key]; ok {
		if prev.X == position.X || prev.Y == position.Y {
			return false
		}
	}
	r.ports[key] = position
	return true
}

// UnsetPort removes a port.
func (r *Registry) UnsetPort(key domain.PortKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ports[key]; !ok {
		return false
	}
	delete(r.ports, key)
	return true
}

// GetPort returns the last reported position of a port.
func (r *Registry) GetPort(key domain.PortKey) (domain.Position, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, ok := r.ports[key]
	return pos, ok
}

// Ports returns a snapshot of every registered port, ordered by key.
func (r *Registry) Ports() []domain.PortEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := slices.SortedFunc(maps.Keys(r.ports), func(a, b domain.PortKey) int {
		return strings.Compare(a.String(), b.String())
	})
	entries := make([]domain.PortEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, domain.PortEntry{Key: k, Position: r.ports[k]})
	}
	return entries
}

// Len returns the number of registered ports.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ports)
}
