package lifecycle

import (
	"github.com/aretw0/cacheflow/pkg/domain"
	"github.com/aretw0/cacheflow/pkg/ports"
)

// Diff describes what one pass did to the registry.
type Diff struct {
	// Set lists ports whose report changed the registry.
	Set []domain.PortKey `json:"set,omitempty"`
	// Unset lists ports removed because they were not reported again.
	Unset []domain.PortKey `json:"unset,omitempty"`
	// Suppressed counts reports the registry coalesced away.
	Suppressed int `json:"suppressed,omitempty"`
}

// IsEmpty reports whether the pass left the registry unchanged.
func (d Diff) IsEmpty() bool {
	return len(d.Set) == 0 && len(d.Unset) == 0
}

// Tracker holds the ports a rendered step reported on its previous pass.
// It is owned by whatever renders the step and is not safe for concurrent
// use.
type Tracker struct {
	stepID   string
	reported map[domain.PortKey]struct{}
}

// NewTracker creates a tracker for a step that has not rendered yet.
func NewTracker(stepID string) *Tracker {
	return &Tracker{
		stepID:   stepID,
		reported: make(map[domain.PortKey]struct{}),
	}
}

// Report runs one pass: every measured port is set, then every port
// reported on the previous pass but missing from this one is unset.
func (t *Tracker) Report(reporter ports.PortReporter, layout Layout) Diff {
	current := layout.Ports(t.stepID)
	_, removed := DiffKeys(t.reported, current)

	var diff Diff
	for _, key := range sortedKeys(current) {
		if reporter.SetPort(key, current[key]) {
			diff.Set = append(diff.Set, key)
		} else {
			diff.Suppressed++
		}
	}
	for _, key := range removed {
		if reporter.UnsetPort(key) {
			diff.Unset = append(diff.Unset, key)
		}
	}

	t.reported = make(map[domain.PortKey]struct{}, len(current))
	for key := range current {
		t.reported[key] = struct{}{}
	}
	return diff
}

// Unmount unsets every port the step has registered.
func (t *Tracker) Unmount(reporter ports.PortReporter) Diff {
	var diff Diff
	for _, key := range sortedKeys(t.reported) {
		if reporter.UnsetPort(key) {
			diff.Unset = append(diff.Unset, key)
		}
	}
	clear(t.reported)
	return diff
}

// Registered returns the ports reported on the last pass, ordered by key.
func (t *Tracker) Registered() []domain.PortKey {
	return sortedKeys(t.reported)
}
