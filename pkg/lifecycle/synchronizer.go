package lifecycle

import (
	"maps"
	"slices"

	"github.com/aretw0/cacheflow/pkg/domain"
	"github.com/aretw0/cacheflow/pkg/ports"
)

// Synchronizer keeps one Tracker per rendered step. It belongs to the
// single owner of the canvas and is not safe for concurrent use.
type Synchronizer struct {
	reporter ports.PortReporter
	trackers map[string]*Tracker
}

// NewSynchronizer creates a synchronizer writing to reporter.
func NewSynchronizer(reporter ports.PortReporter) *Synchronizer {
	return &Synchronizer{
		reporter: reporter,
		trackers: make(map[string]*Tracker),
	}
}

// Report runs a pass for a step, mounting it on its first report.
func (s *Synchronizer) Report(stepID string, layout Layout) Diff {
	t, ok := s.trackers[stepID]
	if !ok {
		t = NewTracker(stepID)
		s.trackers[stepID] = t
	}
	return t.Report(s.reporter, layout)
}

// Unmount removes every port of a step and forgets its tracker.
// Unmounting a step that never rendered is a no-op.
func (s *Synchronizer) Unmount(stepID string) Diff {
	t, ok := s.trackers[stepID]
	if !ok {
		return Diff{}
	}
	delete(s.trackers, stepID)
	return t.Unmount(s.reporter)
}

// Reconcile unmounts every tracked step that is no longer part of the
// workflow and returns the resulting diffs keyed by step id.
func (s *Synchronizer) Reconcile(w domain.Workflow) map[string]Diff {
	var out map[string]Diff
	for _, id := range s.Tracked() {
		if w.HasStep(id) {
			continue
		}
		if out == nil {
			out = make(map[string]Diff)
		}
		out[id] = s.Unmount(id)
	}
	return out
}

// Registered returns the ports a step reported on its last pass.
func (s *Synchronizer) Registered(stepID string) []domain.PortKey {
	if t, ok := s.trackers[stepID]; ok {
		return t.Registered()
	}
	return nil
}

// Tracked returns the ids of mounted steps in ascending order.
func (s *Synchronizer) Tracked() []string {
	return slices.Sorted(maps.Keys(s.trackers))
}
