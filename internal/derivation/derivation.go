// Package derivation derives the visible connections of a workflow from
// the current port layout.
package derivation

import (
	"github.com/aretw0/cacheflow/pkg/domain"
	"github.com/aretw0/cacheflow/pkg/ports"
)

// Stats counts what one derivation pass looked at.
type Stats struct {
	// Considered is the number of connection entries visited, including
	// stacked duplicates that are neither emitted nor skipped.
	Considered int
	// Emitted is the number of views returned.
	Emitted int
	// Skipped counts entries with an unregistered endpoint.
	Skipped int
}

// Compute returns the connections of w whose both endpoints are
// registered in lookup.
func Compute(w domain.Workflow, lookup ports.PortLookup) []domain.ConnectionView {
	views, _ := ComputeWithStats(w, lookup)
	return views
}

// ComputeWithStats is Compute plus pass statistics.
//
// Views are ordered by destination step id, then input name, then slot
// order. An entry whose source or destination port is not registered is
// skipped; dangling references are expected while editing. Stacked
// identical connections share a key and are emitted once, so Considered
// can exceed Emitted + Skipped.
func ComputeWithStats(w domain.Workflow, lookup ports.PortLookup) ([]domain.ConnectionView, Stats) {
	var stats Stats
	index := NewIndex(w)
	views := []domain.ConnectionView{}
	seen := make(map[string]struct{})

	for _, stepID := range w.StepIDs() {
		step := w.Steps[stepID]
		for _, inputName := range step.InputNames() {
			for _, in := range step.Inputs[inputName] {
				conn, ok := in.(domain.Connection)
				if !ok {
					continue
				}
				stats.Considered++

				skey := conn.Source()
				spos, ok := lookup.GetPort(skey)
				if !ok {
					stats.Skipped++
					continue
				}
				dkey := domain.InputKey(stepID, inputName)
				dpos, ok := lookup.GetPort(dkey)
				if !ok {
					stats.Skipped++
					continue
				}

				key := domain.ConnectionKey(skey, dkey)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}

				views = append(views, domain.ConnectionView{
					Key:              key,
					SourceStepID:     conn.StepID,
					SourceOutputName: conn.OutputName,
					DestStepID:       stepID,
					DestInputName:    inputName,
					Source:           spos,
					Dest:             dpos,
					SourceSlot:       index.Output(conn.StepID, conn.OutputName),
					DestSlot:         index.Input(stepID, inputName),
				})
			}
		}
	}

	stats.Emitted = len(views)
	return views, stats
}
