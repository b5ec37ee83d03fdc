package domain

import (
	"reflect"
	"slices"
)

// WorkflowDiff represents the changes between two workflows.
// It is designed to be serialized to JSON for partial updates on the client.
type WorkflowDiff struct {
	// Added and Changed carry the full new step value.
	Added   []Step `json:"added,omitempty"`
	Changed []Step `json:"changed,omitempty"`
	// Removed lists the ids of steps that are gone.
	Removed []string `json:"removed,omitempty"`
	// Meta is set when the metadata changed.
	Meta Meta `json:"meta,omitempty"`
}

// Diff calculates the difference between oldWorkflow and newWorkflow.
// If oldWorkflow is nil, the diff adds every step of newWorkflow (initial
// load). It returns nil when nothing changed.
func Diff(oldWorkflow *Workflow, newWorkflow Workflow) *WorkflowDiff {
	diff := &WorkflowDiff{}

	if oldWorkflow == nil {
		for _, id := range newWorkflow.StepIDs() {
			diff.Added = append(diff.Added, newWorkflow.Steps[id])
		}
		if len(newWorkflow.Meta) > 0 {
			diff.Meta = newWorkflow.Meta
		}
		if diff.IsEmpty() {
			return nil
		}
		return diff
	}

	// Added or Changed
	for _, id := range newWorkflow.StepIDs() {
		newStep := newWorkflow.Steps[id]
		oldStep, exists := oldWorkflow.Steps[id]
		switch {
		case !exists:
			diff.Added = append(diff.Added, newStep)
		case !stepEqual(oldStep, newStep):
			diff.Changed = append(diff.Changed, newStep)
		}
	}

	// Removed
	for _, id := range oldWorkflow.StepIDs() {
		if !newWorkflow.HasStep(id) {
			diff.Removed = append(diff.Removed, id)
		}
	}

	if metaChanged(oldWorkflow.Meta, newWorkflow.Meta) {
		diff.Meta = newWorkflow.Meta
		if diff.Meta == nil {
			diff.Meta = Meta{}
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func metaChanged(a, b Meta) bool {
	if len(a) == 0 && len(b) == 0 {
		return false
	}
	return !reflect.DeepEqual(a, b)
}

func stepEqual(a, b Step) bool {
	if a.ID != b.ID || a.Component != b.Component || a.Position != b.Position {
		return false
	}
	if !slices.Equal(a.Outputs, b.Outputs) || len(a.Inputs) != len(b.Inputs) {
		return false
	}
	for name, slot := range a.Inputs {
		other, ok := b.Inputs[name]
		if !ok || !slices.Equal(slot, other) {
			return false
		}
	}
	return true
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *WorkflowDiff) IsEmpty() bool {
	return len(d.Added) == 0 &&
		len(d.Changed) == 0 &&
		len(d.Removed) == 0 &&
		d.Meta == nil
}
