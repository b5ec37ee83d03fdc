package domain

import (
	"maps"
	"slices"

	"github.com/google/uuid"
)

// Edit operations. Each returns a new Workflow; a reference to a missing
// step is a silent no-op and returns the receiver unchanged. Callers that
// need feedback check HasStep first.

// AddStep inserts a new step with a fresh unique id, no ports and the
// default position.
func (w Workflow) AddStep(component Component) (Workflow, string) {
	id := uuid.NewString()
	for w.HasStep(id) {
		id = uuid.NewString()
	}
	return w.AddStepWith(id, component, DefaultPosition), id
}

// AddStepWith inserts a step with an explicit id, replacing any step that
// already has it.
func (w Workflow) AddStepWith(id string, component Component, position Position) Workflow {
	return w.withStep(Step{
		ID:        id,
		Component: component,
		Inputs:    make(map[string][]StepInput),
		Outputs:   []string{},
		Position:  position,
	})
}

// RemoveStep removes a step. Connections elsewhere that reference it are
// kept and become dangling.
func (w Workflow) RemoveStep(stepID string) Workflow {
	if !w.HasStep(stepID) {
		return w
	}
	out := w.shallow()
	delete(out.Steps, stepID)
	return out
}

// MoveStep sets the canvas position of a step.
func (w Workflow) MoveStep(stepID string, position Position) Workflow {
	s, ok := w.Steps[stepID]
	if !ok {
		return w
	}
	s.Position = position
	return w.withStep(s)
}

// SetOutputs declares the output ports of a step. Order is kept and
// duplicates are dropped.
func (w Workflow) SetOutputs(stepID string, names ...string) Workflow {
	s, ok := w.Steps[stepID]
	if !ok {
		return w
	}
	outputs := make([]string, 0, len(names))
	for _, n := range names {
		if !slices.Contains(outputs, n) {
			outputs = append(outputs, n)
		}
	}
	s.Outputs = outputs
	return w.withStep(s)
}

// SetInputParameter replaces the whole input slot with a single constant,
// discarding any connections that fed it.
func (w Workflow) SetInputParameter(stepID, inputName, value string) Workflow {
	s, ok := w.Steps[stepID]
	if !ok {
		return w
	}
	s.Inputs = maps.Clone(s.Inputs)
	if s.Inputs == nil {
		s.Inputs = make(map[string][]StepInput)
	}
	s.Inputs[inputName] = []StepInput{Constant{Value: value}}
	return w.withStep(s)
}

// SetConnection appends a connection from an output to an input slot.
// Existing entries of the slot are kept, so a slot may be fed by several
// sources and a stale constant at once.
func (w Workflow) SetConnection(fromStepID, fromOutputName, toStepID, toInputName string) Workflow {
	s, ok := w.Steps[toStepID]
	if !ok {
		return w
	}
	prev := s.Inputs[toInputName]
	slot := make([]StepInput, len(prev), len(prev)+1)
	copy(slot, prev)
	slot = append(slot, Connection{StepID: fromStepID, OutputName: fromOutputName})

	s.Inputs = maps.Clone(s.Inputs)
	if s.Inputs == nil {
		s.Inputs = make(map[string][]StepInput)
	}
	s.Inputs[toInputName] = slot
	return w.withStep(s)
}

// RemoveConnection removes every entry of the destination slot that
// matches all four identifiers. The slot itself stays, possibly empty.
func (w Workflow) RemoveConnection(fromStepID, fromOutputName, toStepID, toInputName string) Workflow {
	s, ok := w.Steps[toStepID]
	if !ok {
		return w
	}
	prev, ok := s.Inputs[toInputName]
	if !ok {
		return w
	}
	target := Connection{StepID: fromStepID, OutputName: fromOutputName}
	slot := make([]StepInput, 0, len(prev))
	for _, in := range prev {
		if c, ok := in.(Connection); ok && c == target {
			continue
		}
		slot = append(slot, in)
	}
	if len(slot) == len(prev) {
		return w
	}
	s.Inputs = maps.Clone(s.Inputs)
	s.Inputs[toInputName] = slot
	return w.withStep(s)
}

// RemoveInput drops an input slot entirely.
func (w Workflow) RemoveInput(stepID, inputName string) Workflow {
	s, ok := w.Steps[stepID]
	if !ok {
		return w
	}
	if _, ok := s.Inputs[inputName]; !ok {
		return w
	}
	s.Inputs = maps.Clone(s.Inputs)
	delete(s.Inputs, inputName)
	return w.withStep(s)
}

// withStep returns a copy of w with s stored under s.ID.
func (w Workflow) withStep(s Step) Workflow {
	out := w.shallow()
	out.Steps[s.ID] = s
	return out
}

// shallow copies the step index and metadata; step values are shared
// until replaced.
func (w Workflow) shallow() Workflow {
	out := Workflow{
		Meta:  maps.Clone(w.Meta),
		Steps: make(map[string]Step, len(w.Steps)+1),
	}
	maps.Copy(out.Steps, w.Steps)
	return out
}
