package domain

import (
	"maps"
	"slices"
)

// Meta holds opaque workflow metadata. The core never interprets it.
type Meta map[string]any

// Component describes the kind of a step. The type tag is opaque here;
// which ports a type exposes is defined by external configuration.
type Component struct {
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Position is a point in the shared canvas coordinate space.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// DefaultPosition is where AddStep places a new step.
var DefaultPosition = Position{}

// Step is a node of the workflow graph.
type Step struct {
	ID        string                 `json:"id" yaml:"id"`
	Component Component              `json:"component" yaml:"component"`
	Inputs    map[string][]StepInput `json:"inputs" yaml:"inputs"`
	Outputs   []string               `json:"outputs" yaml:"outputs"`
	Position  Position               `json:"position" yaml:"position"`
}

// Workflow is the canonical graph: a set of steps keyed by id.
//
// Workflow values are persistent: every edit method returns a new value
// and leaves the receiver's containers untouched, so an older Workflow
// can be kept around (undo, diffing) without copying.
type Workflow struct {
	Meta  Meta            `json:"meta" yaml:"meta"`
	Steps map[string]Step `json:"steps" yaml:"steps"`
}

// NewWorkflow returns an empty workflow.
func NewWorkflow() Workflow {
	return Workflow{
		Meta:  Meta{},
		Steps: make(map[string]Step),
	}
}

// Step returns the step with the given id.
func (w Workflow) Step(id string) (Step, bool) {
	s, ok := w.Steps[id]
	return s, ok
}

// HasStep reports whether a step with the given id exists.
func (w Workflow) HasStep(id string) bool {
	_, ok := w.Steps[id]
	return ok
}

// StepIDs returns the ids of all steps in ascending order.
func (w Workflow) StepIDs() []string {
	return slices.Sorted(maps.Keys(w.Steps))
}

// Len returns the number of steps.
func (w Workflow) Len() int {
	return len(w.Steps)
}

// Clone returns a deep copy of the workflow.
func (w Workflow) Clone() Workflow {
	out := Workflow{
		Meta:  maps.Clone(w.Meta),
		Steps: make(map[string]Step, len(w.Steps)),
	}
	if out.Meta == nil {
		out.Meta = Meta{}
	}
	for id, s := range w.Steps {
		out.Steps[id] = s.Clone()
	}
	return out
}

// Clone returns a deep copy of the step.
func (s Step) Clone() Step {
	out := s
	out.Inputs = make(map[string][]StepInput, len(s.Inputs))
	for name, slot := range s.Inputs {
		out.Inputs[name] = slices.Clone(slot)
	}
	out.Outputs = slices.Clone(s.Outputs)
	return out
}

// InputNames returns the names of the step's input slots in ascending order.
func (s Step) InputNames() []string {
	return slices.Sorted(maps.Keys(s.Inputs))
}

// HasOutput reports whether the step declares the named output.
func (s Step) HasOutput(name string) bool {
	return slices.Contains(s.Outputs, name)
}

// ConstantValue returns the value to render for an input: the first
// constant in the slot wins.
func (s Step) ConstantValue(inputName string) (string, bool) {
	for _, in := range s.Inputs[inputName] {
		if c, ok := in.(Constant); ok {
			return c.Value, true
		}
	}
	return "", false
}

// Connections returns the connection entries of a slot in order.
func (s Step) Connections(inputName string) []Connection {
	var out []Connection
	for _, in := range s.Inputs[inputName] {
		if c, ok := in.(Connection); ok {
			out = append(out, c)
		}
	}
	return out
}
