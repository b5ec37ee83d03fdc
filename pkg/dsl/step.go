package dsl

import "github.com/aretw0/cacheflow/pkg/domain"

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	id        string
	component domain.Component
	position  domain.Position
	outputs   []string
	edits     []func(domain.Workflow) domain.Workflow
	builder   *Builder
}

// Component sets the component type of the step.
func (s *StepBuilder) Component(typ string) *StepBuilder {
	s.component = domain.Component{Type: typ}
	return s
}

// At places the step on the canvas.
func (s *StepBuilder) At(x, y float64) *StepBuilder {
	s.position = domain.Position{X: x, Y: y}
	return s
}

// Outputs declares output ports, appending to any declared earlier.
func (s *StepBuilder) Outputs(names ...string) *StepBuilder {
	s.outputs = append(s.outputs, names...)
	return s
}

// Param sets an input to a constant, replacing whatever fed it before.
func (s *StepBuilder) Param(input, value string) *StepBuilder {
	s.edits = append(s.edits, func(w domain.Workflow) domain.Workflow {
		return w.SetInputParameter(s.id, input, value)
	})
	return s
}

// Link feeds an input of this step from another step's output. Several
// links to the same input stack in call order.
func (s *StepBuilder) Link(input, fromStep, fromOutput string) *StepBuilder {
	s.edits = append(s.edits, func(w domain.Workflow) domain.Workflow {
		return w.SetConnection(fromStep, fromOutput, s.id, input)
	})
	return s
}

// Step switches to another step of the same builder.
func (s *StepBuilder) Step(id string) *StepBuilder {
	return s.builder.Add(id)
}

// Build returns the workflow of the enclosing builder.
func (s *StepBuilder) Build() (domain.Workflow, error) {
	return s.builder.Build()
}

func (s *StepBuilder) apply(w domain.Workflow) domain.Workflow {
	w = w.AddStepWith(s.id, s.component, s.position)
	w = w.SetOutputs(s.id, s.outputs...)
	for _, edit := range s.edits {
		w = edit(w)
	}
	return w
}
