package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/cacheflow/pkg/domain"
)

// Builder manages the workflow construction.
type Builder struct {
	meta  domain.Meta
	order []string
	steps map[string]*StepBuilder
}

// New creates a new workflow builder.
func New() *Builder {
	return &Builder{
		meta:  domain.Meta{},
		steps: make(map[string]*StepBuilder),
	}
}

// Meta sets a workflow metadata entry.
func (b *Builder) Meta(key string, value any) *Builder {
	b.meta[key] = value
	return b
}

// Add creates a new step in the workflow.
// If the step already exists, it returns the existing builder.
func (b *Builder) Add(id string) *StepBuilder {
	if sb, ok := b.steps[id]; ok {
		return sb
	}
	sb := &StepBuilder{id: id, builder: b}
	b.steps[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Build assembles the workflow. Links to unknown steps or to outputs their
// source does not declare are reported together; use BuildLoose to keep
// them as dangling connections instead.
func (b *Builder) Build() (domain.Workflow, error) {
	w := b.BuildLoose()

	var errs []error
	for _, d := range w.DanglingConnections() {
		reason := "undeclared output"
		if d.MissingStep {
			reason = "unknown step"
		}
		errs = append(errs, fmt.Errorf("step %s input %s: link to %s.%s: %s",
			d.StepID, d.InputName, d.Connection.StepID, d.Connection.OutputName, reason))
	}
	if len(errs) > 0 {
		return domain.Workflow{}, fmt.Errorf("failed to build workflow: %w", errors.Join(errs...))
	}
	return w, nil
}

// BuildLoose assembles the workflow without checking links.
func (b *Builder) BuildLoose() domain.Workflow {
	w := domain.NewWorkflow()
	for k, v := range b.meta {
		w.Meta[k] = v
	}
	for _, id := range b.order {
		w = b.steps[id].apply(w)
	}
	return w
}
