package cacheflow

import (
	"github.com/aretw0/cacheflow/internal/derivation"
	"github.com/aretw0/cacheflow/pkg/domain"
	"github.com/aretw0/cacheflow/pkg/dsl"
	"github.com/aretw0/cacheflow/pkg/ports"
)

// ComputeConnections derives the drawable connections of w against an
// externally owned port lookup. It is the stateless form of
// Canvas.Connections.
func ComputeConnections(w domain.Workflow, lookup ports.PortLookup) []domain.ConnectionView {
	return derivation.Compute(w, lookup)
}

// DemoWorkflow returns the two-step workflow the editor opens with: a data
// step whose output feeds an optimize step.
func DemoWorkflow() domain.Workflow {
	return dsl.New().
		Add("step1").Component("data").At(20, 50).
		Outputs("data").
		Param("function", "fast").
		Step("step2").Component("optimize").At(400, 50).
		Link("data", "step1", "data").
		BuildLoose()
}
