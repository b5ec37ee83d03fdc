package derivation

import "github.com/aretw0/cacheflow/pkg/domain"

// Index maps each step's port names to their ordinal: outputs in declared
// order, inputs in ascending name order. It is built per derivation pass.
type Index struct {
	outputs map[string]map[string]int
	inputs  map[string]map[string]int
}

// NewIndex indexes every step of w.
func NewIndex(w domain.Workflow) Index {
	idx := Index{
		outputs: make(map[string]map[string]int, len(w.Steps)),
		inputs:  make(map[string]map[string]int, len(w.Steps)),
	}
	for id, step := range w.Steps {
		outs := make(map[string]int, len(step.Outputs))
		for i, name := range step.Outputs {
			outs[name] = i
		}
		idx.outputs[id] = outs

		ins := make(map[string]int, len(step.Inputs))
		for i, name := range step.InputNames() {
			ins[name] = i
		}
		idx.inputs[id] = ins
	}
	return idx
}

// Output returns the ordinal of a step's output, or -1.
func (idx Index) Output(stepID, name string) int {
	if i, ok := idx.outputs[stepID][name]; ok {
		return i
	}
	return -1
}

// Input returns the ordinal of a step's input, or -1.
func (idx Index) Input(stepID, name string) int {
	if i, ok := idx.inputs[stepID][name]; ok {
		return i
	}
	return -1
}
