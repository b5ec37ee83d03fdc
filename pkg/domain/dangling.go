package domain

import (
	"maps"
	"slices"
)

// DanglingConnection is a connection entry whose source cannot resolve:
// the source step is missing or does not declare the output.
type DanglingConnection struct {
	StepID      string     `json:"step_id"`
	InputName   string     `json:"input_name"`
	Index       int        `json:"index"`
	Connection  Connection `json:"connection"`
	MissingStep bool       `json:"missing_step"`
}

// DanglingConnections lists unresolvable connection entries, ordered by
// destination step, input name and slot index. Nothing is removed.
func (w Workflow) DanglingConnections() []DanglingConnection {
	var out []DanglingConnection
	for _, id := range w.StepIDs() {
		s := w.Steps[id]
		for _, name := range s.InputNames() {
			for i, in := range s.Inputs[name] {
				c, ok := in.(Connection)
				if !ok {
					continue
				}
				src, exists := w.Steps[c.StepID]
				if exists && src.HasOutput(c.OutputName) {
					continue
				}
				out = append(out, DanglingConnection{
					StepID:      id,
					InputName:   name,
					Index:       i,
					Connection:  c,
					MissingStep: !exists,
				})
			}
		}
	}
	return out
}

// Prune returns a workflow without dangling connection entries. It is an
// explicit cleanup pass; no edit operation calls it.
func (w Workflow) Prune() Workflow {
	dangling := w.DanglingConnections()
	if len(dangling) == 0 {
		return w
	}
	out := w
	for _, d := range slices.Backward(dangling) {
		s := out.Steps[d.StepID]
		slot := slices.Clone(s.Inputs[d.InputName])
		slot = slices.Delete(slot, d.Index, d.Index+1)
		s.Inputs = maps.Clone(s.Inputs)
		s.Inputs[d.InputName] = slot
		out = out.withStep(s)
	}
	return out
}
