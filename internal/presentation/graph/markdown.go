package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/cacheflow/pkg/domain"
)

// GenerateMarkdown summarises a workflow: one section per step with its
// inputs and outputs, then the dangling references.
func GenerateMarkdown(w domain.Workflow) string {
	var sb strings.Builder

	title := "Workflow"
	if name, ok := w.Meta["name"].(string); ok && name != "" {
		title = name
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "%d steps\n", w.Len())
	if len(w.Meta) > 0 {
		sb.WriteString("\n")
		for _, k := range slices.Sorted(maps.Keys(w.Meta)) {
			fmt.Fprintf(&sb, "- **%s**: %v\n", k, w.Meta[k])
		}
	}

	for _, id := range w.StepIDs() {
		step, _ := w.Step(id)
		fmt.Fprintf(&sb, "\n## %s\n\n", id)
		if step.Component.Type != "" {
			fmt.Fprintf(&sb, "Component `%s` at (%g, %g)\n\n", step.Component.Type, step.Position.X, step.Position.Y)
		}

		if names := step.InputNames(); len(names) > 0 {
			sb.WriteString("| input | source |\n|---|---|\n")
			for _, name := range names {
				for _, in := range step.Inputs[name] {
					fmt.Fprintf(&sb, "| %s | %s |\n", name, describeInput(w, in))
				}
			}
			sb.WriteString("\n")
		}
		if len(step.Outputs) > 0 {
			fmt.Fprintf(&sb, "Outputs: `%s`\n", strings.Join(step.Outputs, "`, `"))
		}
	}

	if dangling := w.DanglingConnections(); len(dangling) > 0 {
		sb.WriteString("\n## Dangling connections\n\n")
		for _, d := range dangling {
			reason := "output not declared"
			if d.MissingStep {
				reason = "step missing"
			}
			fmt.Fprintf(&sb, "- `%s.%s` <- `%s.%s` (%s)\n",
				d.StepID, d.InputName, d.Connection.StepID, d.Connection.OutputName, reason)
		}
	}

	return sb.String()
}

func describeInput(w domain.Workflow, in domain.StepInput) string {
	switch v := in.(type) {
	case domain.Constant:
		return fmt.Sprintf("`%q`", v.Value)
	case domain.Connection:
		s := fmt.Sprintf("`%s.%s`", v.StepID, v.OutputName)
		if !w.HasStep(v.StepID) {
			s += " (missing)"
		}
		return s
	default:
		return "?"
	}
}
