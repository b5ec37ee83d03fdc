package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/cacheflow/pkg/domain"
)

// Overlay marks the connections a renderer could actually draw.
type Overlay struct {
	Visible []domain.ConnectionView
}

// GenerateMermaid produces a Mermaid flowchart for a workflow.
// Steps are drawn as rectangles labelled with their component and
// constant inputs. Connections are labelled "output → input":
// - resolvable: -->
// - visible in the overlay: ==>
// - dangling (source step missing): -.-> to a placeholder
func GenerateMermaid(w domain.Workflow, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	visible := make(map[string]bool)
	if overlay != nil {
		for _, v := range overlay.Visible {
			visible[v.Key] = true
		}
	}

	missing := make(map[string]bool)
	for _, id := range w.StepIDs() {
		step, _ := w.Step(id)
		for _, input := range step.InputNames() {
			for _, c := range step.Connections(input) {
				if !w.HasStep(c.StepID) {
					missing[c.StepID] = true
				}
			}
		}
	}
	missingIDs := slices.Sorted(maps.Keys(missing))
	nodeID := mermaidIDs(append(w.StepIDs(), missingIDs...))

	var edges []string
	for _, id := range w.StepIDs() {
		step, _ := w.Step(id)
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", nodeID[id], stepLabel(step))

		for _, input := range step.InputNames() {
			for _, c := range step.Connections(input) {
				label := escape(c.OutputName + " → " + input)
				arrow := fmt.Sprintf("-- \"%s\" -->", label)
				switch {
				case missing[c.StepID]:
					arrow = fmt.Sprintf("-. \"%s\" .->", label)
				case visible[domain.ConnectionKey(c.Source(), domain.InputKey(id, input))]:
					arrow = fmt.Sprintf("== \"%s\" ==>", label)
				}
				edges = append(edges, fmt.Sprintf("    %s %s %s\n", nodeID[c.StepID], arrow, nodeID[id]))
			}
		}
	}

	for _, id := range missingIDs {
		fmt.Fprintf(&sb, "    %s((\"%s?\")):::dangling\n", nodeID[id], escape(id))
	}
	for _, e := range edges {
		sb.WriteString(e)
	}
	if len(missing) > 0 {
		sb.WriteString("\n    classDef dangling fill:#fde2e2,stroke:#c62828,stroke-dasharray:4 2,color:#000;\n")
	}

	return sb.String()
}

func stepLabel(step domain.Step) string {
	parts := []string{escape(step.ID)}
	if step.Component.Type != "" {
		parts[0] += " (" + escape(step.Component.Type) + ")"
	}
	for _, input := range step.InputNames() {
		if v, ok := step.ConstantValue(input); ok {
			parts = append(parts, escape(input+" = "+v))
		}
	}
	return strings.Join(parts, "<br/>")
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

// mermaidIDs assigns every id a distinct node id. When two ids sanitize to
// the same string, the later one in ids gets a numeric suffix.
func mermaidIDs(ids []string) map[string]string {
	out := make(map[string]string, len(ids))
	taken := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		base := sanitizeMermaidID(id)
		safe := base
		for n := 2; taken[safe]; n++ {
			safe = fmt.Sprintf("%s_%d", base, n)
		}
		taken[safe] = true
		out[id] = safe
	}
	return out
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
