package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/cacheflow"
	"github.com/aretw0/cacheflow/internal/presentation/graph"
)

func TestGenerateMarkdown(t *testing.T) {
	w := cacheflow.DemoWorkflow().SetConnection("ghost", "out", "step2", "extra")

	got := graph.GenerateMarkdown(w)

	for _, want := range []string{
		"# Workflow",
		"2 steps",
		"## step1",
		"Component `data` at (20, 50)",
		"| function | `\"fast\"` |",
		"Outputs: `data`",
		"| data | `step1.data` |",
		"| extra | `ghost.out` (missing) |",
		"## Dangling connections",
		"- `step2.extra` <- `ghost.out` (step missing)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("GenerateMarkdown() = \n%v\nWant substring: %v", got, want)
		}
	}
}
