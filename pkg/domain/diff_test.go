package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cacheflow/pkg/domain"
)

func TestDiff_InitialLoad(t *testing.T) {
	w := twoSteps()

	diff := domain.Diff(nil, w)
	require.NotNil(t, diff)
	require.Len(t, diff.Added, 2)
	assert.Equal(t, "step1", diff.Added[0].ID)
	assert.Equal(t, "step2", diff.Added[1].ID)
	assert.Empty(t, diff.Changed)
	assert.Empty(t, diff.Removed)
}

func TestDiff_NoChange(t *testing.T) {
	w := twoSteps()
	assert.Nil(t, domain.Diff(&w, w.Clone()))
	assert.Nil(t, domain.Diff(&w, w.RemoveStep("ghost")))
}

func TestDiff_Changes(t *testing.T) {
	old := twoSteps()
	next := old.
		MoveStep("step1", domain.Position{X: 1, Y: 1}).
		RemoveStep("step2")
	next, added := next.AddStep(domain.Component{Type: "plot"})

	diff := domain.Diff(&old, next)
	require.NotNil(t, diff)
	require.Len(t, diff.Added, 1)
	assert.Equal(t, added, diff.Added[0].ID)
	require.Len(t, diff.Changed, 1)
	assert.Equal(t, "step1", diff.Changed[0].ID)
	assert.Equal(t, []string{"step2"}, diff.Removed)
	assert.Nil(t, diff.Meta)
	assert.False(t, diff.IsEmpty())
}

func TestDiff_InputChange(t *testing.T) {
	old := twoSteps()
	next := old.SetInputParameter("step2", "value", "fast")

	diff := domain.Diff(&old, next)
	require.NotNil(t, diff)
	require.Len(t, diff.Changed, 1)
	assert.Equal(t, "step2", diff.Changed[0].ID)
}

func TestDiff_Meta(t *testing.T) {
	old := twoSteps()
	next := old.Clone()
	next.Meta["title"] = "demo"

	diff := domain.Diff(&old, next)
	require.NotNil(t, diff)
	assert.Equal(t, domain.Meta{"title": "demo"}, diff.Meta)

	data, err := json.Marshal(diff)
	require.NoError(t, err)
	assert.JSONEq(t, `{"meta":{"title":"demo"}}`, string(data))
}

func TestDanglingConnections(t *testing.T) {
	w := twoSteps().
		SetConnection("step1", "nope", "step2", "value").
		RemoveStep("step1")
	w = w.AddStepWith("step3", domain.Component{Type: "sink"}, domain.Position{})
	w = w.SetConnection("step2", "result", "step3", "in")

	dangling := w.DanglingConnections()
	require.Len(t, dangling, 3)

	assert.Equal(t, "step2", dangling[0].StepID)
	assert.Equal(t, 0, dangling[0].Index)
	assert.True(t, dangling[0].MissingStep)
	assert.Equal(t, 1, dangling[1].Index)

	assert.Equal(t, "step3", dangling[2].StepID)
	assert.False(t, dangling[2].MissingStep, "step2 exists but does not declare result")
}

func TestPrune(t *testing.T) {
	w := twoSteps()
	w = w.SetConnection("ghost", "out", "step2", "value")
	w = w.SetConnection("step1", "data", "step2", "value")

	pruned := w.Prune()

	s, _ := pruned.Step("step2")
	assert.Equal(t, []domain.StepInput{
		domain.Connection{StepID: "step1", OutputName: "data"},
		domain.Connection{StepID: "step1", OutputName: "data"},
	}, s.Inputs["value"])
	assert.Empty(t, pruned.DanglingConnections())

	before, _ := w.Step("step2")
	assert.Len(t, before.Inputs["value"], 3, "prune does not touch the receiver")
	assert.Equal(t, pruned, pruned.Prune())
}
