package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cacheflow"
	"github.com/aretw0/cacheflow/pkg/domain"
)

func newDemoServer(t *testing.T) (*Server, *cacheflow.Canvas) {
	t.Helper()
	c := cacheflow.New(cacheflow.WithWorkflow(cacheflow.DemoWorkflow()))
	s := NewServer(c)
	require.NotNil(t, s.MCPServer())
	return s, c
}

func render(t *testing.T, s *Server) {
	t.Helper()
	ctx := context.Background()
	_, err := s.handleReportLayout(ctx, mcp.CallToolRequest{}, layoutArgs{
		StepID: "step1",
		Layout: `{"outputs": {"data": {"x": 110, "y": 70}}}`,
	})
	require.NoError(t, err)
	_, err = s.handleReportLayout(ctx, mcp.CallToolRequest{}, layoutArgs{
		StepID: "step2",
		Layout: `{"inputs": {"data": {"x": 400, "y": 70}}}`,
	})
	require.NoError(t, err)
}

func TestServer_ReportLayoutAndListConnections(t *testing.T) {
	s, _ := newDemoServer(t)
	ctx := context.Background()

	resp, err := s.handleListConnections(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Empty(t, resp.Connections)
	assert.NotNil(t, resp.Connections)

	render(t, s)

	resp, err = s.handleListConnections(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Connections, 1)
	assert.Equal(t, "step1.output.data.step2.input.data", resp.Connections[0].Key)
	assert.Equal(t, uint64(2), resp.Revision)
}

func TestServer_ReportLayoutCoalesces(t *testing.T) {
	s, _ := newDemoServer(t)
	render(t, s)

	resp, err := s.handleReportLayout(context.Background(), mcp.CallToolRequest{}, layoutArgs{
		StepID: "step1",
		Layout: `{"outputs": {"data": {"x": 110, "y": 70}}}`,
	})

	require.NoError(t, err)
	assert.Empty(t, resp.Set)
	assert.Empty(t, resp.Unset)
	assert.Equal(t, 1, resp.Suppressed)
}

func TestServer_ReportLayoutErrors(t *testing.T) {
	s, _ := newDemoServer(t)
	ctx := context.Background()

	_, err := s.handleReportLayout(ctx, mcp.CallToolRequest{}, layoutArgs{StepID: "ghost", Layout: `{}`})
	assert.ErrorIs(t, err, domain.ErrStepNotFound)

	_, err = s.handleReportLayout(ctx, mcp.CallToolRequest{}, layoutArgs{StepID: "step1", Layout: `{nope`})
	assert.ErrorContains(t, err, "invalid layout")
}

func TestServer_Edits(t *testing.T) {
	s, c := newDemoServer(t)
	ctx := context.Background()

	x, y := 10.0, 20.0
	added, err := s.handleAddStep(ctx, mcp.CallToolRequest{}, addStepArgs{Type: "plot", X: &x, Y: &y})
	require.NoError(t, err)
	require.True(t, added.Applied)
	step, ok := c.Workflow().Step(added.StepID)
	require.True(t, ok)
	assert.Equal(t, domain.Position{X: 10, Y: 20}, step.Position)

	resp, err := s.handleSetConnection(ctx, mcp.CallToolRequest{}, connectionArgs{
		FromStep: "step1", FromOutput: "data", ToStep: added.StepID, ToInput: "series",
	})
	require.NoError(t, err)
	assert.True(t, resp.Applied)

	resp, err = s.handleSetInputParameter(ctx, mcp.CallToolRequest{}, parameterArgs{
		StepID: added.StepID, Input: "series", Value: "1,2,3",
	})
	require.NoError(t, err)
	assert.True(t, resp.Applied)
	v, _ := c.Workflow().Step(added.StepID)
	value, _ := v.ConstantValue("series")
	assert.Equal(t, "1,2,3", value)

	resp, err = s.handleMoveStep(ctx, mcp.CallToolRequest{}, moveStepArgs{StepID: "step1", X: 20, Y: 50})
	require.NoError(t, err)
	assert.False(t, resp.Applied, "step1 is already there")

	resp, err = s.handleSetOutputs(ctx, mcp.CallToolRequest{}, outputsArgs{StepID: added.StepID, Outputs: []string{"figure"}})
	require.NoError(t, err)
	assert.True(t, resp.Applied)

	resp, err = s.handleRemoveConnection(ctx, mcp.CallToolRequest{}, connectionArgs{
		FromStep: "step1", FromOutput: "data", ToStep: "step2", ToInput: "data",
	})
	require.NoError(t, err)
	assert.True(t, resp.Applied)

	resp, err = s.handleRemoveStep(ctx, mcp.CallToolRequest{}, stepArgs{StepID: added.StepID})
	require.NoError(t, err)
	assert.True(t, resp.Applied)
	assert.Equal(t, c.Revision(), resp.Revision)
	assert.False(t, c.HasStep(added.StepID))
}

func TestServer_EditValidation(t *testing.T) {
	s, c := newDemoServer(t)
	ctx := context.Background()

	_, err := s.handleAddStep(ctx, mcp.CallToolRequest{}, addStepArgs{})
	assert.Error(t, err)

	_, err = s.handleRemoveStep(ctx, mcp.CallToolRequest{}, stepArgs{StepID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrStepNotFound)

	_, err = s.handleSetConnection(ctx, mcp.CallToolRequest{}, connectionArgs{
		FromStep: "ghost", FromOutput: "out", ToStep: "step2", ToInput: "data",
	})
	assert.ErrorIs(t, err, domain.ErrStepNotFound)

	_, err = s.handleSetInputParameter(ctx, mcp.CallToolRequest{}, parameterArgs{StepID: "step2"})
	assert.Error(t, err)

	assert.Equal(t, uint64(0), c.Revision())
}

func TestServer_Unmount(t *testing.T) {
	s, _ := newDemoServer(t)
	render(t, s)

	resp, err := s.handleUnmount(context.Background(), mcp.CallToolRequest{}, stepArgs{StepID: "step2"})

	require.NoError(t, err)
	assert.Equal(t, []string{"step2.input.data"}, resp.Unset)
}

func TestServer_GetWorkflow(t *testing.T) {
	s, _ := newDemoServer(t)

	result, err := s.handleGetWorkflow(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &doc))
	assert.Contains(t, doc["steps"], "step1")
	assert.Contains(t, doc["steps"], "step2")
}

func TestServer_HandleMessage(t *testing.T) {
	s, _ := newDemoServer(t)
	render(t, s)

	msg := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_connections","arguments":{}}}`)
	resp := s.MCPServer().HandleMessage(context.Background(), msg)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), "step1.output.data.step2.input.data")
	assert.NotContains(t, string(data), `"error"`)
}
