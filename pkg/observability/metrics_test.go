package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cacheflow"
	"github.com/aretw0/cacheflow/internal/logging"
	"github.com/aretw0/cacheflow/pkg/domain"
	"github.com/aretw0/cacheflow/pkg/lifecycle"
	"github.com/aretw0/cacheflow/pkg/observability"
)

func TestMetrics_Register(t *testing.T) {
	m := observability.NewMetrics()
	reg := prometheus.NewRegistry()

	require.NoError(t, m.Register(reg))
	assert.Error(t, m.Register(reg), "collectors cannot be registered twice")
}

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	c := cacheflow.New(
		cacheflow.WithWorkflow(cacheflow.DemoWorkflow()),
		cacheflow.WithLifecycleHooks(m.Hooks()),
	)
	ctx := context.Background()

	c.MoveStep(ctx, "step1", domain.Position{X: 1, Y: 1})
	c.MoveStep(ctx, "ghost", domain.Position{X: 1, Y: 1})
	c.ReportLayout(ctx, "step1", lifecycle.Layout{
		Outputs: map[string]domain.Position{"data": {X: 90, Y: 10}},
	})
	c.ReportLayout(ctx, "step1", lifecycle.Layout{
		Outputs: map[string]domain.Position{"data": {X: 90, Y: 10}},
	})
	c.Connections(ctx)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Edits.WithLabelValues("move_step")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EditsNoop.WithLabelValues("move_step")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Steps))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PortReports.WithLabelValues(observability.ResultSet)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PortReports.WithLabelValues(observability.ResultSuppressed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ports))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Derived))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Skipped), "step2 input is not rendered yet")
}

func TestCombine(t *testing.T) {
	var buf bytes.Buffer
	m := observability.NewMetrics()
	hooks := observability.Combine(
		m.Hooks(),
		observability.LogHooks(logging.NewJSON(&buf, slog.LevelInfo)),
		domain.LifecycleHooks{},
	)

	hooks.OnEdit(context.Background(), &domain.EditEvent{Op: "add_step", Applied: true, Steps: 3})
	hooks.OnDerive(context.Background(), &domain.DeriveEvent{Emitted: 2})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Edits.WithLabelValues("add_step")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Derived))
	assert.Contains(t, buf.String(), `"op":"add_step"`)
	assert.NotContains(t, buf.String(), `"msg":"derive"`, "derive is logged at debug")
}
