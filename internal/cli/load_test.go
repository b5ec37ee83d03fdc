package cli_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cacheflow"
	"github.com/aretw0/cacheflow/internal/cli"
	"github.com/aretw0/cacheflow/internal/config"
	"github.com/aretw0/cacheflow/internal/logging"
)

func TestLoadWorkflow(t *testing.T) {
	demo, err := cli.LoadWorkflow(cli.DemoSource)
	require.NoError(t, err)
	assert.Equal(t, cacheflow.DemoWorkflow(), demo)

	w, err := cli.LoadWorkflow("testdata/workflow.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"step1", "step2"}, w.StepIDs())
	assert.Equal(t, "demo", w.Meta["name"])

	_, err = cli.LoadWorkflow("testdata/missing.json")
	assert.Error(t, err)
}

func TestApplyLayouts(t *testing.T) {
	w, err := cli.LoadWorkflow("testdata/workflow.yaml")
	require.NoError(t, err)
	c := cacheflow.New(cacheflow.WithWorkflow(w))
	var logs bytes.Buffer

	skipped, err := cli.ApplyLayouts(context.Background(), c, "testdata/layout.json", logging.NewText(&logs, slog.LevelWarn))

	require.NoError(t, err)
	assert.Equal(t, []string{"ghost"}, skipped)
	assert.Contains(t, logs.String(), "step_id=ghost")
	assert.Len(t, c.Ports(), 3)
	assert.Len(t, c.Connections(context.Background()), 1)
}

func TestApplyLayouts_NoFile(t *testing.T) {
	c := cacheflow.New()

	skipped, err := cli.ApplyLayouts(context.Background(), c, "", logging.NewNop())

	require.NoError(t, err)
	assert.Nil(t, skipped)
}

func TestNewLogger(t *testing.T) {
	cfg := config.NewDefaultConfig()
	var buf bytes.Buffer

	logger, err := cli.NewLogger(cfg, &buf)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")

	cfg.LogFormat = config.LogFormatJSON
	buf.Reset()
	logger, err = cli.NewLogger(cfg, &buf)
	require.NoError(t, err)
	logger.Info("shown")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	cfg.LogFormat = "xml"
	_, err = cli.NewLogger(cfg, &buf)
	assert.ErrorIs(t, err, config.ErrInvalidLogFormat)

	cfg.LogFormat = config.LogFormatText
	cfg.LogLevel = "loud"
	_, err = cli.NewLogger(cfg, &buf)
	assert.ErrorIs(t, err, config.ErrInvalidLogLevel)
}
