// Package cli holds the helpers shared by the cacheflow subcommands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/aretw0/cacheflow"
	"github.com/aretw0/cacheflow/internal/config"
	"github.com/aretw0/cacheflow/internal/logging"
	"github.com/aretw0/cacheflow/pkg/codec"
	"github.com/aretw0/cacheflow/pkg/domain"
	"github.com/aretw0/cacheflow/pkg/log"
)

// DemoSource selects the built-in demo workflow instead of a file.
const DemoSource = "demo"

// LoadWorkflow reads a workflow document, or returns the demo workflow when
// path is empty or DemoSource.
func LoadWorkflow(path string) (domain.Workflow, error) {
	if path == "" || path == DemoSource {
		return cacheflow.DemoWorkflow(), nil
	}
	return codec.DecodeFile(path)
}

// ApplyLayouts reports every layout of a layout document to the canvas, in
// step id order. Layouts of steps the workflow does not have are skipped
// and returned.
func ApplyLayouts(ctx context.Context, c *cacheflow.Canvas, path string, logger *slog.Logger) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	layouts, err := codec.DecodeLayoutsFile(path)
	if err != nil {
		return nil, err
	}
	var skipped []string
	for _, stepID := range slices.Sorted(maps.Keys(layouts)) {
		if _, ok := c.ReportLayout(ctx, stepID, layouts[stepID]); !ok {
			logger.Warn("layout for unknown step", log.StepID(stepID))
			skipped = append(skipped, stepID)
		}
	}
	return skipped, nil
}

// NewLogger builds the application logger from the configured level and
// format. Logs go to w so stdout stays free for command output.
func NewLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", config.ErrInvalidLogLevel, cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case config.LogFormatJSON:
		return logging.NewJSON(w, level), nil
	case config.LogFormatText, "":
		return logging.NewText(w, level), nil
	}
	return nil, fmt.Errorf("%w: %s", config.ErrInvalidLogFormat, cfg.LogFormat)
}
