package log_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/cacheflow/pkg/domain"
	"github.com/aretw0/cacheflow/pkg/log"
)

func TestCanvasID(t *testing.T) {
	assertAttrEqual(t, log.CanvasID("main"), "canvas_id", "main")
}

func TestStepID(t *testing.T) {
	assertAttrEqual(t, log.StepID("step-abc"), "step_id", "step-abc")
}

func TestOp(t *testing.T) {
	assertAttrEqual(t, log.Op("move_step"), "op", "move_step")
}

func TestPort(t *testing.T) {
	attr := log.Port(domain.OutputKey("step1", "data"))
	assertAttrEqual(t, attr, "port", "step1.output.data")
}

func TestRevision(t *testing.T) {
	attr := log.Revision(7)
	assert.Equal(t, "revision", attr.Key)
	assert.Equal(t, uint64(7), attr.Value.Uint64())
}

func TestError(t *testing.T) {
	assertAttrEqual(t, log.Error(nil), "error", "")
	assertAttrEqual(t, log.Error(errors.New("boom")), "error", "boom")
}

func assertAttrEqual(t *testing.T, attr slog.Attr, key, value string) {
	t.Helper()
	assert.Equal(t, key, attr.Key)
	assert.Equal(t, value, attr.Value.String())
}
