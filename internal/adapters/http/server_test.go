package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfhttp "github.com/aretw0/cacheflow/internal/adapters/http"
	"github.com/aretw0/cacheflow/pkg/session"
)

const demoDocument = `{
  "steps": {
    "step1": {"component": {"type": "data"}, "inputs": {"function": ["fast"]}, "outputs": ["data"], "position": [20, 50]},
    "step2": {"component": {"type": "optimize"}, "inputs": {"data": [{"step": "step1", "output": "data"}]}, "position": [400, 50]}
  }
}`

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	return cfhttp.NewHandler(session.NewManager(),
		cfhttp.WithMetrics("/metrics", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			io.WriteString(w, "# metrics\n")
		})),
	)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestGetHealth(t *testing.T) {
	rr := do(t, newHandler(t), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rr)["status"])
}

func TestGetInfo(t *testing.T) {
	rr := do(t, newHandler(t), http.MethodGet, "/info", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decode[map[string]string](t, rr)
	assert.Equal(t, "cacheflow-http", resp["app"])
	assert.NotEmpty(t, resp["version"])
	assert.Equal(t, cfhttp.APIVersion, resp["api_version"])
}

func TestMetricsMounted(t *testing.T) {
	rr := do(t, newHandler(t), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "# metrics")
}

func TestCanvasLifecycle(t *testing.T) {
	h := newHandler(t)

	rr := do(t, h, http.MethodPost, "/canvases/main", demoDocument)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, 2.0, decode[map[string]any](t, rr)["steps"])

	rr = do(t, h, http.MethodPost, "/canvases/main", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/canvases", "")
	assert.Equal(t, []string{"main"}, decode[map[string][]string](t, rr)["canvases"])

	rr = do(t, h, http.MethodGet, "/canvases/main/workflow", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"optimize"`)

	rr = do(t, h, http.MethodDelete, "/canvases/main", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodGet, "/canvases/main/workflow", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestOpenCanvasRejectsBadDocument(t *testing.T) {
	rr := do(t, newHandler(t), http.MethodPost, "/canvases/main", `{"steps": {"a": {"position": [1]}}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "steps.a.position")
}

func TestEditAndDerive(t *testing.T) {
	h := newHandler(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/canvases/main", demoDocument).Code)

	rr := do(t, h, http.MethodPut, "/canvases/main/steps/step1/layout",
		`{"outputs": {"data": {"x": 110, "y": 70}}}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = do(t, h, http.MethodPut, "/canvases/main/steps/step2/layout",
		`{"inputs": {"data": {"x": 400, "y": 70}}}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/canvases/main/connections", "")
	require.Equal(t, http.StatusOK, rr.Code)
	views := decode[[]map[string]any](t, rr)
	require.Len(t, views, 1)
	assert.Equal(t, "step1.output.data.step2.input.data", views[0]["key"])
	assert.Equal(t, "M 110 70 C 150 70 360 70 400 70", views[0]["path"])

	rr = do(t, h, http.MethodGet, "/canvases/main/ports", "")
	assert.Len(t, decode[[]map[string]any](t, rr), 2)

	rr = do(t, h, http.MethodPut, "/canvases/main/steps/step2/inputs/data", `{"value": "manual"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decode[map[string]any](t, rr)["applied"])

	rr = do(t, h, http.MethodGet, "/canvases/main/connections", "")
	assert.Empty(t, decode[[]map[string]any](t, rr))
}

func TestStepEndpoints(t *testing.T) {
	h := newHandler(t)
	do(t, h, http.MethodPost, "/canvases/main", "")

	rr := do(t, h, http.MethodPost, "/canvases/main/steps", `{"component": {"type": "plot"}, "position": {"x": 5, "y": 6}}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decode[map[string]string](t, rr)["step_id"]
	require.NotEmpty(t, id)

	rr = do(t, h, http.MethodPut, "/canvases/main/steps/"+id+"/outputs", `{"outputs": ["out"]}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, h, http.MethodPut, "/canvases/main/steps/"+id+"/position", `{"x": 5, "y": 6}`)
	assert.Equal(t, false, decode[map[string]any](t, rr)["applied"], "same position is a no-op")

	rr = do(t, h, http.MethodPost, "/canvases/main/connections",
		`{"source_step_id": "`+id+`", "source_output_name": "out", "dest_step_id": "`+id+`", "dest_input_name": "in"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, h, http.MethodDelete, "/canvases/main/connections",
		`{"source_step_id": "`+id+`", "source_output_name": "out", "dest_step_id": "`+id+`", "dest_input_name": "in"}`)
	assert.Equal(t, true, decode[map[string]any](t, rr)["applied"])

	rr = do(t, h, http.MethodDelete, "/canvases/main/steps/"+id+"/inputs/in", "")
	assert.Equal(t, true, decode[map[string]any](t, rr)["applied"])

	rr = do(t, h, http.MethodDelete, "/canvases/main/steps/"+id+"/layout", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodDelete, "/canvases/main/steps/"+id, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestNotFoundAndBadRequest(t *testing.T) {
	h := newHandler(t)
	do(t, h, http.MethodPost, "/canvases/main", demoDocument)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown canvas", http.MethodGet, "/canvases/ghost/connections", "", http.StatusNotFound},
		{"unknown step", http.MethodDelete, "/canvases/main/steps/ghost", "", http.StatusNotFound},
		{"unknown step layout", http.MethodPut, "/canvases/main/steps/ghost/layout", `{}`, http.StatusNotFound},
		{"unknown destination", http.MethodPost, "/canvases/main/connections",
			`{"source_step_id": "step1", "source_output_name": "data", "dest_step_id": "ghost", "dest_input_name": "x"}`,
			http.StatusNotFound},
		{"unknown source", http.MethodPost, "/canvases/main/connections",
			`{"source_step_id": "ghost", "source_output_name": "data", "dest_step_id": "step2", "dest_input_name": "x"}`,
			http.StatusNotFound},
		{"incomplete connection", http.MethodPost, "/canvases/main/connections",
			`{"source_step_id": "step1", "dest_step_id": "step2"}`, http.StatusBadRequest},
		{"malformed body", http.MethodPut, "/canvases/main/steps/step1/position", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}
}

func TestSubscribeEvents(t *testing.T) {
	srv := httptest.NewServer(newHandler(t))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/canvases/main", "application/json", strings.NewReader(demoDocument))
	require.NoError(t, err)
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/canvases/main/events", nil)
	stream, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer stream.Body.Close()
	assert.Equal(t, "text/event-stream", stream.Header.Get("Content-Type"))

	lines := bufio.NewScanner(stream.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	put, _ := http.NewRequest(http.MethodPut, srv.URL+"/canvases/main/steps/step1/position",
		strings.NewReader(`{"x": 30, "y": 60}`))
	resp, err = http.DefaultClient.Do(put)
	require.NoError(t, err)
	resp.Body.Close()

	var payload string
	for lines.Scan() {
		if data, ok := strings.CutPrefix(lines.Text(), "data: {"); ok {
			payload = "{" + data
			break
		}
	}
	require.NotEmpty(t, payload)

	var frame struct {
		Revision    uint64           `json:"revision"`
		Connections []map[string]any `json:"connections"`
	}
	require.NoError(t, json.Unmarshal([]byte(payload), &frame))
	assert.Equal(t, uint64(2), frame.Revision)
	assert.NotNil(t, frame.Connections)
}
