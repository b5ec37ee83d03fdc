package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/cacheflow/pkg/codec"
	"github.com/aretw0/cacheflow/pkg/domain"
	"github.com/aretw0/cacheflow/pkg/lifecycle"
)

var errBadRequest = errors.New("invalid request body")

type addStepRequest struct {
	Component domain.Component `json:"component"`
	Position  *domain.Position `json:"position,omitempty"`
}

type outputsRequest struct {
	Outputs []string `json:"outputs"`
}

type inputRequest struct {
	Value string `json:"value"`
}

type connectionRequest struct {
	SourceStepID     string `json:"source_step_id"`
	SourceOutputName string `json:"source_output_name"`
	DestStepID       string `json:"dest_step_id"`
	DestInputName    string `json:"dest_input_name"`
}

type connectionResponse struct {
	domain.ConnectionView
	Path string `json:"path"`
}

type appliedResponse struct {
	Applied  bool   `json:"applied"`
	Revision uint64 `json:"revision"`
}

func decodeBody[T any](r *http.Request) (T, error) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return v, nil
}

// ListCanvases handles GET /canvases.
func (s *Server) ListCanvases(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"canvases": s.Sessions.List()})
}

// OpenCanvas handles POST /canvases/{canvasID}. An optional body holds a
// workflow document loaded into the canvas.
func (s *Server) OpenCanvas(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	var doc *domain.Workflow
	if len(data) > 0 {
		wf, err := codec.Decode(data, codec.FormatJSON)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		doc = &wf
	}

	id := chi.URLParam(r, "canvasID")
	c, created, err := s.Sessions.Open(r.Context(), id, doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.writeJSON(w, status, map[string]any{
		"id":       id,
		"steps":    c.Workflow().Len(),
		"revision": c.Revision(),
	})
}

// CloseCanvas handles DELETE /canvases/{canvasID}.
func (s *Server) CloseCanvas(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Close(chi.URLParam(r, "canvasID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetWorkflow handles GET /canvases/{canvasID}/workflow.
func (s *Server) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := codec.Encode(w, canvasFrom(r).Workflow(), codec.FormatJSON); err != nil {
		s.writeError(w, r, err)
	}
}

// GetPorts handles GET /canvases/{canvasID}/ports.
func (s *Server) GetPorts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, canvasFrom(r).Ports())
}

// GetConnections handles GET /canvases/{canvasID}/connections.
func (s *Server) GetConnections(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, connectionResponses(canvasFrom(r).Connections(r.Context())))
}

// AddStep handles POST /canvases/{canvasID}/steps.
func (s *Server) AddStep(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody[addStepRequest](r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c := canvasFrom(r)
	var id string
	if body.Position != nil {
		id = c.AddStepAt(r.Context(), body.Component, *body.Position)
	} else {
		id = c.AddStep(r.Context(), body.Component)
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"step_id": id})
}

// RemoveStep handles DELETE /canvases/{canvasID}/steps/{stepID}.
func (s *Server) RemoveStep(w http.ResponseWriter, r *http.Request) {
	canvasFrom(r).RemoveStep(r.Context(), chi.URLParam(r, "stepID"))
	w.WriteHeader(http.StatusNoContent)
}

// MoveStep handles PUT /canvases/{canvasID}/steps/{stepID}/position.
func (s *Server) MoveStep(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody[domain.Position](r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c := canvasFrom(r)
	applied := c.MoveStep(r.Context(), chi.URLParam(r, "stepID"), body)
	s.writeApplied(w, c.Revision(), applied)
}

// SetOutputs handles PUT /canvases/{canvasID}/steps/{stepID}/outputs.
func (s *Server) SetOutputs(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody[outputsRequest](r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c := canvasFrom(r)
	applied := c.SetOutputs(r.Context(), chi.URLParam(r, "stepID"), body.Outputs...)
	s.writeApplied(w, c.Revision(), applied)
}

// SetInputParameter handles PUT /canvases/{canvasID}/steps/{stepID}/inputs/{input}.
func (s *Server) SetInputParameter(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody[inputRequest](r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c := canvasFrom(r)
	applied := c.SetInputParameter(r.Context(), chi.URLParam(r, "stepID"), chi.URLParam(r, "input"), body.Value)
	s.writeApplied(w, c.Revision(), applied)
}

// RemoveInput handles DELETE /canvases/{canvasID}/steps/{stepID}/inputs/{input}.
func (s *Server) RemoveInput(w http.ResponseWriter, r *http.Request) {
	c := canvasFrom(r)
	applied := c.RemoveInput(r.Context(), chi.URLParam(r, "stepID"), chi.URLParam(r, "input"))
	s.writeApplied(w, c.Revision(), applied)
}

// SetConnection handles POST /canvases/{canvasID}/connections. Both steps
// must exist; the source output does not have to be declared yet.
func (s *Server) SetConnection(w http.ResponseWriter, r *http.Request) {
	body, ok := s.connectionBody(w, r)
	if !ok {
		return
	}
	c := canvasFrom(r)
	if !c.HasStep(body.SourceStepID) {
		s.writeError(w, r, fmt.Errorf("source %s: %w", body.SourceStepID, domain.ErrStepNotFound))
		return
	}
	applied := c.SetConnection(r.Context(),
		body.SourceStepID, body.SourceOutputName, body.DestStepID, body.DestInputName)
	s.writeApplied(w, c.Revision(), applied)
}

// RemoveConnection handles DELETE /canvases/{canvasID}/connections.
func (s *Server) RemoveConnection(w http.ResponseWriter, r *http.Request) {
	body, ok := s.connectionBody(w, r)
	if !ok {
		return
	}
	c := canvasFrom(r)
	applied := c.RemoveConnection(r.Context(),
		body.SourceStepID, body.SourceOutputName, body.DestStepID, body.DestInputName)
	s.writeApplied(w, c.Revision(), applied)
}

// ReportLayout handles PUT /canvases/{canvasID}/steps/{stepID}/layout.
func (s *Server) ReportLayout(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody[lifecycle.Layout](r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	diff, ok := canvasFrom(r).ReportLayout(r.Context(), chi.URLParam(r, "stepID"), body)
	if !ok {
		// The step was removed between stepCtx and the report.
		s.writeError(w, r, domain.ErrStepNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, diff)
}

// Unmount handles DELETE /canvases/{canvasID}/steps/{stepID}/layout.
func (s *Server) Unmount(w http.ResponseWriter, r *http.Request) {
	diff := canvasFrom(r).Unmount(r.Context(), chi.URLParam(r, "stepID"))
	s.writeJSON(w, http.StatusOK, diff)
}

func (s *Server) connectionBody(w http.ResponseWriter, r *http.Request) (connectionRequest, bool) {
	body, err := decodeBody[connectionRequest](r)
	if err != nil {
		s.writeError(w, r, err)
		return body, false
	}
	if body.SourceStepID == "" || body.SourceOutputName == "" || body.DestInputName == "" {
		s.writeError(w, r, fmt.Errorf("%w: connection needs source step, source output and destination input", errBadRequest))
		return body, false
	}
	if !canvasFrom(r).HasStep(body.DestStepID) {
		s.writeError(w, r, fmt.Errorf("destination %s: %w", body.DestStepID, domain.ErrStepNotFound))
		return body, false
	}
	return body, true
}

func (s *Server) writeApplied(w http.ResponseWriter, revision uint64, applied bool) {
	s.writeJSON(w, http.StatusOK, appliedResponse{Applied: applied, Revision: revision})
}

func connectionResponses(views []domain.ConnectionView) []connectionResponse {
	out := make([]connectionResponse, len(views))
	for i, v := range views {
		out[i] = connectionResponse{ConnectionView: v, Path: v.Path()}
	}
	return out
}
