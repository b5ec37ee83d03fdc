package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/cacheflow/pkg/domain"
	"github.com/aretw0/cacheflow/pkg/log"
)

// frame is one SSE payload.
type frame struct {
	Revision    uint64               `json:"revision"`
	Diff        *domain.WorkflowDiff `json:"diff,omitempty"`
	Connections []connectionResponse `json:"connections"`
}

// SubscribeEvents handles GET /canvases/{canvasID}/events (SSE). After the
// initial ping, every change to the canvas produces one frame carrying the
// revision and the connections drawable at that revision.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	id := chi.URLParam(r, "canvasID")
	updates, err := s.Sessions.Subscribe(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: subscribing to canvas updates", log.CanvasID(id))
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected", log.CanvasID(id))
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			payload, err := json.Marshal(frame{
				Revision:    u.Revision,
				Diff:        u.Diff,
				Connections: connectionResponses(u.Connections),
			})
			if err != nil {
				s.logger.Error("SSE: frame encode failed", log.Error(err))
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
