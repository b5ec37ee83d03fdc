package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/cacheflow"
	"github.com/aretw0/cacheflow/internal/logging"
	"github.com/aretw0/cacheflow/pkg/codec"
	"github.com/aretw0/cacheflow/pkg/domain"
	"github.com/aretw0/cacheflow/pkg/log"
	"github.com/aretw0/cacheflow/pkg/session"
)

// APIVersion is reported by GET /info.
const APIVersion = "0.1.0"

// Server exposes the canvases of a session manager over HTTP.
type Server struct {
	Sessions *session.Manager

	logger      *slog.Logger
	metricsPath string
	metrics     http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts a metrics handler (usually promhttp) at path.
func WithMetrics(path string, handler http.Handler) Option {
	return func(s *Server) {
		s.metricsPath = path
		s.metrics = handler
	}
}

type ctxKey int

const canvasKey ctxKey = iota

// NewHandler creates the HTTP handler serving the given canvases.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, s.metricsPath, s.metrics)
	}

	r.Get("/canvases", s.ListCanvases)
	r.Route("/canvases/{canvasID}", func(r chi.Router) {
		r.Post("/", s.OpenCanvas)
		r.Group(func(r chi.Router) {
			r.Use(s.canvasCtx)
			r.Delete("/", s.CloseCanvas)
			r.Get("/workflow", s.GetWorkflow)
			r.Get("/ports", s.GetPorts)
			r.Get("/connections", s.GetConnections)
			r.Get("/events", s.SubscribeEvents)
			r.Post("/connections", s.SetConnection)
			r.Delete("/connections", s.RemoveConnection)
			r.Post("/steps", s.AddStep)
			r.Route("/steps/{stepID}", func(r chi.Router) {
				r.Use(stepCtx)
				r.Delete("/", s.RemoveStep)
				r.Put("/position", s.MoveStep)
				r.Put("/outputs", s.SetOutputs)
				r.Put("/inputs/{input}", s.SetInputParameter)
				r.Delete("/inputs/{input}", s.RemoveInput)
				r.Put("/layout", s.ReportLayout)
				r.Delete("/layout", s.Unmount)
			})
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// canvasCtx resolves {canvasID} or answers 404.
func (s *Server) canvasCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := s.Sessions.Get(chi.URLParam(r, "canvasID"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), canvasKey, c)))
	})
}

// stepCtx answers 404 when {stepID} is not part of the canvas workflow.
func stepCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !canvasFrom(r).HasStep(chi.URLParam(r, "stepID")) {
			http.Error(w, domain.ErrStepNotFound.Error(), http.StatusNotFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func canvasFrom(r *http.Request) *cacheflow.Canvas {
	return r.Context().Value(canvasKey).(*cacheflow.Canvas)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "cacheflow-http",
		"version":     strings.TrimSpace(cacheflow.Version),
		"api_version": APIVersion,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", log.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrCanvasNotFound), errors.Is(err, domain.ErrStepNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrInvalidCanvasID),
		errors.Is(err, codec.ErrInvalidDocument),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", r.URL.Path), log.Error(err))
	} else {
		s.logger.Debug("request rejected", slog.String("path", r.URL.Path), log.Error(err))
	}
	http.Error(w, err.Error(), status)
}
