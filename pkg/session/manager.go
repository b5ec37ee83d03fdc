package session

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/cacheflow"
	"github.com/aretw0/cacheflow/internal/logging"
	"github.com/aretw0/cacheflow/pkg/domain"
	"github.com/aretw0/cacheflow/pkg/log"
)

var (
	// ErrCanvasNotFound is returned for ids that are not open.
	ErrCanvasNotFound = errors.New("canvas not found")
	// ErrInvalidCanvasID is returned when opening a canvas with an empty id.
	ErrInvalidCanvasID = errors.New("canvas id must not be empty")
)

// Manager keeps the open canvases of one process, keyed by id.
type Manager struct {
	mu       sync.Mutex
	canvases map[string]*entry

	canvasOpts []cacheflow.Option
	logger     *slog.Logger
}

// entry pairs a canvas with a context that ends when it is closed.
type entry struct {
	canvas   *cacheflow.Canvas
	lifetime context.Context
	cancel   context.CancelFunc
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager and the canvases it opens.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithCanvasOptions appends options applied to every canvas opened.
func WithCanvasOptions(opts ...cacheflow.Option) Option {
	return func(m *Manager) {
		m.canvasOpts = append(m.canvasOpts, opts...)
	}
}

// NewManager creates a Manager with no open canvases.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		canvases: make(map[string]*entry),
		logger:   logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open returns the canvas for id, creating it on first use. When w is not
// nil it is loaded into the canvas, replacing the previous workflow.
// created reports whether a new canvas was made.
func (m *Manager) Open(ctx context.Context, id string, w *domain.Workflow) (c *cacheflow.Canvas, created bool, err error) {
	if id == "" {
		return nil, false, ErrInvalidCanvasID
	}

	m.mu.Lock()
	e, ok := m.canvases[id]
	if !ok {
		opts := append(slices.Clone(m.canvasOpts),
			cacheflow.WithID(id),
			cacheflow.WithLogger(m.logger),
		)
		lifetime, cancel := context.WithCancel(context.Background())
		e = &entry{canvas: cacheflow.New(opts...), lifetime: lifetime, cancel: cancel}
		m.canvases[id] = e
		m.logger.Info("canvas opened", log.CanvasID(id))
	}
	m.mu.Unlock()

	if w != nil {
		e.canvas.Load(ctx, *w)
	}
	return e.canvas, !ok, nil
}

// Get returns an open canvas.
func (m *Manager) Get(id string) (*cacheflow.Canvas, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.canvases[id]
	if !ok {
		return nil, ErrCanvasNotFound
	}
	return e.canvas, nil
}

// Close forgets a canvas. Subscriptions made through Subscribe end.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.canvases[id]
	if !ok {
		return ErrCanvasNotFound
	}
	e.cancel()
	delete(m.canvases, id)
	m.logger.Info("canvas closed", log.CanvasID(id))
	return nil
}

// CloseAll forgets every canvas and ends all subscriptions.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, e := range m.canvases {
		e.cancel()
		delete(m.canvases, id)
	}
}

// Subscribe follows a canvas until ctx is done or the canvas is closed.
func (m *Manager) Subscribe(ctx context.Context, id string) (<-chan cacheflow.Update, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.canvases[id]
	if !ok {
		return nil, ErrCanvasNotFound
	}
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(e.lifetime, cancel)
	updates := e.canvas.Subscribe(ctx)
	context.AfterFunc(ctx, func() { stop() })
	return updates, nil
}

// List returns the ids of open canvases in ascending order.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.canvases))
}

// Len returns the number of open canvases.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.canvases)
}
