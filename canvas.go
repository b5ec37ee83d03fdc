package cacheflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/cacheflow/internal/derivation"
	"github.com/aretw0/cacheflow/internal/logging"
	"github.com/aretw0/cacheflow/pkg/adapters/memory"
	"github.com/aretw0/cacheflow/pkg/domain"
	"github.com/aretw0/cacheflow/pkg/lifecycle"
	"github.com/aretw0/cacheflow/pkg/log"
	"github.com/aretw0/cacheflow/pkg/ports"
)

// DefaultStreamBuffer is the per-subscriber buffer used when none is set.
const DefaultStreamBuffer = 16

// Canvas owns one workflow, its port registry and the lifecycle trackers of
// its rendered steps. Every mutation and derivation runs under one lock, so
// concurrent callers only ever observe fully applied edits.
type Canvas struct {
	mu       sync.Mutex
	id       string
	workflow domain.Workflow
	registry ports.PortRegistry
	sync     *lifecycle.Synchronizer
	revision uint64

	subsMu sync.Mutex
	subs   map[chan Update]struct{}
	buffer int

	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Update is published to subscribers after every change that can affect
// the drawn connections.
type Update struct {
	Revision    uint64                  `json:"revision"`
	Diff        *domain.WorkflowDiff    `json:"diff,omitempty"`
	Connections []domain.ConnectionView `json:"connections"`
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithID labels the canvas in events and logs.
func WithID(id string) Option {
	return func(c *Canvas) {
		c.id = id
	}
}

// WithWorkflow sets the initial workflow.
func WithWorkflow(w domain.Workflow) Option {
	return func(c *Canvas) {
		c.workflow = w
	}
}

// WithRegistry injects the port registry. Defaults to an in-memory one.
func WithRegistry(r ports.PortRegistry) Option {
	return func(c *Canvas) {
		c.registry = r
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Canvas) {
		c.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the canvas.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Canvas) {
		c.logger = logger
	}
}

// WithStreamBuffer sets the buffer of each subscription channel.
func WithStreamBuffer(n int) Option {
	return func(c *Canvas) {
		c.buffer = n
	}
}

// New creates a canvas holding an empty workflow unless WithWorkflow is given.
func New(opts ...Option) *Canvas {
	c := &Canvas{
		workflow: domain.NewWorkflow(),
		subs:     make(map[chan Update]struct{}),
		buffer:   DefaultStreamBuffer,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = memory.NewRegistry()
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.id != "" {
		c.logger = c.logger.With(log.CanvasID(c.id))
	}
	if c.buffer <= 0 {
		c.buffer = DefaultStreamBuffer
	}
	c.sync = lifecycle.NewSynchronizer(c.registry)
	return c
}

// ID returns the canvas label, possibly empty.
func (c *Canvas) ID() string {
	return c.id
}

// Workflow returns a deep copy of the current workflow. Callers may mutate
// it freely; edits made afterwards do not affect it.
func (c *Canvas) Workflow() domain.Workflow {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.workflow.Clone()
}

// HasStep reports whether the current workflow contains stepID.
func (c *Canvas) HasStep(stepID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.workflow.HasStep(stepID)
}

// Revision counts applied changes since the canvas was created.
func (c *Canvas) Revision() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revision
}

// Ports returns every registered port position.
func (c *Canvas) Ports() []domain.PortEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Ports()
}

// Connections derives the drawable connections of the current state.
func (c *Canvas) Connections(ctx context.Context) []domain.ConnectionView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.derive(ctx)
}

// Load replaces the whole workflow, as when a document is opened.
func (c *Canvas) Load(ctx context.Context, w domain.Workflow) bool {
	return c.apply(ctx, "load", "", func(domain.Workflow) domain.Workflow { return w })
}

// AddStep inserts a step with a fresh id and returns that id.
func (c *Canvas) AddStep(ctx context.Context, component domain.Component) string {
	var id string
	c.apply(ctx, "add_step", "", func(w domain.Workflow) domain.Workflow {
		var next domain.Workflow
		next, id = w.AddStep(component)
		return next
	})
	return id
}

// AddStepAt inserts a step with a fresh id at position.
func (c *Canvas) AddStepAt(ctx context.Context, component domain.Component, position domain.Position) string {
	var id string
	c.apply(ctx, "add_step", "", func(w domain.Workflow) domain.Workflow {
		var next domain.Workflow
		next, id = w.AddStep(component)
		return next.MoveStep(id, position)
	})
	return id
}

// RemoveStep removes a step and drops the ports its renderer registered.
// Connections that referenced it stay in the workflow.
func (c *Canvas) RemoveStep(ctx context.Context, stepID string) bool {
	return c.apply(ctx, "remove_step", stepID, func(w domain.Workflow) domain.Workflow {
		return w.RemoveStep(stepID)
	})
}

// MoveStep sets the position of a step.
func (c *Canvas) MoveStep(ctx context.Context, stepID string, position domain.Position) bool {
	return c.apply(ctx, "move_step", stepID, func(w domain.Workflow) domain.Workflow {
		return w.MoveStep(stepID, position)
	})
}

// SetOutputs declares the output ports of a step.
func (c *Canvas) SetOutputs(ctx context.Context, stepID string, names ...string) bool {
	return c.apply(ctx, "set_outputs", stepID, func(w domain.Workflow) domain.Workflow {
		return w.SetOutputs(stepID, names...)
	})
}

// SetInputParameter replaces an input slot with a constant.
func (c *Canvas) SetInputParameter(ctx context.Context, stepID, inputName, value string) bool {
	return c.apply(ctx, "set_input_parameter", stepID, func(w domain.Workflow) domain.Workflow {
		return w.SetInputParameter(stepID, inputName, value)
	})
}

// SetConnection appends a connection to an input slot.
func (c *Canvas) SetConnection(ctx context.Context, fromStepID, fromOutputName, toStepID, toInputName string) bool {
	return c.apply(ctx, "set_connection", toStepID, func(w domain.Workflow) domain.Workflow {
		return w.SetConnection(fromStepID, fromOutputName, toStepID, toInputName)
	})
}

// RemoveConnection removes every matching connection from an input slot.
func (c *Canvas) RemoveConnection(ctx context.Context, fromStepID, fromOutputName, toStepID, toInputName string) bool {
	return c.apply(ctx, "remove_connection", toStepID, func(w domain.Workflow) domain.Workflow {
		return w.RemoveConnection(fromStepID, fromOutputName, toStepID, toInputName)
	})
}

// RemoveInput drops an input slot.
func (c *Canvas) RemoveInput(ctx context.Context, stepID, inputName string) bool {
	return c.apply(ctx, "remove_input", stepID, func(w domain.Workflow) domain.Workflow {
		return w.RemoveInput(stepID, inputName)
	})
}

// Prune removes dangling connections from the workflow.
func (c *Canvas) Prune(ctx context.Context) bool {
	return c.apply(ctx, "prune", "", func(w domain.Workflow) domain.Workflow {
		return w.Prune()
	})
}

// ReportLayout records the measured port positions of a rendered step.
// Reports for steps that are not in the workflow are ignored.
func (c *Canvas) ReportLayout(ctx context.Context, stepID string, layout lifecycle.Layout) (lifecycle.Diff, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.workflow.HasStep(stepID) {
		c.logger.Debug("layout ignored", log.StepID(stepID), slog.String("reason", "unknown step"))
		return lifecycle.Diff{}, false
	}
	diff := c.sync.Report(stepID, layout)
	c.afterPorts(ctx, stepID, diff)
	return diff, true
}

// Unmount removes every port a step's renderer registered.
func (c *Canvas) Unmount(ctx context.Context, stepID string) lifecycle.Diff {
	c.mu.Lock()
	defer c.mu.Unlock()

	diff := c.sync.Unmount(stepID)
	c.afterPorts(ctx, stepID, diff)
	return diff
}

// Subscribe returns a channel receiving an Update after each change. The
// channel is closed when ctx is done. Slow subscribers miss updates rather
// than stall the canvas.
func (c *Canvas) Subscribe(ctx context.Context) <-chan Update {
	ch := make(chan Update, c.buffer)
	c.subsMu.Lock()
	c.subs[ch] = struct{}{}
	c.subsMu.Unlock()

	go func() {
		<-ctx.Done()
		c.subsMu.Lock()
		delete(c.subs, ch)
		close(ch)
		c.subsMu.Unlock()
	}()
	return ch
}

func (c *Canvas) apply(ctx context.Context, op, stepID string, edit func(domain.Workflow) domain.Workflow) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.workflow
	next := edit(prev)
	diff := domain.Diff(&prev, next)
	applied := diff != nil

	if c.hooks.OnEdit != nil {
		c.hooks.OnEdit(ctx, &domain.EditEvent{
			EventBase: c.event(domain.EventEdit),
			Op:        op,
			StepID:    stepID,
			Applied:   applied,
			Steps:     next.Len(),
		})
	}
	if !applied {
		c.logger.Debug("edit skipped", log.Op(op), log.StepID(stepID), slog.String("reason", "no change"))
		return false
	}

	c.workflow = next
	c.revision++
	c.logger.Debug("edit applied", log.Op(op), log.StepID(stepID), log.Revision(c.revision))

	for id, d := range c.sync.Reconcile(next) {
		c.portEvent(ctx, id, d)
	}
	c.publish(ctx, diff)
	return true
}

func (c *Canvas) afterPorts(ctx context.Context, stepID string, diff lifecycle.Diff) {
	c.portEvent(ctx, stepID, diff)
	if len(diff.Set) == 0 && len(diff.Unset) == 0 {
		return
	}
	c.revision++
	c.publish(ctx, nil)
}

func (c *Canvas) portEvent(ctx context.Context, stepID string, diff lifecycle.Diff) {
	c.logger.Debug("ports reported",
		log.StepID(stepID),
		slog.Int("set", len(diff.Set)),
		slog.Int("unset", len(diff.Unset)),
		slog.Int("suppressed", diff.Suppressed),
	)
	if c.hooks.OnPortReport == nil {
		return
	}
	c.hooks.OnPortReport(ctx, &domain.PortEvent{
		EventBase:  c.event(domain.EventPortReport),
		StepID:     stepID,
		Set:        len(diff.Set),
		Unset:      len(diff.Unset),
		Suppressed: diff.Suppressed,
		Registered: c.registry.Len(),
	})
}

// derive must be called with c.mu held.
func (c *Canvas) derive(ctx context.Context) []domain.ConnectionView {
	views, stats := derivation.ComputeWithStats(c.workflow, c.registry)
	if c.hooks.OnDerive != nil {
		c.hooks.OnDerive(ctx, &domain.DeriveEvent{
			EventBase:  c.event(domain.EventDerive),
			Considered: stats.Considered,
			Emitted:    stats.Emitted,
			Skipped:    stats.Skipped,
		})
	}
	return views
}

// publish must be called with c.mu held.
func (c *Canvas) publish(ctx context.Context, diff *domain.WorkflowDiff) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	if len(c.subs) == 0 {
		return
	}

	update := Update{
		Revision:    c.revision,
		Diff:        diff,
		Connections: c.derive(ctx),
	}
	for ch := range c.subs {
		select {
		case ch <- update:
		default:
			c.logger.Warn("subscriber lagging, update dropped", log.Revision(update.Revision))
		}
	}
}

func (c *Canvas) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		CanvasID:  c.id,
	}
}
