package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventEdit       EventType = "edit"
	EventPortReport EventType = "port_report"
	EventDerive     EventType = "derive"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	CanvasID  string    `json:"canvas_id,omitempty"`
}

// EditEvent describes one edit operation applied to a workflow.
type EditEvent struct {
	EventBase
	Op      string `json:"op"`
	StepID  string `json:"step_id,omitempty"`
	Applied bool   `json:"applied"`
	Steps   int    `json:"steps"`
}

// PortEvent describes one lifecycle pass of a rendered step.
type PortEvent struct {
	EventBase
	StepID     string `json:"step_id"`
	Set        int    `json:"set"`
	Unset      int    `json:"unset"`
	Suppressed int    `json:"suppressed"`
	Registered int    `json:"registered"`
}

// DeriveEvent describes one connection derivation pass.
type DeriveEvent struct {
	EventBase
	Considered int `json:"considered"`
	Emitted    int `json:"emitted"`
	Skipped    int `json:"skipped"`
}

// LifecycleHooks defines callbacks for canvas observability.
type LifecycleHooks struct {
	OnEdit       func(context.Context, *EditEvent)
	OnPortReport func(context.Context, *PortEvent)
	OnDerive     func(context.Context, *DeriveEvent)
}
