package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/cacheflow/pkg/domain"
	"github.com/aretw0/cacheflow/pkg/log"
)

// Combine returns hooks that call each of the given hook sets in order.
// Nil callbacks are skipped.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEdit: func(ctx context.Context, e *domain.EditEvent) {
			for _, h := range sets {
				if h.OnEdit != nil {
					h.OnEdit(ctx, e)
				}
			}
		},
		OnPortReport: func(ctx context.Context, e *domain.PortEvent) {
			for _, h := range sets {
				if h.OnPortReport != nil {
					h.OnPortReport(ctx, e)
				}
			}
		},
		OnDerive: func(ctx context.Context, e *domain.DeriveEvent) {
			for _, h := range sets {
				if h.OnDerive != nil {
					h.OnDerive(ctx, e)
				}
			}
		},
	}
}

// LogHooks logs every edit and lifecycle pass at Info. Derivation passes
// are frequent and logged at Debug.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEdit: func(ctx context.Context, e *domain.EditEvent) {
			logger.InfoContext(ctx, "edit",
				log.CanvasID(e.CanvasID),
				log.Op(e.Op),
				log.StepID(e.StepID),
				slog.Bool("applied", e.Applied),
			)
		},
		OnPortReport: func(ctx context.Context, e *domain.PortEvent) {
			logger.InfoContext(ctx, "port_report",
				log.CanvasID(e.CanvasID),
				log.StepID(e.StepID),
				slog.Int("set", e.Set),
				slog.Int("unset", e.Unset),
				slog.Int("registered", e.Registered),
			)
		},
		OnDerive: func(ctx context.Context, e *domain.DeriveEvent) {
			logger.DebugContext(ctx, "derive",
				log.CanvasID(e.CanvasID),
				slog.Int("emitted", e.Emitted),
				slog.Int("skipped", e.Skipped),
			)
		},
	}
}
