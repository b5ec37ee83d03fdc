package log

import (
	"log/slog"

	"github.com/aretw0/cacheflow/pkg/domain"
)

func CanvasID[T ~string](id T) slog.Attr {
	return slog.String("canvas_id", string(id))
}

func StepID[T ~string](id T) slog.Attr {
	return slog.String("step_id", string(id))
}

func Op(op string) slog.Attr {
	return slog.String("op", op)
}

func Port(key domain.PortKey) slog.Attr {
	return slog.String("port", key.String())
}

func Revision(rev uint64) slog.Attr {
	return slog.Uint64("revision", rev)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
