package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes telemetry events to an slog.Logger.
// Useful for development when you want to watch publish traffic in the
// console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter that writes to the given
// slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("engine", event.Engine.String()),
		slog.String("kind", event.Kind.String()),
	}

	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device_id", event.DeviceID))
	}

	switch event.Kind {
	case KindStateSync:
		attrs = append(attrs,
			slog.Bool("success", event.Success),
			slog.Int("members", event.Members),
			slog.String("payload", string(event.Payload)),
		)
	case KindEventPublish:
		attrs = append(attrs,
			slog.Bool("success", event.Success),
			slog.String("event", event.EventName),
			slog.String("message", event.Message),
		)
	case KindLifecycle, KindError:
		if event.Detail != "" {
			attrs = append(attrs, slog.String("detail", event.Detail))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "telemetry", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
