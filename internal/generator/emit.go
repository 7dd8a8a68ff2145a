package generator

import (
	"context"
	"log/slog"

	"github.com/alfredjeanlab/ticketforge/internal/events"
)

// emitter publishes run events. Events are best-effort: a failed publish
// is logged and never aborts generation.
type emitter struct {
	pub    events.Publisher
	runID  string
	logger *slog.Logger
}

func (e *emitter) emit(ctx context.Context, topic string, event any) {
	if err := e.pub.Publish(ctx, topic, event); err != nil {
		e.logger.Warn("publishing event", "topic", topic, "run_id", e.runID, "err", err)
	}
}
