package salon

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// NoopEventSink is a no-operation implementation of EventSink, for callers
// that don't need live updates and for testing.
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink.
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) AssetCreated(ctx context.Context, asset *Asset) error { return nil }

func (n *NoopEventSink) AssetUpdated(ctx context.Context, asset *Asset) error { return nil }

func (n *NoopEventSink) AssetDeleted(ctx context.Context, id uuid.UUID) error { return nil }

// LoggingEventSink logs lifecycle events but takes no other action. Useful
// for development and debugging.
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates an event sink that logs through the given
// logger.
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger}
}

func (l *LoggingEventSink) AssetCreated(ctx context.Context, asset *Asset) error {
	l.logger.Info("asset created", "asset_id", asset.ID, "kind", asset.Kind, "category", asset.Category)
	return nil
}

func (l *LoggingEventSink) AssetUpdated(ctx context.Context, asset *Asset) error {
	l.logger.Info("asset updated", "asset_id", asset.ID, "kind", asset.Kind)
	return nil
}

func (l *LoggingEventSink) AssetDeleted(ctx context.Context, id uuid.UUID) error {
	l.logger.Info("asset deleted", "asset_id", id)
	return nil
}
