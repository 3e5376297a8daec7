package realtime

import (
	"context"

	"github.com/google/uuid"
	"github.com/ngabo-dev/salon-backend/pkg/salon"
)

// Topics published for asset lifecycle events.
const (
	TopicAssetCreated = "asset:created"
	TopicAssetUpdated = "asset:updated"
	TopicAssetDeleted = "asset:deleted"
)

// Sink adapts a Hub to the salon.EventSink interface. The coordinator only
// fires sink events after the corresponding metadata commit, so anything an
// observer sees here is already durable.
type Sink struct {
	hub *Hub
}

var _ salon.EventSink = (*Sink)(nil)

// NewSink creates an event sink publishing through the given hub.
func NewSink(hub *Hub) *Sink {
	return &Sink{hub: hub}
}

func (s *Sink) AssetCreated(ctx context.Context, asset *salon.Asset) error {
	s.hub.Publish(TopicAssetCreated, asset)
	return nil
}

func (s *Sink) AssetUpdated(ctx context.Context, asset *salon.Asset) error {
	s.hub.Publish(TopicAssetUpdated, asset)
	return nil
}

func (s *Sink) AssetDeleted(ctx context.Context, id uuid.UUID) error {
	s.hub.Publish(TopicAssetDeleted, id.String())
	return nil
}
