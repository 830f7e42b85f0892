package ports

import "context"

// EventPublisher publishes events to notify other instances
type EventPublisher interface {
	PublishLoginGranted(ctx context.Context, address string, assetID uint64) error
}
