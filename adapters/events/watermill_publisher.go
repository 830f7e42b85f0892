package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/openclave/sigil/ports"
)

// LoginGrantedEvent is emitted after a wallet proves key control and asset
// ownership and a token is issued.
type LoginGrantedEvent struct {
	Address   string `json:"address"`
	AssetID   uint64 `json:"asset_id"`
	GrantedAt int64  `json:"granted_at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     "sigil.login_granted",
	}
}

// PublishLoginGranted publishes a login-granted event
func (p *WatermillPublisher) PublishLoginGranted(ctx context.Context, address string, assetID uint64) error {
	event := LoginGrantedEvent{
		Address:   address,
		AssetID:   assetID,
		GrantedAt: time.Now().Unix(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
