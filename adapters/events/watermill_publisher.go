package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/layer-3/tokenizer/ports"
)

// TopicTokenIssued is the topic every issuance event is published on
const TopicTokenIssued = "tokenizer.issued"

// TokenIssuedEvent describes an issued token without carrying the token itself
type TokenIssuedEvent struct {
	Subject   string          `json:"subject"`
	Kind      ports.TokenKind `json:"kind"`
	IssuedAt  int64           `json:"issued_at"`
	ExpiresAt int64           `json:"expires_at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     TopicTokenIssued,
	}
}

// PublishIssued publishes a token issuance event
func (p *WatermillPublisher) PublishIssued(ctx context.Context, subject string, kind ports.TokenKind, issuedAt, expiresAt time.Time) error {
	event := TokenIssuedEvent{
		Subject:   subject,
		Kind:      kind,
		IssuedAt:  issuedAt.Unix(),
		ExpiresAt: expiresAt.Unix(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
