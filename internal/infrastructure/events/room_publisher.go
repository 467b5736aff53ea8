package events

import (
	"context"
	"encoding/json"

	"github.com/Phantasm0009/search-party/internal/domain"
	"github.com/Phantasm0009/search-party/internal/infrastructure/contracts"
	"github.com/Phantasm0009/search-party/internal/infrastructure/messaging"
)

// RoomPublisher emits room lifecycle events to the broker. A nil publisher
// is valid and publishes nothing, so the broker stays optional.
type RoomPublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewRoomPublisher(rabbitmq *messaging.RabbitMQ) *RoomPublisher {
	return &RoomPublisher{
		rabbitmq: rabbitmq,
	}
}

func (p *RoomPublisher) publish(ctx context.Context, routingKey string, room domain.RoomSummary, participant string) error {
	if p == nil || p.rabbitmq == nil {
		return nil
	}

	payload, err := json.Marshal(messaging.RoomEventData{
		Room:        room,
		Participant: participant,
	})
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, routingKey, contracts.AmqpMessage{
		RoomID: room.ID,
		Data:   payload,
	})
}

func (p *RoomPublisher) PublishRoomCreated(ctx context.Context, room domain.RoomSummary) error {
	return p.publish(ctx, contracts.EventRoomCreated, room, "")
}

func (p *RoomPublisher) PublishMemberJoined(ctx context.Context, room domain.RoomSummary, participantID string) error {
	return p.publish(ctx, contracts.EventMemberJoined, room, participantID)
}

func (p *RoomPublisher) PublishMemberLeft(ctx context.Context, room domain.RoomSummary, participantID string) error {
	return p.publish(ctx, contracts.EventMemberLeft, room, participantID)
}
