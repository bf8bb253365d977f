package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// outboxEnvelope — обёртка, в которой outbox-сообщение уходит в Kafka.
type outboxEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

func buildEnvelope(event domain.OutboxMessage) outboxEnvelope {
	return outboxEnvelope{
		ID:            event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       json.RawMessage(event.Payload),
		PublishedAt:   time.Now().UTC(),
	}
}

func envelopeKey(event domain.OutboxMessage) string {
	if event.AggregateID != "" {
		return event.AggregateID
	}
	return event.ID
}

// topicForEvent выбирает topic по типу события: каталожные события идут
// отдельным потоком от складских и трекерных.
func topicForEvent(eventType string) string {
	switch EventType(eventType) {
	case EventTypeProductCreated, EventTypeProductDeleted, EventTypeReviewAdded:
		return TopicCatalogEvents
	default:
		return TopicInventoryEvents
	}
}

// OutboxTopicPublisher публикует outbox-сообщения в заданный Kafka topic.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
}

// NewOutboxPublisher создаёт Kafka-паблишер для transactional outbox.
func NewOutboxPublisher(producer *Producer, topic string) domain.OutboxPublisher {
	if topic == "" {
		topic = TopicInventoryEvents
	}
	return &OutboxTopicPublisher{
		producer: producer,
		topic:    topic,
	}
}

func (p *OutboxTopicPublisher) Publish(event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not initialized")
	}
	return p.producer.PublishEvent(p.topic, envelopeKey(event), buildEnvelope(event))
}

// RoutingOutboxPublisher публикует outbox-сообщения, выбирая topic по типу
// события: product.* и review.* уходят в catalog topic, остальное — в
// inventory topic.
type RoutingOutboxPublisher struct {
	producer *Producer
}

// NewRoutingOutboxPublisher создаёт паблишер с маршрутизацией по типу события.
func NewRoutingOutboxPublisher(producer *Producer) domain.OutboxPublisher {
	return &RoutingOutboxPublisher{producer: producer}
}

func (p *RoutingOutboxPublisher) Publish(event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not initialized")
	}
	return p.producer.PublishEvent(topicForEvent(event.EventType), envelopeKey(event), buildEnvelope(event))
}

var (
	_ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
	_ domain.OutboxPublisher = (*RoutingOutboxPublisher)(nil)
)
