package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// outboxDocument — формат хранения outbox-сообщения в MongoDB.
type outboxDocument struct {
	ID            string    `bson:"_id"`
	AggregateType string    `bson:"aggregate_type"`
	AggregateID   string    `bson:"aggregate_id"`
	EventType     string    `bson:"event_type"`
	Payload       []byte    `bson:"payload"`
	Status        string    `bson:"status"`
	AttemptCount  int       `bson:"attempt_count"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

// outboxRepository — реализация OutboxRepository поверх MongoDB.
// Контексты методов фиксированы интерфейсом без ctx (его диктует worker),
// поэтому операции используют короткий внутренний таймаут.
type outboxRepository struct {
	collection *mongo.Collection
}

const outboxOpTimeout = 5 * time.Second

// NewOutboxRepository возвращает реализацию outbox поверх MongoDB.
func NewOutboxRepository(store *Store) domain.OutboxRepository {
	return &outboxRepository{
		collection: store.Database().Collection(outboxCollection),
	}
}

// Enqueue сохраняет событие со статусом `pending`.
func (r *outboxRepository) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), outboxOpTimeout)
	defer cancel()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	doc := outboxDocument{
		ID:            msg.ID,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		EventType:     msg.EventType,
		Payload:       msg.Payload,
		Status:        "pending",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return domain.OutboxMessage{}, fmt.Errorf("enqueue outbox message: %w", err)
	}
	return msg, nil
}

// PullPending возвращает до limit сообщений со статусом `pending`, старые первыми.
func (r *outboxRepository) PullPending(limit int) ([]domain.OutboxMessage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), outboxOpTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{"status": "pending"}, opts)
	if err != nil {
		return nil, fmt.Errorf("find pending outbox messages: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	docs := make([]outboxDocument, 0, limit)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode outbox messages: %w", err)
	}

	result := make([]domain.OutboxMessage, 0, len(docs))
	for _, doc := range docs {
		result = append(result, domain.OutboxMessage{
			ID:            doc.ID,
			AggregateType: doc.AggregateType,
			AggregateID:   doc.AggregateID,
			EventType:     doc.EventType,
			Payload:       doc.Payload,
		})
	}
	return result, nil
}

// Stats возвращает размер и возраст backlog'а.
func (r *outboxRepository) Stats() (domain.OutboxStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), outboxOpTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"status": "pending"})
	if err != nil {
		return domain.OutboxStats{}, fmt.Errorf("count pending outbox messages: %w", err)
	}
	stats := domain.OutboxStats{PendingCount: int(count)}
	if count == 0 {
		return stats, nil
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	var oldest outboxDocument
	err = r.collection.FindOne(ctx, bson.M{"status": "pending"}, opts).Decode(&oldest)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return domain.OutboxStats{}, fmt.Errorf("find oldest pending outbox message: %w", err)
	}
	stats.OldestPendingAt = oldest.CreatedAt
	return stats, nil
}

// MarkSent обновляет статус события после успешной публикации.
func (r *outboxRepository) MarkSent(id string) error {
	return r.setStatus(id, "sent")
}

// MarkFailed фиксирует ошибку публикации.
func (r *outboxRepository) MarkFailed(id string) error {
	return r.setStatus(id, "failed")
}

func (r *outboxRepository) setStatus(id, status string) error {
	ctx, cancel := context.WithTimeout(context.Background(), outboxOpTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC(),
		},
		"$inc": bson.M{"attempt_count": 1},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("mark outbox message %s: %w", status, err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrOutboxPublish
	}
	return nil
}

var _ domain.OutboxRepository = (*outboxRepository)(nil)
