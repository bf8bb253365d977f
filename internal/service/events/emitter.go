package events

import (
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
)

// Emitter кладёт доменные события в transactional outbox. Ошибки постановки
// в очередь логируются и не прерывают основную операцию: событие — побочный
// продукт, а не часть инварианта.
type Emitter struct {
	outbox domain.OutboxRepository
	logger *log.Entry
}

// NewEmitter создаёт emitter. Nil outbox допустим: события молча пропускаются.
func NewEmitter(outbox domain.OutboxRepository, logger *log.Entry) *Emitter {
	if logger == nil {
		logger = log.New().WithField("component", "events")
	}
	return &Emitter{outbox: outbox, logger: logger}
}

// Emit сериализует payload и ставит событие в outbox.
// Возвращает true, если событие было поставлено в очередь.
func (e *Emitter) Emit(aggregateID string, eventType kafka.EventType, payload map[string]interface{}) bool {
	if e == nil || e.outbox == nil {
		return false
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	payload["product_id"] = aggregateID

	data, err := json.Marshal(payload)
	if err != nil {
		e.logger.WithError(err).WithFields(log.Fields{
			"product_id": aggregateID,
			"event":      eventType,
		}).Error("marshal event failed")
		return false
	}

	return e.enqueue(aggregateID, eventType, data)
}

// EmitInventory сериализует типизированное событие остатка/трекинга и ставит
// его в outbox. Идентификатором агрегата служит товар события.
func (e *Emitter) EmitInventory(event *kafka.InventoryEvent) bool {
	if e == nil || e.outbox == nil || event == nil {
		return false
	}

	data, err := json.Marshal(event)
	if err != nil {
		e.logger.WithError(err).WithFields(log.Fields{
			"product_id": event.ProductID,
			"event":      event.EventType,
		}).Error("marshal event failed")
		return false
	}
	return e.enqueue(event.ProductID, event.EventType, data)
}

func (e *Emitter) enqueue(aggregateID string, eventType kafka.EventType, payload []byte) bool {
	msg := domain.OutboxMessage{
		AggregateType: "product",
		AggregateID:   aggregateID,
		EventType:     string(eventType),
		Payload:       payload,
	}
	if _, err := e.outbox.Enqueue(msg); err != nil {
		e.logger.WithError(err).WithFields(log.Fields{
			"product_id": aggregateID,
			"event":      eventType,
		}).Error("enqueue event failed")
		return false
	}
	return true
}
