package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// События склада
	EventTypeStockSold      EventType = "stock.sold"
	EventTypeStockRestocked EventType = "stock.restocked"

	// События трекера limited items
	EventTypeTrackingAdded   EventType = "tracking.added"
	EventTypeTrackingRemoved EventType = "tracking.removed"

	// События каталога
	EventTypeProductCreated EventType = "product.created"
	EventTypeProductDeleted EventType = "product.deleted"

	// События отзывов
	EventTypeReviewAdded EventType = "review.added"
)

// Topics для Kafka
const (
	TopicInventoryEvents = "storefront.inventory.events"
	TopicCatalogEvents   = "storefront.catalog.events"
	TopicDeadLetterQueue = "storefront.dlq" // Dead Letter Queue для failed messages
)

// InventoryEvent представляет событие вокруг остатка/трекинга товара
type InventoryEvent struct {
	EventType EventType              `json:"event_type"`
	ProductID string                 `json:"product_id"`
	Stock     int64                  `json:"stock"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewInventoryEvent создает новое событие склада
func NewInventoryEvent(eventType EventType, productID string, stock int64, metadata map[string]interface{}) *InventoryEvent {
	return &InventoryEvent{
		EventType: eventType,
		ProductID: productID,
		Stock:     stock,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}
