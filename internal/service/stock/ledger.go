package stock

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/events"
)

// Ledger владеет авторитетным остатком товара и выполняет продажи и
// пополнения. Списание выражено одной условной записью хранилища, поэтому
// конкурентные продажи не могут увести остаток ниже нуля.
type Ledger struct {
	products domain.ProductRepository
	tracked  domain.LimitedItemRepository
	emitter  *events.Emitter
	logger   *log.Entry
	metrics  *metrics.InventoryMetrics
}

// NewLedger создаёт рабочий экземпляр склада.
func NewLedger(
	products domain.ProductRepository,
	tracked domain.LimitedItemRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Ledger {
	if logger == nil {
		logger = log.New().WithField("component", "stock-ledger")
	}
	return &Ledger{
		products: products,
		tracked:  tracked,
		emitter:  events.NewEmitter(outbox, logger),
		logger:   logger,
		metrics:  metrics.NewInventoryMetrics(),
	}
}

// NewLedgerWithoutMetrics создаёт склад без метрик (для тестов).
func NewLedgerWithoutMetrics(
	products domain.ProductRepository,
	tracked domain.LimitedItemRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Ledger {
	ledger := NewLedger(products, tracked, outbox, logger)
	ledger.metrics = nil
	return ledger
}

// Sell списывает quantity единиц товара. Продажа нуля единиц — no-op,
// возвращающий неизменённый снимок. Если остатка не хватает, возвращается
// ErrInsufficientStock и остаток не меняется.
func (l *Ledger) Sell(ctx context.Context, productID string, quantity int64) (domain.Product, error) {
	start := time.Now()
	defer l.observe("sell", start)

	if quantity < 0 {
		return domain.Product{}, domain.ErrInvalidQuantity
	}
	if quantity == 0 {
		return l.products.Get(ctx, productID)
	}

	product, err := l.products.DecrementStock(ctx, productID, quantity)
	if err != nil {
		if domain.IsInsufficientStock(err) {
			if l.metrics != nil {
				l.metrics.RecordSellRejected()
			}
			l.logger.WithFields(log.Fields{
				"product_id": productID,
				"quantity":   quantity,
			}).Warn("sell rejected: not enough stock")
		}
		return domain.Product{}, err
	}

	if l.metrics != nil {
		l.metrics.RecordUnitsSold(quantity)
		l.metrics.RecordStockLevel(product.ID, product.Stock)
	}
	l.emit(kafka.NewInventoryEvent(kafka.EventTypeStockSold, product.ID, product.Stock, map[string]interface{}{
		"quantity": quantity,
	}))

	return product, nil
}

// Restock увеличивает остаток на added единиц и возвращает снимок вместе с
// флагом removedFromTracking: любое пополнение, давшее положительный
// остаток, безусловно снимает товар с ручного трекинга. Запись товара
// происходит первой; потерянное удаление записи трекера остаётся видимым
// читателям трекера и не теряется.
func (l *Ledger) Restock(ctx context.Context, productID string, added int64) (domain.Product, bool, error) {
	start := time.Now()
	defer l.observe("restock", start)

	if added < 0 {
		return domain.Product{}, false, domain.ErrInvalidQuantity
	}
	if added == 0 {
		product, err := l.products.Get(ctx, productID)
		return product, false, err
	}

	product, err := l.products.IncrementStock(ctx, productID, added)
	if err != nil {
		return domain.Product{}, false, err
	}

	if l.metrics != nil {
		l.metrics.RecordUnitsRestocked(added)
		l.metrics.RecordStockLevel(product.ID, product.Stock)
	}
	l.emit(kafka.NewInventoryEvent(kafka.EventTypeStockRestocked, product.ID, product.Stock, map[string]interface{}{
		"added": added,
	}))

	removed := false
	if product.Stock > 0 {
		removed, err = l.tracked.DeleteByProduct(ctx, product.ID)
		if err != nil {
			l.logger.WithError(err).WithField("product_id", product.ID).Warn("failed to remove limited item after restock")
			return product, false, nil
		}
		if removed {
			if l.metrics != nil {
				l.metrics.RecordTrackingRemoved()
			}
			l.emit(kafka.NewInventoryEvent(kafka.EventTypeTrackingRemoved, product.ID, product.Stock, map[string]interface{}{
				"reason": "restock",
			}))
		}
	}

	return product, removed, nil
}

func (l *Ledger) observe(operation string, start time.Time) {
	if l.metrics != nil {
		l.metrics.RecordOperationDuration(operation, time.Since(start))
	}
}

func (l *Ledger) emit(event *kafka.InventoryEvent) {
	if l.emitter.EmitInventory(event) && l.metrics != nil {
		l.metrics.RecordOutboxEvent()
	}
}
