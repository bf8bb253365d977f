package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/events"
)

// DefaultLowStockThreshold — порог «низкого остатка», при котором товар
// попадает в производный отчёт, если не взят на контроль вручную.
const DefaultLowStockThreshold = 5

// Tracker ведёт записи о товарах с низким или нулевым остатком.
// Инвариант: не более одной записи на товар.
type Tracker struct {
	products domain.ProductRepository
	items    domain.LimitedItemRepository
	emitter  *events.Emitter
	logger   *log.Entry
	metrics  *metrics.InventoryMetrics
}

// NewTracker создаёт рабочий экземпляр трекера.
func NewTracker(
	products domain.ProductRepository,
	items domain.LimitedItemRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Tracker {
	if logger == nil {
		logger = log.New().WithField("component", "limited-tracker")
	}
	return &Tracker{
		products: products,
		items:    items,
		emitter:  events.NewEmitter(outbox, logger),
		logger:   logger,
		metrics:  metrics.NewInventoryMetrics(),
	}
}

// NewTrackerWithoutMetrics создаёт трекер без метрик (для тестов).
func NewTrackerWithoutMetrics(
	products domain.ProductRepository,
	items domain.LimitedItemRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Tracker {
	tracker := NewTracker(products, items, outbox, logger)
	tracker.metrics = nil
	return tracker
}

// Track берёт товар на контроль. Возвращает ErrDuplicateTracking, если
// запись для товара уже существует, и ErrProductNotFound, если товара нет.
func (t *Tracker) Track(ctx context.Context, productID string) (domain.TrackedItem, error) {
	start := time.Now()
	defer t.observe("track", start)

	product, err := t.products.Get(ctx, productID)
	if err != nil {
		return domain.TrackedItem{}, err
	}

	item := domain.LimitedItem{
		ID:        uuid.NewString(),
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}
	if err := t.items.Create(ctx, item); err != nil {
		return domain.TrackedItem{}, err
	}

	if t.metrics != nil {
		t.metrics.RecordTrackingAdded()
	}
	t.emit(productID, kafka.EventTypeTrackingAdded, map[string]interface{}{
		"tracking_id": item.ID,
		"stock":       product.Stock,
	})

	return domain.TrackedItem{Item: item, Product: product}, nil
}

// Untrack снимает запись с контроля по её идентификатору. Остаток товара
// не меняется. Отсутствующая запись — ошибка, в отличие от удаления
// позиции корзины.
func (t *Tracker) Untrack(ctx context.Context, trackingID string) error {
	start := time.Now()
	defer t.observe("untrack", start)

	item, err := t.items.Get(ctx, trackingID)
	if err != nil {
		return err
	}
	if err := t.items.Delete(ctx, trackingID); err != nil {
		return err
	}

	if t.metrics != nil {
		t.metrics.RecordTrackingRemoved()
	}
	t.emit(item.ProductID, kafka.EventTypeTrackingRemoved, map[string]interface{}{
		"tracking_id": trackingID,
		"reason":      "manual",
	})

	return nil
}

// ListTracked возвращает все записи трекера, разделённые на in-stock и
// out-of-stock по актуальному остатку. Записи с положительным остатком —
// переходное состояние (restock прошёл мимо трекера), оно не ошибка.
// Записи удалённых товаров отфильтровываются.
func (t *Tracker) ListTracked(ctx context.Context) (domain.TrackedPartition, error) {
	start := time.Now()
	defer t.observe("list_tracked", start)

	items, err := t.items.List(ctx)
	if err != nil {
		return domain.TrackedPartition{}, err
	}

	partition := domain.TrackedPartition{
		InStock:    make([]domain.TrackedItem, 0),
		OutOfStock: make([]domain.TrackedItem, 0),
	}
	for _, item := range items {
		product, err := t.products.Get(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				// Висячая ссылка: товар удалён, запись игнорируем.
				continue
			}
			return domain.TrackedPartition{}, err
		}
		tracked := domain.TrackedItem{Item: item, Product: product}
		if product.Stock > 0 {
			partition.InStock = append(partition.InStock, tracked)
		} else {
			partition.OutOfStock = append(partition.OutOfStock, tracked)
		}
	}
	return partition, nil
}

// ListImplicitLowStock возвращает товары с низким (0 < stock < threshold)
// и нулевым остатком, не имеющие записи в трекере. Отчёт производный:
// ничего не персистится и дубликат ручной записи не создаётся.
func (t *Tracker) ListImplicitLowStock(ctx context.Context, threshold int64) (domain.LowStockReport, error) {
	start := time.Now()
	defer t.observe("list_implicit_low_stock", start)

	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}

	items, err := t.items.List(ctx)
	if err != nil {
		return domain.LowStockReport{}, err
	}
	trackedProducts := make(map[string]struct{}, len(items))
	for _, item := range items {
		trackedProducts[item.ProductID] = struct{}{}
	}

	products, err := t.products.List(ctx)
	if err != nil {
		return domain.LowStockReport{}, err
	}

	report := domain.LowStockReport{
		LowStock:   make([]domain.Product, 0),
		OutOfStock: make([]domain.Product, 0),
	}
	for _, product := range products {
		if _, tracked := trackedProducts[product.ID]; tracked {
			continue
		}
		switch {
		case product.Stock == 0:
			report.OutOfStock = append(report.OutOfStock, product)
		case product.Stock < threshold:
			report.LowStock = append(report.LowStock, product)
		}
	}
	return report, nil
}

// RestockTracked пополняет остаток товара через его запись в трекере и
// безусловно удаляет запись, если итоговый остаток стал положительным.
// Возвращает снимок товара и флаг удаления записи.
func (t *Tracker) RestockTracked(ctx context.Context, trackingID string, added int64) (domain.Product, bool, error) {
	start := time.Now()
	defer t.observe("restock_tracked", start)

	if added < 0 {
		return domain.Product{}, false, domain.ErrInvalidQuantity
	}

	item, err := t.items.Get(ctx, trackingID)
	if err != nil {
		return domain.Product{}, false, err
	}

	product, err := t.products.IncrementStock(ctx, item.ProductID, added)
	if err != nil {
		return domain.Product{}, false, err
	}

	if t.metrics != nil {
		if added > 0 {
			t.metrics.RecordUnitsRestocked(added)
		}
		t.metrics.RecordStockLevel(product.ID, product.Stock)
	}
	t.emit(product.ID, kafka.EventTypeStockRestocked, map[string]interface{}{
		"added":       added,
		"stock":       product.Stock,
		"tracking_id": trackingID,
	})

	removed := false
	if product.Stock > 0 {
		if err := t.items.Delete(ctx, trackingID); err != nil {
			if !errors.Is(err, domain.ErrTrackingNotFound) {
				t.logger.WithError(err).WithField("tracking_id", trackingID).Warn("failed to remove limited item after restock")
			}
			return product, false, nil
		}
		removed = true
		if t.metrics != nil {
			t.metrics.RecordTrackingRemoved()
		}
		t.emit(product.ID, kafka.EventTypeTrackingRemoved, map[string]interface{}{
			"tracking_id": trackingID,
			"stock":       product.Stock,
			"reason":      "restock",
		})
	}

	return product, removed, nil
}

func (t *Tracker) observe(operation string, start time.Time) {
	if t.metrics != nil {
		t.metrics.RecordOperationDuration(operation, time.Since(start))
	}
}

func (t *Tracker) emit(productID string, eventType kafka.EventType, payload map[string]interface{}) {
	if t.emitter.Emit(productID, eventType, payload) && t.metrics != nil {
		t.metrics.RecordOutboxEvent()
	}
}
