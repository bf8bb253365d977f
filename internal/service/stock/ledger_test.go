package stock_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/service/stock"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: false, DisableTimestamp: true})
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("component", "test")
}

func seedProduct(t *testing.T, repo domain.ProductRepository, id string, stockLevel int64) domain.Product {
	t.Helper()

	now := time.Now().UTC()
	product := domain.Product{
		ID:         id,
		Title:      "Plush Bear",
		PriceMinor: 1500,
		SKU:        "sku-" + id,
		Stock:      stockLevel,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, repo.Create(context.Background(), product))
	return product
}

func seedTracking(t *testing.T, repo domain.LimitedItemRepository, id, productID string) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), domain.LimitedItem{
		ID:        id,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}))
}

func TestLedger_Sell(t *testing.T) {
	products := memory.NewProductRepository()
	items := memory.NewLimitedItemRepository()
	outbox := memory.NewOutboxRepository()
	ledger := stock.NewLedgerWithoutMetrics(products, items, outbox, loggerForTests())

	seedProduct(t, products, "product-1", 10)

	updated, err := ledger.Sell(context.Background(), "product-1", 4)
	require.NoError(t, err)
	require.Equal(t, int64(6), updated.Stock)

	pending, err := outbox.PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "stock.sold", pending[0].EventType)
	require.Equal(t, "product-1", pending[0].AggregateID)

	var event kafka.InventoryEvent
	require.NoError(t, json.Unmarshal(pending[0].Payload, &event))
	require.Equal(t, kafka.EventTypeStockSold, event.EventType)
	require.Equal(t, "product-1", event.ProductID)
	require.Equal(t, int64(6), event.Stock)
	require.Equal(t, float64(4), event.Metadata["quantity"])
}

func TestLedger_SellZeroIsNoop(t *testing.T) {
	products := memory.NewProductRepository()
	outbox := memory.NewOutboxRepository()
	ledger := stock.NewLedgerWithoutMetrics(products, memory.NewLimitedItemRepository(), outbox, loggerForTests())

	seedProduct(t, products, "product-1", 10)

	updated, err := ledger.Sell(context.Background(), "product-1", 0)
	require.NoError(t, err)
	require.Equal(t, int64(10), updated.Stock)

	pending, err := outbox.PullPending(10)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestLedger_SellNegativeQuantity(t *testing.T) {
	products := memory.NewProductRepository()
	ledger := stock.NewLedgerWithoutMetrics(products, memory.NewLimitedItemRepository(), memory.NewOutboxRepository(), loggerForTests())

	seedProduct(t, products, "product-1", 10)

	_, err := ledger.Sell(context.Background(), "product-1", -1)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestLedger_SellInsufficientStock(t *testing.T) {
	products := memory.NewProductRepository()
	ledger := stock.NewLedgerWithoutMetrics(products, memory.NewLimitedItemRepository(), memory.NewOutboxRepository(), loggerForTests())

	seedProduct(t, products, "product-1", 3)

	_, err := ledger.Sell(context.Background(), "product-1", 4)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	stored, err := products.Get(context.Background(), "product-1")
	require.NoError(t, err)
	require.Equal(t, int64(3), stored.Stock)
}

func TestLedger_SellUnknownProduct(t *testing.T) {
	ledger := stock.NewLedgerWithoutMetrics(memory.NewProductRepository(), memory.NewLimitedItemRepository(), memory.NewOutboxRepository(), loggerForTests())

	_, err := ledger.Sell(context.Background(), "missing", 1)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestLedger_ConcurrentSellsNeverOversell(t *testing.T) {
	products := memory.NewProductRepository()
	ledger := stock.NewLedgerWithoutMetrics(products, memory.NewLimitedItemRepository(), memory.NewOutboxRepository(), loggerForTests())

	seedProduct(t, products, "product-1", 10)

	const workers = 25
	var wg sync.WaitGroup
	var mu sync.Mutex
	sold := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Sell(context.Background(), "product-1", 1); err == nil {
				mu.Lock()
				sold++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 10, sold)

	stored, err := products.Get(context.Background(), "product-1")
	require.NoError(t, err)
	require.Equal(t, int64(0), stored.Stock)
}

func TestLedger_RestockRemovesTracking(t *testing.T) {
	products := memory.NewProductRepository()
	items := memory.NewLimitedItemRepository()
	outbox := memory.NewOutboxRepository()
	ledger := stock.NewLedgerWithoutMetrics(products, items, outbox, loggerForTests())

	seedProduct(t, products, "product-1", 0)
	seedTracking(t, items, "item-1", "product-1")

	updated, removed, err := ledger.Restock(context.Background(), "product-1", 5)
	require.NoError(t, err)
	require.True(t, removed)
	require.Equal(t, int64(5), updated.Stock)

	_, err = items.Get(context.Background(), "item-1")
	require.ErrorIs(t, err, domain.ErrTrackingNotFound)

	pending, err := outbox.PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	types := []string{pending[0].EventType, pending[1].EventType}
	require.Contains(t, types, "stock.restocked")
	require.Contains(t, types, "tracking.removed")
}

func TestLedger_RestockWithoutTracking(t *testing.T) {
	products := memory.NewProductRepository()
	ledger := stock.NewLedgerWithoutMetrics(products, memory.NewLimitedItemRepository(), memory.NewOutboxRepository(), loggerForTests())

	seedProduct(t, products, "product-1", 2)

	updated, removed, err := ledger.Restock(context.Background(), "product-1", 3)
	require.NoError(t, err)
	require.False(t, removed)
	require.Equal(t, int64(5), updated.Stock)
}

func TestLedger_RestockZeroIsNoop(t *testing.T) {
	products := memory.NewProductRepository()
	items := memory.NewLimitedItemRepository()
	ledger := stock.NewLedgerWithoutMetrics(products, items, memory.NewOutboxRepository(), loggerForTests())

	seedProduct(t, products, "product-1", 0)
	seedTracking(t, items, "item-1", "product-1")

	updated, removed, err := ledger.Restock(context.Background(), "product-1", 0)
	require.NoError(t, err)
	require.False(t, removed)
	require.Equal(t, int64(0), updated.Stock)

	// Нулевое пополнение не трогает запись трекера.
	_, err = items.Get(context.Background(), "item-1")
	require.NoError(t, err)
}

func TestLedger_RestockNegative(t *testing.T) {
	ledger := stock.NewLedgerWithoutMetrics(memory.NewProductRepository(), memory.NewLimitedItemRepository(), memory.NewOutboxRepository(), loggerForTests())

	_, _, err := ledger.Restock(context.Background(), "product-1", -5)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}
