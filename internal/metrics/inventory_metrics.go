package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InventoryMetrics содержит метрики для операций склада и трекера.
type InventoryMetrics struct {
	// Счётчики операций
	unitsSold       prometheus.Counter
	sellsRejected   prometheus.Counter
	unitsRestocked  prometheus.Counter
	trackingAdded   prometheus.Counter
	trackingRemoved prometheus.Counter
	reviewsAdded    prometheus.Counter
	likesRecorded   prometheus.Counter

	// Гистограмма времени выполнения операций
	opDuration *prometheus.HistogramVec

	// Счётчик событий outbox
	outboxEvents prometheus.Counter

	// Gauge для текущего количества записей трекера
	trackedItems prometheus.Gauge

	// Gauge текущего остатка по товарам
	stockLevel *prometheus.GaugeVec
}

// NewInventoryMetrics создаёт новый экземпляр метрик склада.
func NewInventoryMetrics() *InventoryMetrics {
	return newInventoryMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newInventoryMetricsWithRegisterer(registerer prometheus.Registerer) *InventoryMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &InventoryMetrics{
		unitsSold: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_units_sold_total",
			Help: "Total number of units sold",
		}),
		sellsRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_sells_rejected_total",
			Help: "Total number of sell operations rejected due to insufficient stock",
		}),
		unitsRestocked: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_units_restocked_total",
			Help: "Total number of units restocked",
		}),
		trackingAdded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_tracking_added_total",
			Help: "Total number of limited item records created",
		}),
		trackingRemoved: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_tracking_removed_total",
			Help: "Total number of limited item records removed",
		}),
		reviewsAdded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_reviews_added_total",
			Help: "Total number of product reviews submitted",
		}),
		likesRecorded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_likes_recorded_total",
			Help: "Total number of product likes recorded",
		}),
		opDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "storefront_operation_duration_seconds",
			Help:    "Duration of storefront core operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_outbox_events_total",
			Help: "Total number of outbox events enqueued",
		}),
		trackedItems: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_tracked_items",
			Help: "Current number of limited item records",
		}),
		stockLevel: registerGaugeVec(registerer, prometheus.GaugeOpts{
			Name: "storefront_stock_level",
			Help: "Current stock level per product",
		}, []string{"product_id"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerGaugeVec(registerer prometheus.Registerer, opts prometheus.GaugeOpts, labels []string) *prometheus.GaugeVec {
	collector := prometheus.NewGaugeVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.GaugeVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordUnitsSold увеличивает счётчик проданных единиц.
func (m *InventoryMetrics) RecordUnitsSold(qty int64) {
	m.unitsSold.Add(float64(qty))
}

// RecordSellRejected увеличивает счётчик отклонённых продаж.
func (m *InventoryMetrics) RecordSellRejected() {
	m.sellsRejected.Inc()
}

// RecordUnitsRestocked увеличивает счётчик пополненных единиц.
func (m *InventoryMetrics) RecordUnitsRestocked(qty int64) {
	m.unitsRestocked.Add(float64(qty))
}

// RecordTrackingAdded увеличивает счётчик созданных записей трекера.
func (m *InventoryMetrics) RecordTrackingAdded() {
	m.trackingAdded.Inc()
	m.trackedItems.Inc()
}

// RecordTrackingRemoved увеличивает счётчик удалённых записей трекера.
func (m *InventoryMetrics) RecordTrackingRemoved() {
	m.trackingRemoved.Inc()
	m.trackedItems.Dec()
}

// RecordReviewAdded увеличивает счётчик отзывов.
func (m *InventoryMetrics) RecordReviewAdded() {
	m.reviewsAdded.Inc()
}

// RecordLike увеличивает счётчик лайков.
func (m *InventoryMetrics) RecordLike() {
	m.likesRecorded.Inc()
}

// RecordStockLevel выставляет gauge остатка товара после операции склада.
func (m *InventoryMetrics) RecordStockLevel(productID string, stock int64) {
	m.stockLevel.WithLabelValues(productID).Set(float64(stock))
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *InventoryMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}

// RecordOperationDuration записывает время выполнения операции.
func (m *InventoryMetrics) RecordOperationDuration(operation string, duration time.Duration) {
	m.opDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
