package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/outbox"
	"github.com/vladislavdragonenkov/storefront/internal/service/rating"
	"github.com/vladislavdragonenkov/storefront/internal/service/stock"
	"github.com/vladislavdragonenkov/storefront/internal/service/tracker"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

// Config описывает настройки запуска приложения.
type Config struct {
	MetricsAddr          string
	MongoURI             string
	MongoDatabase        string
	KafkaBrokers         string
	LowStockThreshold    int64
	LowStockSweepEvery   time.Duration
	OutboxBacklogWarning int
}

// DefaultConfig возвращает базовые настройки.
func DefaultConfig() Config {
	return Config{
		MetricsAddr:          ":9090",
		MongoDatabase:        "storefront",
		LowStockThreshold:    tracker.DefaultLowStockThreshold,
		LowStockSweepEvery:   5 * time.Minute,
		OutboxBacklogWarning: 1000,
	}
}

// Services — собранный набор доменных сервисов приложения.
type Services struct {
	Catalog *catalog.Service
	Stock   *stock.Ledger
	Tracker *tracker.Tracker
	Cart    *cart.Service
	Rating  *rating.Service
}

// NewServices собирает доменные сервисы поверх хранилищ.
func NewServices(deps *Dependencies, logger *log.Entry) *Services {
	return &Services{
		Catalog: catalog.NewService(deps.Products, deps.Outbox, logger.WithField("component", "catalog")),
		Stock:   stock.NewLedger(deps.Products, deps.Items, deps.Outbox, logger.WithField("component", "stock-ledger")),
		Tracker: tracker.NewTracker(deps.Products, deps.Items, deps.Outbox, logger.WithField("component", "limited-tracker")),
		Cart:    cart.NewService(deps.Carts, deps.Products, logger.WithField("component", "cart")),
		Rating:  rating.NewService(deps.Products, deps.Outbox, logger.WithField("component", "rating")),
	}
}

// Run запускает приложение: хранилища, доменные сервисы, outbox worker и
// HTTP-сервер метрик и health checks. Блокируется до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	logger.Info(version.String())

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		deps.Close(closeCtx)
	}()

	kafkaProducer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(kafkaProducer, logger)

	services := NewServices(deps, logger)

	// Outbox worker публикует события только при настроенном Kafka:
	// без брокера записи копятся в outbox и будут отправлены позже.
	// Паблишер разводит события по topic'ам: каталожные отдельно от складских.
	workerDone := make(chan struct{})
	if kafkaProducer != nil {
		publisher := kafka.NewRoutingOutboxPublisher(kafkaProducer)
		dlqPublisher := kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicDeadLetterQueue)
		worker := outbox.NewWorker(
			deps.Outbox,
			publisher,
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
			outbox.WithDLQPublisher(dlqPublisher),
		)
		go func() {
			defer close(workerDone)
			worker.Run(ctx)
		}()
	} else {
		close(workerDone)
		logger.Info("kafka is not configured, outbox worker is disabled")
	}

	healthHandler := healthcheck.NewHandler(version.String())
	if deps.Store != nil {
		healthHandler.RegisterChecker("mongo", healthcheck.NewSimpleChecker("mongo", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			return deps.Store.Ping(pingCtx)
		}))
	}
	healthHandler.RegisterChecker("outbox", healthcheck.NewBacklogChecker("outbox", cfg.OutboxBacklogWarning, func() (int, error) {
		stats, err := deps.Outbox.Stats()
		if err != nil {
			return 0, err
		}
		return stats.PendingCount, nil
	}))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	go runLowStockSweep(ctx, services.Tracker, cfg, logger)

	<-ctx.Done()
	logger.Info("получен сигнал остановки, останавливаем сервис")

	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		logger.Warn("outbox worker не остановился за таймаут")
	}
	shutdownHTTP(metricsSrv, logger)

	return ctx.Err()
}

// runLowStockSweep периодически строит отчёт о товарах с низким остатком
// без записи в трекере и пишет его в лог для операторов.
func runLowStockSweep(ctx context.Context, t *tracker.Tracker, cfg Config, logger *log.Entry) {
	if cfg.LowStockSweepEvery <= 0 {
		return
	}

	ticker := time.NewTicker(cfg.LowStockSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		report, err := t.ListImplicitLowStock(ctx, cfg.LowStockThreshold)
		if err != nil {
			logger.WithError(err).Warn("low stock sweep failed")
			continue
		}
		if len(report.LowStock) == 0 && len(report.OutOfStock) == 0 {
			continue
		}
		logger.WithFields(log.Fields{
			"low_stock":    len(report.LowStock),
			"out_of_stock": len(report.OutOfStock),
		}).Warn("untracked products with low stock detected")
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
