package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/app"
)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

// readConfig формирует конфигурацию приложения, позволяя переопределить
// настройки через переменные окружения.
func readConfig() app.Config {
	cfg := app.DefaultConfig()
	if v := os.Getenv("STOREFRONT_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("STOREFRONT_MONGO_URI"); v != "" {
		cfg.MongoURI = v
	}
	if v := os.Getenv("STOREFRONT_MONGO_DB"); v != "" {
		cfg.MongoDatabase = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = v
	}
	if v := os.Getenv("STOREFRONT_LOW_STOCK_THRESHOLD"); v != "" {
		if threshold, err := strconv.ParseInt(v, 10, 64); err == nil && threshold > 0 {
			cfg.LowStockThreshold = threshold
		} else {
			log.WithField("value", v).Warn("невалидный STOREFRONT_LOW_STOCK_THRESHOLD, используем значение по умолчанию")
		}
	}
	if v := os.Getenv("STOREFRONT_LOW_STOCK_SWEEP"); v != "" {
		if every, err := time.ParseDuration(v); err == nil {
			cfg.LowStockSweepEvery = every
		} else {
			log.WithField("value", v).Warn("невалидный STOREFRONT_LOW_STOCK_SWEEP, используем значение по умолчанию")
		}
	}
	return cfg
}

func main() {
	setupLogger()
	cfg := readConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"metrics_addr": cfg.MetricsAddr,
		"mongo_db":     cfg.MongoDatabase,
	}).Info("запускаем StorefrontService")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("StorefrontService остановлен")
}
