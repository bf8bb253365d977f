package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	mongostore "github.com/vladislavdragonenkov/storefront/internal/storage/mongo"
)

// Dependencies содержит хранилища приложения. Если MongoURI задан,
// используются mongo-репозитории, иначе — in-memory (dev/test режим).
type Dependencies struct {
	Products domain.ProductRepository
	Items    domain.LimitedItemRepository
	Carts    domain.CartRepository
	Outbox   domain.OutboxRepository
	Store    *mongostore.Store
	Logger   *log.Entry
}

// NewDependencies создаёт и инициализирует хранилища приложения.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	if cfg.MongoURI == "" {
		logger.Info("mongo uri is empty, using in-memory storage")
		return &Dependencies{
			Products: memory.NewProductRepository(),
			Items:    memory.NewLimitedItemRepository(),
			Carts:    memory.NewCartRepository(),
			Outbox:   memory.NewOutboxRepository(),
			Logger:   logger,
		}, nil
	}

	store, err := mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, fmt.Errorf("open mongo store: %w", err)
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("ensure mongo indexes: %w", err)
	}

	logger.WithField("database", cfg.MongoDatabase).Info("mongo storage initialized")
	return &Dependencies{
		Products: mongostore.NewProductRepository(store),
		Items:    mongostore.NewLimitedItemRepository(store),
		Carts:    mongostore.NewCartRepository(store),
		Outbox:   mongostore.NewOutboxRepository(store),
		Store:    store,
		Logger:   logger,
	}, nil
}

// Close освобождает ресурсы хранилищ.
func (d *Dependencies) Close(ctx context.Context) {
	if d == nil || d.Store == nil {
		return
	}
	if err := d.Store.Close(ctx); err != nil {
		d.Logger.WithError(err).Warn("failed to close mongo store")
	}
}
