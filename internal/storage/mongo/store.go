package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultConnTimeout      = 10 * time.Second
	defaultSelectionTimeout = 5 * time.Second
	defaultMaxPoolSize      = 100
	defaultMinPoolSize      = 10
)

const (
	productsCollection     = "products"
	limitedItemsCollection = "limited_items"
	cartsCollection        = "carts"
	outboxCollection       = "outbox"
)

// Store оборачивает подключение к MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open открывает подключение к MongoDB и проверяет доступность базы.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(defaultConnTimeout).
		SetServerSelectionTimeout(defaultSelectionTimeout).
		SetMaxPoolSize(defaultMaxPoolSize).
		SetMinPoolSize(defaultMinPoolSize)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultSelectionTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(database)}, nil
}

// Database возвращает raw handle, когда нужен низкоуровневый доступ.
func (s *Store) Database() *mongo.Database {
	return s.db
}

// Ping проверяет доступность подключения.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("mongo store is not initialized")
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultSelectionTimeout)
	defer cancel()
	return s.client.Ping(pingCtx, nil)
}

// EnsureIndexes создаёт индексы, на которые опираются инварианты хранилища:
// уникальность записи трекера на товар и уникальность корзины на пользователя.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	limitedIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "product_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := s.db.Collection(limitedItemsCollection).Indexes().CreateMany(ctx, limitedIndexes); err != nil {
		return fmt.Errorf("create limited_items indexes: %w", err)
	}

	cartIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := s.db.Collection(cartsCollection).Indexes().CreateMany(ctx, cartIndexes); err != nil {
		return fmt.Errorf("create carts indexes: %w", err)
	}

	outboxIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	}
	if _, err := s.db.Collection(outboxCollection).Indexes().CreateMany(ctx, outboxIndexes); err != nil {
		return fmt.Errorf("create outbox indexes: %w", err)
	}

	return nil
}

// Close закрывает подключение к БД.
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
