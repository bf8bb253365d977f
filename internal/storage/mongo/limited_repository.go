package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// limitedItemRepository — реализация LimitedItemRepository поверх MongoDB.
// Инвариант «одна запись на товар» держится на pre-insert проверке и
// уникальном индексе product_id как страховке от гонки между проверкой
// и вставкой.
type limitedItemRepository struct {
	collection *mongo.Collection
}

// NewLimitedItemRepository возвращает репозиторий записей трекера поверх MongoDB.
func NewLimitedItemRepository(store *Store) domain.LimitedItemRepository {
	return &limitedItemRepository{
		collection: store.Database().Collection(limitedItemsCollection),
	}
}

// Create сохраняет запись, отклоняя дубликат по товару.
func (r *limitedItemRepository) Create(ctx context.Context, item domain.LimitedItem) error {
	err := r.collection.FindOne(ctx, bson.M{"product_id": item.ProductID}).Err()
	if err == nil {
		return domain.ErrDuplicateTracking
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("check existing limited item: %w", err)
	}

	if _, err := r.collection.InsertOne(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateTracking
		}
		return fmt.Errorf("insert limited item: %w", err)
	}
	return nil
}

// Get возвращает запись по идентификатору или ErrTrackingNotFound.
func (r *limitedItemRepository) Get(ctx context.Context, id string) (domain.LimitedItem, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByProduct возвращает запись по товару или ErrTrackingNotFound.
func (r *limitedItemRepository) GetByProduct(ctx context.Context, productID string) (domain.LimitedItem, error) {
	return r.findOne(ctx, bson.M{"product_id": productID})
}

// List возвращает все записи, старые первыми.
func (r *limitedItemRepository) List(ctx context.Context) ([]domain.LimitedItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find limited items: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	items := make([]domain.LimitedItem, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode limited items: %w", err)
	}
	return items, nil
}

// Delete удаляет запись по идентификатору.
func (r *limitedItemRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete limited item: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrTrackingNotFound
	}
	return nil
}

// DeleteByProduct удаляет запись по товару; сообщает, была ли она.
func (r *limitedItemRepository) DeleteByProduct(ctx context.Context, productID string) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"product_id": productID})
	if err != nil {
		return false, fmt.Errorf("delete limited item by product: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (r *limitedItemRepository) findOne(ctx context.Context, filter bson.M) (domain.LimitedItem, error) {
	var item domain.LimitedItem
	err := r.collection.FindOne(ctx, filter).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.LimitedItem{}, domain.ErrTrackingNotFound
		}
		return domain.LimitedItem{}, fmt.Errorf("get limited item: %w", err)
	}
	return item, nil
}

var _ domain.LimitedItemRepository = (*limitedItemRepository)(nil)
