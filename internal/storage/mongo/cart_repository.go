package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// cartRepository — реализация CartRepository поверх MongoDB.
// Корзина — один документ на пользователя; каждое сохранение — одна
// атомарная запись документа.
type cartRepository struct {
	collection *mongo.Collection
}

// NewCartRepository возвращает репозиторий корзин поверх MongoDB.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepository{
		collection: store.Database().Collection(cartsCollection),
	}
}

// Get возвращает корзину пользователя или ErrCartNotFound.
func (r *cartRepository) Get(ctx context.Context, userID string) (domain.Cart, error) {
	var cart domain.Cart
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Cart{}, domain.ErrCartNotFound
		}
		return domain.Cart{}, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// Upsert сохраняет корзину, создавая документ при первом обращении.
func (r *cartRepository) Upsert(ctx context.Context, cart domain.Cart) error {
	now := time.Now().UTC()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	filter := bson.M{"user_id": cart.UserID}
	update := bson.M{"$set": cart}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}
	return nil
}

// Delete удаляет корзину пользователя; отсутствие — не ошибка.
func (r *cartRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

var _ domain.CartRepository = (*cartRepository)(nil)
