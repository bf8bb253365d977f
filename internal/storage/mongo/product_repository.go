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

// productRepository — реализация ProductRepository поверх MongoDB.
// Мутации остатка и рейтинга выражены одиночными атомарными обновлениями
// документа, поэтому отдельной блокировки не требуется.
type productRepository struct {
	collection *mongo.Collection
}

// NewProductRepository возвращает репозиторий товаров поверх MongoDB.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{
		collection: store.Database().Collection(productsCollection),
	}
}

// Create сохраняет новый товар.
func (r *productRepository) Create(ctx context.Context, product domain.Product) error {
	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrProductExists
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Get возвращает товар по идентификатору или ErrProductNotFound.
func (r *productRepository) Get(ctx context.Context, id string) (domain.Product, error) {
	var product domain.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// List возвращает все товары, новые первыми.
func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{}, opts)
}

// Filter возвращает товары, удовлетворяющие критериям выборки.
func (r *productRepository) Filter(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	query := bson.M{}
	if len(filter.Categories) > 0 {
		query["category"] = bson.M{"$in": filter.Categories}
	}
	if len(filter.SubCategories) > 0 {
		query["sub_category"] = bson.M{"$in": filter.SubCategories}
	}
	if len(filter.AgeGroups) > 0 {
		query["age_group"] = bson.M{"$in": filter.AgeGroups}
	}
	if filter.MinPriceMinor > 0 || filter.MaxPriceMinor > 0 {
		price := bson.M{}
		if filter.MinPriceMinor > 0 {
			price["$gte"] = filter.MinPriceMinor
		}
		if filter.MaxPriceMinor > 0 {
			price["$lte"] = filter.MaxPriceMinor
		}
		query["price_minor"] = price
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, query, opts)
}

// TopByLikes возвращает до limit товаров по убыванию лайков.
func (r *productRepository) TopByLikes(ctx context.Context, limit int) ([]domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "likes", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{}, opts)
}

// ListRelated возвращает до limit товаров той же подкатегории, новые первыми.
func (r *productRepository) ListRelated(ctx context.Context, subCategory, excludeID string, limit int) ([]domain.Product, error) {
	query := bson.M{
		"sub_category": subCategory,
		"_id":          bson.M{"$ne": excludeID},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	return r.find(ctx, query, opts)
}

// Save перезаписывает товар целиком.
func (r *productRepository) Save(ctx context.Context, product domain.Product) error {
	product.UpdatedAt = time.Now().UTC()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// Delete удаляет товар по идентификатору.
func (r *productRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// DecrementStock списывает qty единиц одной условной записью: фильтр
// stock >= qty и $inc выполняются в одном обращении, поэтому два
// конкурентных списания не могут увести остаток в минус.
func (r *productRepository) DecrementStock(ctx context.Context, id string, qty int64) (domain.Product, error) {
	filter := bson.M{
		"_id":   id,
		"stock": bson.M{"$gte": qty},
	}
	update := bson.M{
		"$inc": bson.M{"stock": -qty},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	product, err := r.findOneAndUpdate(ctx, filter, update)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, domain.ErrProductNotFound) {
		return domain.Product{}, err
	}

	// Фильтр не совпал: либо товара нет, либо остатка не хватает.
	if _, getErr := r.Get(ctx, id); getErr != nil {
		return domain.Product{}, getErr
	}
	return domain.Product{}, domain.ErrInsufficientStock
}

// IncrementStock увеличивает остаток на qty и возвращает снимок.
func (r *productRepository) IncrementStock(ctx context.Context, id string, qty int64) (domain.Product, error) {
	update := bson.M{
		"$inc": bson.M{"stock": qty},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, update)
}

// IncrementLikes увеличивает счётчик лайков на единицу.
func (r *productRepository) IncrementLikes(ctx context.Context, id string) (domain.Product, error) {
	update := bson.M{
		"$inc": bson.M{"likes": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, update)
}

// SetRating выставляет агрегированную оценку товара.
func (r *productRepository) SetRating(ctx context.Context, id string, rating float64) (domain.Product, error) {
	update := bson.M{
		"$set": bson.M{
			"rating":     rating,
			"updated_at": time.Now().UTC(),
		},
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, update)
}

// AppendReview добавляет отзыв и выставляет новую оценку одним обновлением.
func (r *productRepository) AppendReview(ctx context.Context, id string, review domain.Review, rating float64) (domain.Product, error) {
	update := bson.M{
		"$push": bson.M{"reviews": review},
		"$set": bson.M{
			"rating":     rating,
			"updated_at": time.Now().UTC(),
		},
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, update)
}

func (r *productRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (domain.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product domain.Product
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

func (r *productRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]domain.Product, error) {
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	products := make([]domain.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
