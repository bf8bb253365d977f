package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// productRepositoryInMemory — простая in-memory реализация ProductRepository.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
	}
}

// cloneProduct копирует товар вместе со слайсом отзывов,
// чтобы избежать непредсказуемых мутаций извне.
func cloneProduct(p domain.Product) domain.Product {
	clone := p
	if p.Reviews != nil {
		clone.Reviews = make([]domain.Review, len(p.Reviews))
		copy(clone.Reviews, p.Reviews)
	}
	return clone
}

// Create сохраняет новый товар, если ID ещё не занят.
func (r *productRepositoryInMemory) Create(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[product.ID]; exists {
		return domain.ErrProductExists
	}
	r.items[product.ID] = cloneProduct(product)
	return nil
}

// Get возвращает товар или ErrProductNotFound, если его нет.
func (r *productRepositoryInMemory) Get(_ context.Context, id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return cloneProduct(product), nil
}

// List возвращает все товары, отсортированные по дате создания (новые первыми).
func (r *productRepositoryInMemory) List(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		result = append(result, cloneProduct(product))
	}
	sortProducts(result)
	return result, nil
}

// Filter возвращает товары, удовлетворяющие критериям выборки.
func (r *productRepositoryInMemory) Filter(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		if !matchesFilter(product, filter) {
			continue
		}
		result = append(result, cloneProduct(product))
	}
	sortProducts(result)
	return result, nil
}

// TopByLikes возвращает до limit товаров по убыванию лайков.
func (r *productRepositoryInMemory) TopByLikes(_ context.Context, limit int) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		result = append(result, cloneProduct(product))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Likes != result[j].Likes {
			return result[i].Likes > result[j].Likes
		}
		return result[i].ID < result[j].ID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ListRelated возвращает до limit товаров той же подкатегории, новые первыми.
func (r *productRepositoryInMemory) ListRelated(_ context.Context, subCategory, excludeID string, limit int) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0)
	for _, product := range r.items {
		if product.ID == excludeID || product.SubCategory != subCategory {
			continue
		}
		result = append(result, cloneProduct(product))
	}
	sortProducts(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Save перезаписывает товар целиком.
func (r *productRepositoryInMemory) Save(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	r.items[product.ID] = cloneProduct(product)
	return nil
}

// Delete удаляет товар по идентификатору.
func (r *productRepositoryInMemory) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.items, id)
	return nil
}

// DecrementStock списывает qty единиц под write-lock: проверка и запись
// выполняются атомарно, остаток не может уйти в минус.
func (r *productRepositoryInMemory) DecrementStock(_ context.Context, id string, qty int64) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if product.Stock < qty {
		return domain.Product{}, domain.ErrInsufficientStock
	}
	product.Stock -= qty
	r.items[id] = product
	return cloneProduct(product), nil
}

// IncrementStock увеличивает остаток на qty и возвращает снимок.
func (r *productRepositoryInMemory) IncrementStock(_ context.Context, id string, qty int64) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	product.Stock += qty
	r.items[id] = product
	return cloneProduct(product), nil
}

// IncrementLikes увеличивает счётчик лайков на единицу.
func (r *productRepositoryInMemory) IncrementLikes(_ context.Context, id string) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	product.Likes++
	r.items[id] = product
	return cloneProduct(product), nil
}

// SetRating выставляет агрегированную оценку товара.
func (r *productRepositoryInMemory) SetRating(_ context.Context, id string, rating float64) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	product.Rating = rating
	r.items[id] = product
	return cloneProduct(product), nil
}

// AppendReview добавляет отзыв и выставляет новую оценку одной операцией.
func (r *productRepositoryInMemory) AppendReview(_ context.Context, id string, review domain.Review, rating float64) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	product = cloneProduct(product)
	product.Reviews = append(product.Reviews, review)
	product.Rating = rating
	r.items[id] = product
	return cloneProduct(product), nil
}

func matchesFilter(p domain.Product, f domain.ProductFilter) bool {
	if len(f.Categories) > 0 && !containsString(f.Categories, p.Category) {
		return false
	}
	if len(f.SubCategories) > 0 && !containsString(f.SubCategories, p.SubCategory) {
		return false
	}
	if len(f.AgeGroups) > 0 && !containsString(f.AgeGroups, p.AgeGroup) {
		return false
	}
	if f.MinPriceMinor > 0 && p.PriceMinor < f.MinPriceMinor {
		return false
	}
	if f.MaxPriceMinor > 0 && p.PriceMinor > f.MaxPriceMinor {
		return false
	}
	return true
}

func containsString(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

func sortProducts(products []domain.Product) {
	sort.Slice(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		}
		return products[i].ID > products[j].ID
	})
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
