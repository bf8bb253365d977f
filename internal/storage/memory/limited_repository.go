package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// limitedItemRepositoryInMemory — in-memory реализация LimitedItemRepository.
// Уникальность product_id обеспечивается вторичным индексом byProduct.
type limitedItemRepositoryInMemory struct {
	mu        sync.RWMutex
	items     map[string]domain.LimitedItem
	byProduct map[string]string
}

// NewLimitedItemRepository возвращает in-memory репозиторий записей трекера.
func NewLimitedItemRepository() domain.LimitedItemRepository {
	return &limitedItemRepositoryInMemory{
		items:     make(map[string]domain.LimitedItem),
		byProduct: make(map[string]string),
	}
}

// Create сохраняет запись, отклоняя дубликат по товару.
func (r *limitedItemRepositoryInMemory) Create(_ context.Context, item domain.LimitedItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byProduct[item.ProductID]; exists {
		return domain.ErrDuplicateTracking
	}
	r.items[item.ID] = item
	r.byProduct[item.ProductID] = item.ID
	return nil
}

// Get возвращает запись или ErrTrackingNotFound, если её нет.
func (r *limitedItemRepositoryInMemory) Get(_ context.Context, id string) (domain.LimitedItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return domain.LimitedItem{}, domain.ErrTrackingNotFound
	}
	return item, nil
}

// GetByProduct возвращает запись по товару или ErrTrackingNotFound.
func (r *limitedItemRepositoryInMemory) GetByProduct(_ context.Context, productID string) (domain.LimitedItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byProduct[productID]
	if !ok {
		return domain.LimitedItem{}, domain.ErrTrackingNotFound
	}
	return r.items[id], nil
}

// List возвращает все записи, отсортированные по дате создания (старые первыми).
func (r *limitedItemRepositoryInMemory) List(_ context.Context) ([]domain.LimitedItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.LimitedItem, 0, len(r.items))
	for _, item := range r.items {
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Delete удаляет запись по идентификатору.
func (r *limitedItemRepositoryInMemory) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return domain.ErrTrackingNotFound
	}
	delete(r.items, id)
	delete(r.byProduct, item.ProductID)
	return nil
}

// DeleteByProduct удаляет запись по товару; сообщает, была ли она.
func (r *limitedItemRepositoryInMemory) DeleteByProduct(_ context.Context, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byProduct[productID]
	if !ok {
		return false, nil
	}
	delete(r.items, id)
	delete(r.byProduct, productID)
	return true, nil
}

var _ domain.LimitedItemRepository = (*limitedItemRepositoryInMemory)(nil)
