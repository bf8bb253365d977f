package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// cartRepositoryInMemory — простая in-memory реализация CartRepository.
type cartRepositoryInMemory struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

// NewCartRepository возвращает in-memory репозиторий корзин.
func NewCartRepository() domain.CartRepository {
	return &cartRepositoryInMemory{
		carts: make(map[string]domain.Cart),
	}
}

func cloneCart(c domain.Cart) domain.Cart {
	clone := c
	if c.Entries != nil {
		clone.Entries = make([]domain.CartEntry, len(c.Entries))
		copy(clone.Entries, c.Entries)
	}
	return clone
}

// Get возвращает корзину пользователя или ErrCartNotFound.
func (r *cartRepositoryInMemory) Get(_ context.Context, userID string) (domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[userID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	return cloneCart(cart), nil
}

// Upsert сохраняет корзину, создавая её при первом обращении.
func (r *cartRepositoryInMemory) Upsert(_ context.Context, cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[cart.UserID] = cloneCart(cart)
	return nil
}

// Delete удаляет корзину пользователя; отсутствие — не ошибка.
func (r *cartRepositoryInMemory) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, userID)
	return nil
}

var _ domain.CartRepository = (*cartRepositoryInMemory)(nil)
