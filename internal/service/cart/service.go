package cart

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Service управляет корзиной одного пользователя: слияние повторных
// добавлений, удаление нулевых позиций, разворачивание товаров на чтении.
// Верхняя граница количества относительно остатка намеренно не
// проверяется: спрос корзины сверяется со складом на этапе продажи.
type Service struct {
	carts    domain.CartRepository
	products domain.ProductRepository
	logger   *log.Entry
}

// NewService создаёт сервис корзин.
func NewService(carts domain.CartRepository, products domain.ProductRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "cart")
	}
	return &Service{
		carts:    carts,
		products: products,
		logger:   logger,
	}
}

// Add кладёт товар в корзину. Повторное добавление того же товара
// увеличивает количество существующей позиции (merge), а не создаёт
// дубликат. Неположительное количество трактуется как 1.
func (s *Service) Add(ctx context.Context, userID, productID string, quantity int64) ([]domain.CartLine, error) {
	if quantity <= 0 {
		quantity = 1
	}

	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}

	cart, err := s.getOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}

	if idx := cart.FindEntry(productID); idx >= 0 {
		cart.Entries[idx].Quantity += quantity
	} else {
		cart.Entries = append(cart.Entries, domain.CartEntry{
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   time.Now().UTC(),
		})
	}

	if err := s.carts.Upsert(ctx, cart); err != nil {
		return nil, err
	}
	return s.View(ctx, userID)
}

// Remove убирает позицию из корзины. Отсутствие позиции — не ошибка.
func (s *Service) Remove(ctx context.Context, userID, productID string) ([]domain.CartLine, error) {
	cart, err := s.getOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}

	if cart.RemoveEntry(productID) {
		if err := s.carts.Upsert(ctx, cart); err != nil {
			return nil, err
		}
	}
	return s.View(ctx, userID)
}

// UpdateQuantity выставляет количество позиции напрямую (не аддитивно).
// Нулевое или отрицательное количество удаляет позицию. Это операция
// исправления, а не upsert: отсутствие позиции — ErrCartEntryNotFound.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, quantity int64) ([]domain.CartLine, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil, domain.ErrCartEntryNotFound
		}
		return nil, err
	}

	idx := cart.FindEntry(productID)
	if idx < 0 {
		return nil, domain.ErrCartEntryNotFound
	}

	if quantity <= 0 {
		cart.RemoveEntry(productID)
	} else {
		cart.Entries[idx].Quantity = quantity
	}

	if err := s.carts.Upsert(ctx, cart); err != nil {
		return nil, err
	}
	return s.View(ctx, userID)
}

// View возвращает корзину с развёрнутыми товарами. Позиции, чей товар
// был удалён из каталога, молча отфильтровываются: висячая ссылка —
// не повреждение данных.
func (s *Service) View(ctx context.Context, userID string) ([]domain.CartLine, error) {
	cart, err := s.getOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.CartLine, 0, len(cart.Entries))
	for _, entry := range cart.Entries {
		product, err := s.products.Get(ctx, entry.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				continue
			}
			return nil, err
		}
		lines = append(lines, domain.CartLine{
			Product:  product,
			Quantity: entry.Quantity,
		})
	}
	return lines, nil
}

// getOrEmpty возвращает корзину пользователя; отсутствующая корзина
// трактуется как пустая.
func (s *Service) getOrEmpty(ctx context.Context, userID string) (domain.Cart, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return domain.Cart{UserID: userID}, nil
		}
		return domain.Cart{}, err
	}
	return cart, nil
}
