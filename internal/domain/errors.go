package domain

import "errors"

var (
	// ErrProductNotFound возвращается, если товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductExists возвращается при попытке создать товар с занятым ID.
	ErrProductExists = errors.New("product already exists")
	// ErrInsufficientStock — продажа запрашивает больше единиц, чем есть на складе.
	ErrInsufficientStock = errors.New("not enough stock")
	// ErrInvalidQuantity — некорректное количество в операции.
	ErrInvalidQuantity = errors.New("quantity must be non-negative")
	// ErrDuplicateTracking — товар уже находится в списке limited items.
	ErrDuplicateTracking = errors.New("already in limited items")
	// ErrTrackingNotFound — запись limited item не найдена.
	ErrTrackingNotFound = errors.New("limited item not found")
	// ErrCartNotFound — корзина пользователя не найдена.
	ErrCartNotFound = errors.New("cart not found")
	// ErrCartEntryNotFound — в корзине нет позиции для указанного товара.
	ErrCartEntryNotFound = errors.New("item not found in cart")
	// ErrInvalidRating — оценка вне допустимого диапазона [0, 5].
	ErrInvalidRating = errors.New("rating must be between 0 and 5")
	// ErrTitleRequired — у товара отсутствует название.
	ErrTitleRequired = errors.New("title is required")
	// ErrPriceNegative — цена товара отрицательная.
	ErrPriceNegative = errors.New("price must be non-negative")
	// ErrStockNegative — остаток товара отрицательный.
	ErrStockNegative = errors.New("stock must be non-negative")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsNotFound проверяет, является ли ошибка отсутствием сущности любого вида.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrTrackingNotFound) ||
		errors.Is(err, ErrCartNotFound) ||
		errors.Is(err, ErrCartEntryNotFound)
}

// IsInsufficientStock проверяет, является ли ошибка нехваткой остатка.
func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}
