package domain

import "context"

// ProductFilter описывает критерии выборки товаров каталога.
type ProductFilter struct {
	Categories    []string
	SubCategories []string
	AgeGroups     []string
	MinPriceMinor int64
	MaxPriceMinor int64
}

// ProductRepository описывает требования к хранилищу товаров.
// Мутации остатка и рейтинга выражены отдельными атомарными операциями:
// каждая из них — одна запись в хранилище.
type ProductRepository interface {
	// Create сохраняет новый товар. Возвращает ErrProductExists, если ID занят.
	Create(ctx context.Context, product Product) error
	// Get возвращает товар по идентификатору или ErrProductNotFound.
	Get(ctx context.Context, id string) (Product, error)
	// List возвращает все товары каталога.
	List(ctx context.Context) ([]Product, error)
	// Filter возвращает товары, удовлетворяющие критериям.
	Filter(ctx context.Context, filter ProductFilter) ([]Product, error)
	// TopByLikes возвращает до limit товаров, отсортированных по убыванию лайков.
	TopByLikes(ctx context.Context, limit int) ([]Product, error)
	// ListRelated возвращает до limit товаров той же подкатегории,
	// исключая товар excludeID.
	ListRelated(ctx context.Context, subCategory, excludeID string, limit int) ([]Product, error)
	// Save перезаписывает товар целиком (каталожные правки).
	Save(ctx context.Context, product Product) error
	// Delete удаляет товар или возвращает ErrProductNotFound.
	Delete(ctx context.Context, id string) error

	// DecrementStock уменьшает остаток на qty одной условной записью:
	// списание происходит только при stock >= qty, иначе ErrInsufficientStock.
	DecrementStock(ctx context.Context, id string, qty int64) (Product, error)
	// IncrementStock увеличивает остаток на qty (qty >= 0) и возвращает снимок.
	IncrementStock(ctx context.Context, id string, qty int64) (Product, error)
	// IncrementLikes увеличивает счётчик лайков на единицу.
	IncrementLikes(ctx context.Context, id string) (Product, error)
	// SetRating выставляет агрегированную оценку товара.
	SetRating(ctx context.Context, id string, rating float64) (Product, error)
	// AppendReview добавляет отзыв и одновременно выставляет новую оценку.
	AppendReview(ctx context.Context, id string, review Review, rating float64) (Product, error)
}

// LimitedItemRepository описывает требования к хранилищу записей трекера.
type LimitedItemRepository interface {
	// Create сохраняет запись. Возвращает ErrDuplicateTracking, если запись
	// для этого товара уже существует.
	Create(ctx context.Context, item LimitedItem) error
	// Get возвращает запись по идентификатору или ErrTrackingNotFound.
	Get(ctx context.Context, id string) (LimitedItem, error)
	// GetByProduct возвращает запись по товару или ErrTrackingNotFound.
	GetByProduct(ctx context.Context, productID string) (LimitedItem, error)
	// List возвращает все записи трекера.
	List(ctx context.Context) ([]LimitedItem, error)
	// Delete удаляет запись по идентификатору или возвращает ErrTrackingNotFound.
	Delete(ctx context.Context, id string) error
	// DeleteByProduct удаляет запись по товару; сообщает, была ли она.
	DeleteByProduct(ctx context.Context, productID string) (bool, error)
}

// CartRepository описывает требования к хранилищу корзин.
// Корзина — один документ на пользователя; Upsert перезаписывает его целиком.
type CartRepository interface {
	// Get возвращает корзину пользователя или ErrCartNotFound.
	Get(ctx context.Context, userID string) (Cart, error)
	// Upsert сохраняет корзину, создавая документ при первом обращении.
	Upsert(ctx context.Context, cart Cart) error
	// Delete удаляет корзину пользователя; отсутствие — не ошибка.
	Delete(ctx context.Context, userID string) error
}
