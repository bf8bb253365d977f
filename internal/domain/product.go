package domain

import "time"

// Review — отзыв покупателя о товаре. Отзывы только добавляются,
// редактирование и удаление не предусмотрены.
type Review struct {
	// Name — имя автора отзыва; пустое имя заменяется на placeholder выше по стеку.
	Name string `bson:"name" json:"name"`
	// Comment — текст отзыва, может быть пустым.
	Comment string `bson:"comment" json:"comment"`
	// Rating — оценка в диапазоне [0, 5].
	Rating float64 `bson:"rating" json:"rating"`
	// CreatedAt фиксирует момент добавления отзыва.
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Product — товар каталога. Остаток мутируется складом, rating/likes/reviews —
// агрегатором оценок; остальные поля принадлежат каталогу.
type Product struct {
	ID          string    `bson:"_id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	PriceMinor  int64     `bson:"price_minor" json:"price_minor"`
	OldPrice    int64     `bson:"old_price_minor,omitempty" json:"old_price_minor,omitempty"`
	Tag         string    `bson:"tag,omitempty" json:"tag,omitempty"`
	Category    string    `bson:"category" json:"category"`
	SubCategory string    `bson:"sub_category,omitempty" json:"sub_category,omitempty"`
	AgeGroup    string    `bson:"age_group,omitempty" json:"age_group,omitempty"`
	SKU         string    `bson:"sku,omitempty" json:"sku,omitempty"`
	Stock       int64     `bson:"stock" json:"stock"`
	Likes       int64     `bson:"likes" json:"likes"`
	Rating      float64   `bson:"rating" json:"rating"`
	Reviews     []Review  `bson:"reviews" json:"reviews"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// ValidateInvariants проверяет базовые инварианты товара и возвращает список замечаний.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.Title == "" {
		errs = append(errs, ErrTitleRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrPriceNegative)
	}
	if p.Stock < 0 {
		errs = append(errs, ErrStockNegative)
	}
	if p.Rating < 0 || p.Rating > 5 {
		errs = append(errs, ErrInvalidRating)
	}
	for _, review := range p.Reviews {
		if review.Rating < 0 || review.Rating > 5 {
			errs = append(errs, ErrInvalidRating)
		}
	}

	return errs
}

// OutOfStock сообщает, что остаток товара равен нулю.
func (p *Product) OutOfStock() bool {
	return p.Stock == 0
}
