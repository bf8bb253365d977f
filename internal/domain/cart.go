package domain

import "time"

// CartEntry — позиция корзины. Ссылка на товар слабая: товар может быть
// удалён, такая позиция отфильтровывается при чтении.
type CartEntry struct {
	ProductID string    `bson:"product_id" json:"product_id"`
	Quantity  int64     `bson:"quantity" json:"quantity"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

// Cart — корзина одного пользователя: упорядоченный список позиций,
// product id уникален внутри корзины.
type Cart struct {
	UserID    string      `bson:"user_id" json:"user_id"`
	Entries   []CartEntry `bson:"entries" json:"entries"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updated_at"`
}

// CartLine — позиция корзины с развёрнутым товаром; результат join'а
// корзины и каталога на чтении.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int64   `json:"quantity"`
}

// FindEntry возвращает индекс позиции с указанным товаром или -1.
func (c *Cart) FindEntry(productID string) int {
	for i := range c.Entries {
		if c.Entries[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// RemoveEntry удаляет позицию с указанным товаром, сохраняя порядок остальных.
// Возвращает true, если позиция существовала.
func (c *Cart) RemoveEntry(productID string) bool {
	idx := c.FindEntry(productID)
	if idx < 0 {
		return false
	}
	c.Entries = append(c.Entries[:idx], c.Entries[idx+1:]...)
	return true
}
