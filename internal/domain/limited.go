package domain

import "time"

// LimitedItem — запись о товаре, взятом на контроль из-за низкого или нулевого
// остатка. На один товар может существовать не более одной записи.
type LimitedItem struct {
	ID        string    `bson:"_id" json:"id"`
	ProductID string    `bson:"product_id" json:"product_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// TrackedItem — запись трекера вместе с актуальным снимком товара.
// Используется только на чтении; не персистится.
type TrackedItem struct {
	Item    LimitedItem `json:"item"`
	Product Product     `json:"product"`
}

// TrackedPartition — результат чтения трекера: записи, разделённые по
// состоянию остатка. Записи с положительным остатком — переходное состояние
// (restock прошёл мимо трекера), читающая сторона обязана его терпеть.
type TrackedPartition struct {
	InStock    []TrackedItem `json:"in_stock"`
	OutOfStock []TrackedItem `json:"out_of_stock"`
}

// LowStockReport — производный список товаров с низким остатком, не имеющих
// записи в трекере. Никогда не материализуется в хранилище.
type LowStockReport struct {
	LowStock   []Product `json:"low_stock"`
	OutOfStock []Product `json:"out_of_stock"`
}
