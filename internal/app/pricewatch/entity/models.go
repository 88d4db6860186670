package entity

import (
	"time"

	"github.com/google/uuid"
)

// Product представляет отслеживаемый товар.
// name и current_price перезаписываются при каждой успешной проверке,
// url - естественный уникальный ключ (один товар на URL).
type Product struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	URL          string    `json:"url" gorm:"uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"not null"`
	CurrentPrice int       `json:"current_price" gorm:"not null"` // Цена в целых единицах валюты
	CreatedAt    time.Time `json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}

// PriceHistory - одна неизменяемая точка истории цен.
// Точки никогда не обновляются, только добавляются и удаляются
// вместе с товаром.
type PriceHistory struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Price     int       `json:"price" gorm:"not null"`
	CheckedAt time.Time `json:"checked_at" gorm:"not null"`

	// FK на products: точка истории не может пережить товар
	Product Product `json:"-" gorm:"foreignKey:ProductID"`
}

func (PriceHistory) TableName() string {
	return "price_history"
}

// ProductSnapshot - результат одной успешной загрузки страницы товара
type ProductSnapshot struct {
	Name  string
	Price int
	URL   string
}

// SweepSummary - итог одного полного прохода проверки цен
type SweepSummary struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// PriceChangedEvent представляет событие изменения цены для Kafka.
// Отправляется только когда наблюдаемая цена отличается от сохранённой.
type PriceChangedEvent struct {
	EventType string    `json:"event_type"` // PRICE_CHANGED
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	OldPrice  int       `json:"old_price"`
	NewPrice  int       `json:"new_price"`
	Timestamp time.Time `json:"timestamp"`
}
