package repository

import (
	"context"
	"errors"
	"time"

	"pricewatch/internal/app/pricewatch/entity"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository - единственная точка доступа к отслеживаемым товарам
// и их истории цен. Все мутирующие операции долговечны к моменту возврата
// и сериализуются на границе хранилища (PostgreSQL).
type ProductRepository interface {
	// GetAll возвращает снимок всех отслеживаемых товаров
	GetAll(ctx context.Context) ([]entity.Product, error)
	// GetByID возвращает товар или ErrProductNotFound
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// Upsert обновляет name/current_price существующего URL или создаёт
	// новую строку; возвращает id строки. Атомарен при гонке по одному URL.
	Upsert(ctx context.Context, url, name string, price int) (uuid.UUID, error)
	// AppendHistory добавляет одну неизменяемую точку истории;
	// ErrProductNotFound если товара нет
	AppendHistory(ctx context.Context, productID uuid.UUID, price int, checkedAt time.Time) error
	// HistoryFor возвращает точки истории по возрастанию checked_at;
	// ErrProductNotFound если товара нет
	HistoryFor(ctx context.Context, productID uuid.UUID) ([]entity.PriceHistory, error)
	// Remove удаляет историю и товар одной транзакцией;
	// ErrProductNotFound если товара нет (повторный вызов тоже ошибка)
	Remove(ctx context.Context, productID uuid.UUID) error
}
