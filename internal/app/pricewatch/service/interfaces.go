package service

import (
	"context"
	"io"

	"pricewatch/internal/app/pricewatch/entity"

	"github.com/google/uuid"
)

// PriceFetcher определяет интерфейс получения текущей цены товара по URL.
// Латентность и причины сбоев скрыты за интерфейсом; любой сбой означает
// "проверка этого товара в этот раз не удалась".
type PriceFetcher interface {
	Fetch(ctx context.Context, url string) (*entity.ProductSnapshot, error)
}

// ProductCache определяет интерфейс кеша списка товаров
type ProductCache interface {
	GetProducts(ctx context.Context) ([]entity.Product, error)
	SetProducts(ctx context.Context, products []entity.Product) error
	InvalidateProducts(ctx context.Context) error
}

// EventPublisher определяет интерфейс отправки событий в Kafka
type EventPublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
}

// MonitorServiceInterface определяет интерфейс одного полного прохода проверки цен
type MonitorServiceInterface interface {
	// RunSweep проверяет все отслеживаемые товары и возвращает итог.
	// Ошибка возвращается только если не удалось получить список товаров.
	RunSweep(ctx context.Context) (entity.SweepSummary, error)
}

// ProductServiceInterface определяет интерфейс операций над товарами
type ProductServiceInterface interface {
	AddProduct(ctx context.Context, url string) (*entity.Product, error)
	ListProducts(ctx context.Context) ([]entity.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetHistory(ctx context.Context, id uuid.UUID) ([]entity.PriceHistory, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ExportCSV(ctx context.Context, w io.Writer) error
}
