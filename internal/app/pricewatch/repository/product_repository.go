package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pricewatch/internal/app/pricewatch/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// productRepository реализует ProductRepository поверх PostgreSQL через GORM
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// GetAll получает все отслеживаемые товары
func (r *productRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	result := r.db.WithContext(ctx).Order("created_at DESC").Find(&products)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to list products: %w", result.Error)
	}

	return products, nil
}

// GetByID получает товар по ID
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).First(&product, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", result.Error)
	}

	return &product, nil
}

// Upsert вставляет товар или обновляет name/current_price по конфликту url.
// Один запрос с RETURNING - повторный Upsert того же URL всегда возвращает
// id существующей строки, дубликатов не бывает даже при гонке.
func (r *productRepository) Upsert(ctx context.Context, url, name string, price int) (uuid.UUID, error) {
	// Назначение - структура: uuid.UUID это [16]byte, и GORM принял бы
	// голый uuid за срез строк результата
	var row struct {
		ID uuid.UUID
	}
	result := r.db.WithContext(ctx).Raw(
		`INSERT INTO products (id, url, name, current_price, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (url) DO UPDATE SET
		 name = EXCLUDED.name,
		 current_price = EXCLUDED.current_price
		 RETURNING id`,
		uuid.New(), url, name, price, time.Now(),
	).Scan(&row)

	if result.Error != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert product: %w", result.Error)
	}

	return row.ID, nil
}

// AppendHistory добавляет одну точку истории цен
func (r *productRepository) AppendHistory(ctx context.Context, productID uuid.UUID, price int, checkedAt time.Time) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check product existence: %w", err)
	}
	if count == 0 {
		return ErrProductNotFound
	}

	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO price_history (id, product_id, price, checked_at) VALUES (?, ?, ?, ?)`,
		uuid.New(), productID, price, checkedAt,
	)
	if result.Error != nil {
		// Товар мог быть удален между проверкой и вставкой - FK ловит гонку
		if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to append price history: %w", result.Error)
	}

	return nil
}

// HistoryFor получает все точки истории товара по возрастанию checked_at
func (r *productRepository) HistoryFor(ctx context.Context, productID uuid.UUID) ([]entity.PriceHistory, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check product existence: %w", err)
	}
	if count == 0 {
		return nil, ErrProductNotFound
	}

	var points []entity.PriceHistory
	result := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("checked_at ASC").
		Find(&points)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to get price history: %w", result.Error)
	}

	return points, nil
}

// Remove удаляет историю и сам товар одной транзакцией.
// История удаляется первой, чтобы не оставлять осиротевших точек.
func (r *productRepository) Remove(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&entity.PriceHistory{}).Error; err != nil {
			return fmt.Errorf("failed to delete price history: %w", err)
		}

		result := tx.Delete(&entity.Product{}, "id = ?", productID)
		if result.Error != nil {
			return fmt.Errorf("failed to delete product: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}

		return nil
	})
}
