package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"pricewatch/internal/app/pricewatch/entity"
	"pricewatch/internal/app/pricewatch/repository"

	"pricewatch/pkg/logger"

	"github.com/google/uuid"
)

// ProductService обрабатывает операции над отслеживаемыми товарами:
// добавление по URL, списки, история, удаление, экспорт в CSV.
// Координирует репозиторий, загрузчик страниц и кеш.
type ProductService struct {
	productRepo repository.ProductRepository
	fetcher     PriceFetcher
	cache       ProductCache
}

// NewProductService создает новый сервис товаров с внедрением зависимостей
func NewProductService(
	productRepo repository.ProductRepository,
	fetcher PriceFetcher,
	cache ProductCache,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		fetcher:     fetcher,
		cache:       cache,
	}
}

// AddProduct добавляет товар по URL. Страница загружается сразу:
// если загрузка не удалась, товар не создается и вызывающий получает
// ErrFetchFailed. Успешная загрузка дает первую точку истории.
func (s *ProductService) AddProduct(ctx context.Context, url string) (*entity.Product, error) {
	snapshot, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFetchFailed, err)
	}

	id, err := s.productRepo.Upsert(ctx, url, snapshot.Name, snapshot.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	if err := s.productRepo.AppendHistory(ctx, id, snapshot.Price, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to record initial price: %w", err)
	}

	s.invalidateCache(ctx)

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load saved product: %w", err)
	}

	return product, nil
}

// ListProducts получает все товары с кешированием в Redis.
// Сначала проверяет кеш, при промахе загружает из БД и кеширует.
func (s *ProductService) ListProducts(ctx context.Context) ([]entity.Product, error) {
	if s.cache != nil {
		products, err := s.cache.GetProducts(ctx)
		if err == nil && products != nil {
			return products, nil
		}
		if err != nil {
			// Проблемы с кешем не критичны - идем в БД
			logger.Warn().Err(err).Msg("products cache read failed")
		}
	}

	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	if s.cache != nil && len(products) > 0 {
		if err := s.cache.SetProducts(ctx, products); err != nil {
			logger.Warn().Err(err).Msg("products cache write failed")
		}
	}

	return products, nil
}

// GetProduct получает товар по ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// GetHistory получает историю цен товара по возрастанию checked_at
func (s *ProductService) GetHistory(ctx context.Context, id uuid.UUID) ([]entity.PriceHistory, error) {
	points, err := s.productRepo.HistoryFor(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get price history: %w", err)
	}

	return points, nil
}

// DeleteProduct удаляет товар вместе со всей историей цен
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Remove(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.invalidateCache(ctx)

	return nil
}

// ExportCSV выгружает все товары в CSV: id,name,url,current_price
func (s *ProductService) ExportCSV(ctx context.Context, w io.Writer) error {
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to get products for export: %w", err)
	}

	wtr := csv.NewWriter(w)

	if err := wtr.Write([]string{"id", "name", "url", "current_price"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, p := range products {
		record := []string{
			p.ID.String(),
			p.Name,
			p.URL,
			strconv.Itoa(p.CurrentPrice),
		}
		if err := wtr.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	wtr.Flush()
	if err := wtr.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return nil
}

func (s *ProductService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProducts(ctx); err != nil {
		// Товар уже сохранен/удален, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("products cache invalidation failed")
	}
}
