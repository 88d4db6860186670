package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"pricewatch/internal/app/pricewatch/entity"
	"pricewatch/internal/app/pricewatch/repository"

	"pricewatch/pkg/logger"
	"pricewatch/pkg/metrics"
)

// MonitorService выполняет один полный проход проверки цен:
// снимок списка товаров, ограниченно-параллельные загрузки,
// сверка каждого результата с хранилищем.
type MonitorService struct {
	productRepo  repository.ProductRepository
	fetcher      PriceFetcher
	cache        ProductCache
	events       EventPublisher
	concurrency  int
	fetchTimeout time.Duration
}

// NewMonitorService создает новый сервис проверки цен.
// cache и events могут быть nil - проход работает и без них.
func NewMonitorService(
	productRepo repository.ProductRepository,
	fetcher PriceFetcher,
	cache ProductCache,
	events EventPublisher,
	concurrency int,
	fetchTimeoutSec int,
) *MonitorService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &MonitorService{
		productRepo:  productRepo,
		fetcher:      fetcher,
		cache:        cache,
		events:       events,
		concurrency:  concurrency,
		fetchTimeout: time.Duration(fetchTimeoutSec) * time.Second,
	}
}

// RunSweep проверяет цены всех отслеживаемых товаров.
// Товары, добавленные после снимка списка, в этот проход не попадают.
// Сбой одного товара никогда не прерывает проход; фатальна только
// невозможность получить сам список.
func (s *MonitorService) RunSweep(ctx context.Context) (entity.SweepSummary, error) {
	start := time.Now()

	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		metrics.SweepsTotal.WithLabelValues("error").Inc()
		return entity.SweepSummary{}, fmt.Errorf("failed to list products for sweep: %w", err)
	}

	metrics.ProductsTracked.Set(float64(len(products)))

	summary := entity.SweepSummary{Attempted: len(products)}
	if len(products) == 0 {
		logger.Info().Msg("sweep: no tracked products")
		metrics.SweepsTotal.WithLabelValues("ok").Inc()
		return summary, nil
	}

	logger.Info().Int("products", len(products)).Msg("sweep: started")

	// Семафор ограничивает одновременные загрузки, чтобы не упираться
	// в rate limit целевого сайта
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, product := range products {
		wg.Add(1)
		go func(p entity.Product) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			ok := s.checkProduct(ctx, p)

			mu.Lock()
			if ok {
				summary.Succeeded++
			} else {
				summary.Failed++
			}
			mu.Unlock()
		}(product)
	}

	wg.Wait()

	if summary.Succeeded > 0 && s.cache != nil {
		if err := s.cache.InvalidateProducts(ctx); err != nil {
			logger.Warn().Err(err).Msg("sweep: products cache invalidation failed")
		}
	}

	duration := time.Since(start)
	metrics.SweepsTotal.WithLabelValues("ok").Inc()
	metrics.SweepDuration.Observe(duration.Seconds())

	logger.Info().
		Int("attempted", summary.Attempted).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Dur("duration", duration).
		Msg("sweep: finished")

	return summary, nil
}

// checkProduct выполняет одну проверку: загрузка страницы и сверка
// результата с хранилищем. Возвращает false при любом сбое.
func (s *MonitorService) checkProduct(ctx context.Context, p entity.Product) bool {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	snapshot, err := s.fetcher.Fetch(fetchCtx, p.URL)
	if err != nil {
		logger.Warn().Err(err).Str("url", p.URL).Str("name", p.Name).Msg("sweep: fetch failed")
		metrics.FetchErrorsTotal.WithLabelValues(fetchErrorKind(err)).Inc()
		return false
	}

	id, err := s.productRepo.Upsert(ctx, p.URL, snapshot.Name, snapshot.Price)
	if err != nil {
		logger.Error().Err(err).Str("url", p.URL).Msg("sweep: product upsert failed")
		metrics.FetchErrorsTotal.WithLabelValues("store").Inc()
		return false
	}

	if err := s.productRepo.AppendHistory(ctx, id, snapshot.Price, time.Now()); err != nil {
		// Upsert не откатываем: current_price уже отражает последнее
		// успешное наблюдение, окно несогласованности с историей принято
		logger.Error().Err(err).Str("url", p.URL).Msg("sweep: history append failed after upsert")
		metrics.FetchErrorsTotal.WithLabelValues("store").Inc()
		return false
	}

	if snapshot.Price != p.CurrentPrice {
		s.publishPriceChanged(ctx, p, snapshot)
	}

	logger.Debug().Str("name", snapshot.Name).Int("price", snapshot.Price).Msg("sweep: product updated")
	return true
}

// publishPriceChanged отправляет событие PRICE_CHANGED в Kafka.
// Сверка уже завершена - сбой отправки только логируется.
func (s *MonitorService) publishPriceChanged(ctx context.Context, p entity.Product, snapshot *entity.ProductSnapshot) {
	if s.events == nil {
		return
	}

	event := entity.PriceChangedEvent{
		EventType: "PRICE_CHANGED",
		ProductID: p.ID,
		Name:      snapshot.Name,
		URL:       p.URL,
		OldPrice:  p.CurrentPrice,
		NewPrice:  snapshot.Price,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("sweep: failed to marshal price event")
		return
	}

	if err := s.events.PublishMessage(ctx, p.ID.String(), data); err != nil {
		logger.Warn().Err(err).Str("url", p.URL).Msg("sweep: failed to publish price event")
	}
}
