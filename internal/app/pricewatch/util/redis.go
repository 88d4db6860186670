package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pricewatch/internal/app/pricewatch/entity"

	"github.com/redis/go-redis/v9"
)

const productsCacheKey = "products:all"

// RedisClient кеширует список отслеживаемых товаров.
// Кеш инвалидируется при любой записи (добавление, удаление, проход проверки).
type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает клиент Redis и проверяет соединение
func NewRedisClient(addr, password string, db int, ttl time.Duration) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client, ttl: ttl}, nil
}

// NewRedisClientWithConn оборачивает готовое соединение (используется в тестах)
func NewRedisClientWithConn(client *redis.Client, ttl time.Duration) *RedisClient {
	return &RedisClient{client: client, ttl: ttl}
}

// SetProducts сохраняет список товаров в кеш
func (r *RedisClient) SetProducts(ctx context.Context, products []entity.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}

	if err := r.client.Set(ctx, productsCacheKey, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set products in cache: %w", err)
	}

	return nil
}

// GetProducts возвращает закешированный список товаров.
// Cache miss - это (nil, nil), не ошибка.
func (r *RedisClient) GetProducts(ctx context.Context) ([]entity.Product, error) {
	data, err := r.client.Get(ctx, productsCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get products from cache: %w", err)
	}

	var products []entity.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to unmarshal products: %w", err)
	}

	return products, nil
}

// InvalidateProducts сбрасывает кеш списка товаров
func (r *RedisClient) InvalidateProducts(ctx context.Context) error {
	if err := r.client.Del(ctx, productsCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate products cache: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
