package mocks

import (
	"context"
	"time"

	"pricewatch/internal/app/pricewatch/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository мок для ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) Upsert(ctx context.Context, url, name string, price int) (uuid.UUID, error) {
	args := m.Called(ctx, url, name, price)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockProductRepository) AppendHistory(ctx context.Context, productID uuid.UUID, price int, checkedAt time.Time) error {
	args := m.Called(ctx, productID, price, checkedAt)
	return args.Error(0)
}

func (m *MockProductRepository) HistoryFor(ctx context.Context, productID uuid.UUID) ([]entity.PriceHistory, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PriceHistory), args.Error(1)
}

func (m *MockProductRepository) Remove(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}
