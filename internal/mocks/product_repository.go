package mocks

import (
	"context"

	"github.com/segundamano/marketplace-backend/internal/model"
	"github.com/stretchr/testify/mock"
)

type ProductRepository struct {
	mock.Mock
}

func (m *ProductRepository) Create(ctx context.Context, p *model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *ProductRepository) ListAvailable(ctx context.Context, limit, offset int) ([]model.Product, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Product), args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *ProductRepository) Reserve(ctx context.Context, productID, buyerID, transactionID string) (bool, error) {
	args := m.Called(ctx, productID, buyerID, transactionID)
	return args.Bool(0), args.Error(1)
}

func (m *ProductRepository) Release(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *ProductRepository) MarkSold(ctx context.Context, productID, transactionID string) error {
	args := m.Called(ctx, productID, transactionID)
	return args.Error(0)
}

func (m *ProductRepository) UpdateStatusByOwner(ctx context.Context, productID, ownerID string, from, to model.ProductStatus) (bool, error) {
	args := m.Called(ctx, productID, ownerID, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *ProductRepository) IncrementViews(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}
