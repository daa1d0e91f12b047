package mocks

import (
	"context"

	"github.com/segundamano/marketplace-backend/internal/model"
	"github.com/segundamano/marketplace-backend/internal/service"
	"github.com/stretchr/testify/mock"
)

type ProductService struct {
	mock.Mock
}

func (m *ProductService) Create(ctx context.Context, ownerID string, in service.CreateProductInput) (*model.Product, error) {
	args := m.Called(ctx, ownerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *ProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *ProductService) ListAvailable(ctx context.Context, page, limit int) ([]model.Product, int64, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.Product), args.Get(1).(int64), args.Error(2)
}

func (m *ProductService) ListByOwner(ctx context.Context, ownerID string, page, limit int) ([]model.Product, error) {
	args := m.Called(ctx, ownerID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *ProductService) ChangeStatus(ctx context.Context, id, ownerID string, status model.ProductStatus) (*model.Product, error) {
	args := m.Called(ctx, id, ownerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}
