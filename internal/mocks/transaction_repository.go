package mocks

import (
	"context"

	"github.com/segundamano/marketplace-backend/internal/model"
	"github.com/stretchr/testify/mock"
)

type TransactionRepository struct {
	mock.Mock
}

func (m *TransactionRepository) Create(ctx context.Context, t *model.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TransactionRepository) FindByID(ctx context.Context, id string) (*model.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *TransactionRepository) FindByCode(ctx context.Context, code string) (*model.Transaction, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *TransactionRepository) ListByBuyer(ctx context.Context, buyerID string, limit, offset int) ([]model.Transaction, error) {
	args := m.Called(ctx, buyerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Transaction), args.Error(1)
}

func (m *TransactionRepository) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]model.Transaction, error) {
	args := m.Called(ctx, sellerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Transaction), args.Error(1)
}

func (m *TransactionRepository) AdvanceStatus(ctx context.Context, id string, status model.TransactionStatus, message string, byUserID *string) error {
	args := m.Called(ctx, id, status, message, byUserID)
	return args.Error(0)
}

func (m *TransactionRepository) SellerConfirm(ctx context.Context, id, sellerID, paymentMethod string) error {
	args := m.Called(ctx, id, sellerID, paymentMethod)
	return args.Error(0)
}

func (m *TransactionRepository) BuyerConfirmPayment(ctx context.Context, id, buyerID string) error {
	args := m.Called(ctx, id, buyerID)
	return args.Error(0)
}

func (m *TransactionRepository) AppendNote(ctx context.Context, id, userID, note string) error {
	args := m.Called(ctx, id, userID, note)
	return args.Error(0)
}
