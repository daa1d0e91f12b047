package mocks

import (
	"context"

	"github.com/segundamano/marketplace-backend/internal/model"
	"github.com/segundamano/marketplace-backend/internal/service"
	"github.com/stretchr/testify/mock"
)

type TransactionService struct {
	mock.Mock
}

func (m *TransactionService) CreateReservation(ctx context.Context, productID, buyerID string) (*service.Reservation, error) {
	args := m.Called(ctx, productID, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Reservation), args.Error(1)
}

func (m *TransactionService) Get(ctx context.Context, idOrCode, callerID string) (*service.TransactionDetail, error) {
	args := m.Called(ctx, idOrCode, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TransactionDetail), args.Error(1)
}

func (m *TransactionService) ListPurchases(ctx context.Context, buyerID string, page, limit int) ([]model.Transaction, error) {
	args := m.Called(ctx, buyerID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Transaction), args.Error(1)
}

func (m *TransactionService) ListSales(ctx context.Context, sellerID string, page, limit int) ([]model.Transaction, error) {
	args := m.Called(ctx, sellerID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Transaction), args.Error(1)
}

func (m *TransactionService) SellerConfirm(ctx context.Context, transactionID, callerID, paymentMethod string) (*model.Transaction, error) {
	args := m.Called(ctx, transactionID, callerID, paymentMethod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *TransactionService) BuyerConfirmPayment(ctx context.Context, transactionID, callerID string) (*model.Transaction, error) {
	args := m.Called(ctx, transactionID, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *TransactionService) Complete(ctx context.Context, transactionID, callerID string) (*model.Transaction, error) {
	args := m.Called(ctx, transactionID, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *TransactionService) Cancel(ctx context.Context, transactionID, callerID, reason string) (*model.Transaction, error) {
	args := m.Called(ctx, transactionID, callerID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *TransactionService) AddNote(ctx context.Context, transactionID, callerID, note string) error {
	args := m.Called(ctx, transactionID, callerID, note)
	return args.Error(0)
}
