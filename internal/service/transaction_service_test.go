package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segundamano/marketplace-backend/internal/mocks"
	"github.com/segundamano/marketplace-backend/internal/model"
	"github.com/segundamano/marketplace-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	buyerID  = "buyer-1"
	sellerID = "seller-1"
	otherID  = "stranger-1"
)

func availableProduct() *model.Product {
	return &model.Product{
		ID:          "prod-1",
		Name:        "Campera de cuero",
		Description: "Poco uso",
		Price:       150.50,
		Size:        "M",
		Category:    "abrigos",
		ImageURL:    "https://img.example/campera.jpg",
		OwnerID:     sellerID,
		Status:      model.ProductStatusAvailable,
		Stock:       1,
	}
}

func pendingTransaction() *model.Transaction {
	return &model.Transaction{
		ID:          "tx-1",
		Code:        "TRD-A1B2C3",
		ProductID:   "prod-1",
		BuyerID:     buyerID,
		SellerID:    sellerID,
		ProductName: "Campera de cuero",
		Status:      model.TransactionStatusPending,
	}
}

func newService(txRepo *mocks.TransactionRepository, productRepo *mocks.ProductRepository, userRepo *mocks.UserRepository) service.TransactionService {
	return service.NewTransactionService(txRepo, productRepo, userRepo, zap.NewNop())
}

func TestTransactionService_CreateReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("reserves available product and snapshots it", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		productRepo := &mocks.ProductRepository{}
		userRepo := &mocks.UserRepository{}
		svc := newService(txRepo, productRepo, userRepo)

		product := availableProduct()
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)

		var createdID string
		txRepo.On("Create", ctx, mock.MatchedBy(func(tr *model.Transaction) bool {
			return tr.ProductID == product.ID &&
				tr.BuyerID == buyerID &&
				tr.SellerID == sellerID &&
				tr.ProductName == product.Name &&
				tr.ProductPrice == product.Price &&
				tr.ProductCategory == product.Category &&
				tr.Status == model.TransactionStatusPending
		})).Run(func(args mock.Arguments) {
			tr := args.Get(1).(*model.Transaction)
			tr.Code = "TRD-XYZ789"
			createdID = tr.ID
		}).Return(nil)

		productRepo.On("Reserve", ctx, product.ID, buyerID, mock.AnythingOfType("string")).Return(true, nil)

		stored := pendingTransaction()
		txRepo.On("FindByID", ctx, mock.AnythingOfType("string")).Return(stored, nil)
		userRepo.On("FindByID", ctx, sellerID).Return(&model.User{ID: sellerID, Username: "vendedora", Whatsapp: "+54911"}, nil)

		r, err := svc.CreateReservation(ctx, product.ID, buyerID)

		assert.NoError(t, err)
		assert.NotEmpty(t, createdID)
		assert.Equal(t, stored, r.Transaction)
		assert.Equal(t, "vendedora", r.Seller.Username)
		txRepo.AssertExpectations(t)
		productRepo.AssertExpectations(t)
	})

	t.Run("product absent", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		productRepo := &mocks.ProductRepository{}
		svc := newService(txRepo, productRepo, &mocks.UserRepository{})

		productRepo.On("FindByID", ctx, "missing").Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.CreateReservation(ctx, "missing", buyerID)

		assert.ErrorIs(t, err, service.ErrNotFound)
		txRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("product not available", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		productRepo := &mocks.ProductRepository{}
		svc := newService(txRepo, productRepo, &mocks.UserRepository{})

		product := availableProduct()
		product.Status = model.ProductStatusReserved
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)

		_, err := svc.CreateReservation(ctx, product.ID, buyerID)

		assert.ErrorIs(t, err, service.ErrUnavailable)
		txRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		productRepo.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("self purchase", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		productRepo := &mocks.ProductRepository{}
		svc := newService(txRepo, productRepo, &mocks.UserRepository{})

		product := availableProduct()
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)

		_, err := svc.CreateReservation(ctx, product.ID, sellerID)

		assert.ErrorIs(t, err, service.ErrSelfPurchase)
		txRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("race lost cancels the fresh transaction", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		productRepo := &mocks.ProductRepository{}
		svc := newService(txRepo, productRepo, &mocks.UserRepository{})

		product := availableProduct()
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		txRepo.On("Create", ctx, mock.AnythingOfType("*model.Transaction")).Return(nil)
		productRepo.On("Reserve", ctx, product.ID, buyerID, mock.AnythingOfType("string")).Return(false, nil)
		txRepo.On("AdvanceStatus", ctx, mock.AnythingOfType("string"), model.TransactionStatusCancelled,
			"reservation failed: product no longer available", (*string)(nil)).Return(nil)

		_, err := svc.CreateReservation(ctx, product.ID, buyerID)

		assert.ErrorIs(t, err, service.ErrConflict)
		txRepo.AssertExpectations(t)
	})

	t.Run("reserve write failure cancels the fresh transaction", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		productRepo := &mocks.ProductRepository{}
		svc := newService(txRepo, productRepo, &mocks.UserRepository{})

		product := availableProduct()
		writeErr := errors.New("driver: bad connection")
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		txRepo.On("Create", ctx, mock.AnythingOfType("*model.Transaction")).Return(nil)
		productRepo.On("Reserve", ctx, product.ID, buyerID, mock.AnythingOfType("string")).Return(false, writeErr)
		txRepo.On("AdvanceStatus", ctx, mock.AnythingOfType("string"), model.TransactionStatusCancelled,
			"reservation failed: product no longer available", (*string)(nil)).Return(nil)

		_, err := svc.CreateReservation(ctx, product.ID, buyerID)

		assert.ErrorIs(t, err, writeErr)
		txRepo.AssertExpectations(t)
	})
}

func TestTransactionService_SellerConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("seller confirms with payment method", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		svc := newService(txRepo, &mocks.ProductRepository{}, &mocks.UserRepository{})

		tr := pendingTransaction()
		txRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)
		txRepo.On("SellerConfirm", ctx, tr.ID, sellerID, "cash").Return(nil)

		got, err := svc.SellerConfirm(ctx, tr.ID, sellerID, "cash")

		assert.NoError(t, err)
		assert.NotNil(t, got)
		txRepo.AssertExpectations(t)
	})

	t.Run("non-seller is forbidden", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		svc := newService(txRepo, &mocks.ProductRepository{}, &mocks.UserRepository{})

		tr := pendingTransaction()
		txRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)

		_, err := svc.SellerConfirm(ctx, tr.ID, buyerID, "cash")

		assert.ErrorIs(t, err, service.ErrForbidden)
		txRepo.AssertNotCalled(t, "SellerConfirm", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("terminal transaction rejected", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		svc := newService(txRepo, &mocks.ProductRepository{}, &mocks.UserRepository{})

		tr := pendingTransaction()
		tr.Status = model.TransactionStatusCancelled
		txRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)

		_, err := svc.SellerConfirm(ctx, tr.ID, sellerID, "cash")

		assert.ErrorIs(t, err, service.ErrInvalidState)
	})

	t.Run("missing transaction", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		svc := newService(txRepo, &mocks.ProductRepository{}, &mocks.UserRepository{})

		txRepo.On("FindByID", ctx, "missing").Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.SellerConfirm(ctx, "missing", sellerID, "cash")

		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestTransactionService_BuyerConfirmPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("buyer confirms payment", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		svc := newService(txRepo, &mocks.ProductRepository{}, &mocks.UserRepository{})

		tr := pendingTransaction()
		tr.Status = model.TransactionStatusConfirmed
		tr.SellerConfirmed = true
		txRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)
		txRepo.On("BuyerConfirmPayment", ctx, tr.ID, buyerID).Return(nil)

		_, err := svc.BuyerConfirmPayment(ctx, tr.ID, buyerID)

		assert.NoError(t, err)
		txRepo.AssertExpectations(t)
	})

	t.Run("non-buyer is forbidden", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		svc := newService(txRepo, &mocks.ProductRepository{}, &mocks.UserRepository{})

		tr := pendingTransaction()
		txRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)

		_, err := svc.BuyerConfirmPayment(ctx, tr.ID, sellerID)

		assert.ErrorIs(t, err, service.ErrForbidden)
		txRepo.AssertNotCalled(t, "BuyerConfirmPayment", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTransactionService_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("both confirmations present", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		productRepo := &mocks.ProductRepository{}
		svc := newService(txRepo, productRepo, &mocks.UserRepository{})

		tr := pendingTransaction()
		tr.Status = model.TransactionStatusPaymentConfirmed
		tr.SellerConfirmed = true
		tr.BuyerPaid = true
		txRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)
		txRepo.On("AdvanceStatus", ctx, tr.ID, model.TransactionStatusCompleted,
			"transaction completed", mock.AnythingOfType("*string")).Return(nil)
		productRepo.On("MarkSold", ctx, tr.ProductID, tr.ID).Return(nil)

		_, err := svc.Complete(ctx, tr.ID, buyerID)

		assert.NoError(t, err)
		txRepo.AssertExpectations(t)
		productRepo.AssertExpectations(t)
	})

	t.Run("confirmations incomplete", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		productRepo := &mocks.ProductRepository{}
		svc := newService(txRepo, productRepo, &mocks.UserRepository{})

		tr := pendingTransaction()
		tr.Status = model.TransactionStatusConfirmed
		tr.SellerConfirmed = true
		tr.BuyerPaid = false
		txRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)

		_, err := svc.Complete(ctx, tr.ID, sellerID)

		assert.ErrorIs(t, err, service.ErrInvalidState)
		txRepo.AssertNotCalled(t, "AdvanceStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		productRepo.AssertNotCalled(t, "MarkSold", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non-party is forbidden", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		svc := newService(txRepo, &mocks.ProductRepository{}, &mocks.UserRepository{})

		tr := pendingTransaction()
		tr.SellerConfirmed = true
		tr.BuyerPaid = true
		txRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)

		_, err := svc.Complete(ctx, tr.ID, otherID)

		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("mark sold failure does not fail the completion", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		productRepo := &mocks.ProductRepository{}
		svc := newService(txRepo, productRepo, &mocks.UserRepository{})

		tr := pendingTransaction()
		tr.Status = model.TransactionStatusPaymentConfirmed
		tr.SellerConfirmed = true
		tr.BuyerPaid = true
		txRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)
		txRepo.On("AdvanceStatus", ctx, tr.ID, model.TransactionStatusCompleted,
			"transaction completed", mock.AnythingOfType("*string")).Return(nil)
		productRepo.On("MarkSold", ctx, tr.ProductID, tr.ID).Return(errors.New("db down"))

		_, err := svc.Complete(ctx, tr.ID, sellerID)

		assert.NoError(t, err)
	})
}

func TestTransactionService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("buyer cancels and product is released", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		productRepo := &mocks.ProductRepository{}
		svc := newService(txRepo, productRepo, &mocks.UserRepository{})

		tr := pendingTransaction()
		txRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)
		txRepo.On("AdvanceStatus", ctx, tr.ID, model.TransactionStatusCancelled,
			"transaction cancelled: changed mind", mock.AnythingOfType("*string")).Return(nil)
		productRepo.On("Release", ctx, tr.ProductID).Return(nil)

		_, err := svc.Cancel(ctx, tr.ID, buyerID, "changed mind")

		assert.NoError(t, err)
		txRepo.AssertExpectations(t)
		productRepo.AssertExpectations(t)
	})

	t.Run("empty reason gets the plain message", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		productRepo := &mocks.ProductRepository{}
		svc := newService(txRepo, productRepo, &mocks.UserRepository{})

		tr := pendingTransaction()
		txRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)
		txRepo.On("AdvanceStatus", ctx, tr.ID, model.TransactionStatusCancelled,
			"transaction cancelled", mock.AnythingOfType("*string")).Return(nil)
		productRepo.On("Release", ctx, tr.ProductID).Return(nil)

		_, err := svc.Cancel(ctx, tr.ID, sellerID, "   ")

		assert.NoError(t, err)
		txRepo.AssertExpectations(t)
	})

	t.Run("non-party is forbidden", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		productRepo := &mocks.ProductRepository{}
		svc := newService(txRepo, productRepo, &mocks.UserRepository{})

		tr := pendingTransaction()
		txRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)

		_, err := svc.Cancel(ctx, tr.ID, otherID, "")

		assert.ErrorIs(t, err, service.ErrForbidden)
		productRepo.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	})

	t.Run("already terminal", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		svc := newService(txRepo, &mocks.ProductRepository{}, &mocks.UserRepository{})

		tr := pendingTransaction()
		tr.Status = model.TransactionStatusCompleted
		now := time.Now()
		tr.CompletedAt = &now
		txRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)

		_, err := svc.Cancel(ctx, tr.ID, buyerID, "")

		assert.ErrorIs(t, err, service.ErrInvalidState)
	})
}

func TestTransactionService_AddNote(t *testing.T) {
	ctx := context.Background()

	t.Run("empty note rejected before any lookup", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		svc := newService(txRepo, &mocks.ProductRepository{}, &mocks.UserRepository{})

		err := svc.AddNote(ctx, "tx-1", buyerID, "  ")

		assert.ErrorIs(t, err, service.ErrEmptyNote)
		txRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("party appends a note", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		svc := newService(txRepo, &mocks.ProductRepository{}, &mocks.UserRepository{})

		tr := pendingTransaction()
		txRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)
		txRepo.On("AppendNote", ctx, tr.ID, buyerID, "nos vemos en la estación").Return(nil)

		err := svc.AddNote(ctx, tr.ID, buyerID, "nos vemos en la estación")

		assert.NoError(t, err)
		txRepo.AssertExpectations(t)
	})

	t.Run("non-party is forbidden", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		svc := newService(txRepo, &mocks.ProductRepository{}, &mocks.UserRepository{})

		tr := pendingTransaction()
		txRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)

		err := svc.AddNote(ctx, tr.ID, otherID, "hola")

		assert.ErrorIs(t, err, service.ErrForbidden)
		txRepo.AssertNotCalled(t, "AppendNote", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTransactionService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup by id enriches both parties", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		userRepo := &mocks.UserRepository{}
		svc := newService(txRepo, &mocks.ProductRepository{}, userRepo)

		tr := pendingTransaction()
		txRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)
		userRepo.On("FindByID", ctx, buyerID).Return(&model.User{ID: buyerID, Username: "comprador"}, nil)
		userRepo.On("FindByID", ctx, sellerID).Return(&model.User{ID: sellerID, Username: "vendedora"}, nil)

		detail, err := svc.Get(ctx, tr.ID, buyerID)

		assert.NoError(t, err)
		assert.Equal(t, "comprador", detail.Buyer.Username)
		assert.Equal(t, "vendedora", detail.Seller.Username)
	})

	t.Run("falls back to code lookup", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		userRepo := &mocks.UserRepository{}
		svc := newService(txRepo, &mocks.ProductRepository{}, userRepo)

		tr := pendingTransaction()
		txRepo.On("FindByID", ctx, tr.Code).Return(nil, gorm.ErrRecordNotFound)
		txRepo.On("FindByCode", ctx, tr.Code).Return(tr, nil)
		userRepo.On("FindByID", ctx, mock.AnythingOfType("string")).Return(nil, gorm.ErrRecordNotFound)

		detail, err := svc.Get(ctx, tr.Code, sellerID)

		assert.NoError(t, err)
		assert.Equal(t, tr, detail.Transaction)
		assert.Nil(t, detail.Buyer)
	})

	t.Run("non-party is forbidden", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		svc := newService(txRepo, &mocks.ProductRepository{}, &mocks.UserRepository{})

		tr := pendingTransaction()
		txRepo.On("FindByID", ctx, tr.ID).Return(tr, nil)

		_, err := svc.Get(ctx, tr.ID, otherID)

		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("unknown id and code", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		svc := newService(txRepo, &mocks.ProductRepository{}, &mocks.UserRepository{})

		txRepo.On("FindByID", ctx, "nope").Return(nil, gorm.ErrRecordNotFound)
		txRepo.On("FindByCode", ctx, "nope").Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Get(ctx, "nope", buyerID)

		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestTransactionService_Lists(t *testing.T) {
	ctx := context.Background()

	t.Run("page and limit translate to a window", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		svc := newService(txRepo, &mocks.ProductRepository{}, &mocks.UserRepository{})

		txRepo.On("ListByBuyer", ctx, buyerID, 10, 20).Return([]model.Transaction{}, nil)

		_, err := svc.ListPurchases(ctx, buyerID, 3, 10)

		assert.NoError(t, err)
		txRepo.AssertExpectations(t)
	})

	t.Run("defaults applied for out-of-range values", func(t *testing.T) {
		txRepo := &mocks.TransactionRepository{}
		svc := newService(txRepo, &mocks.ProductRepository{}, &mocks.UserRepository{})

		txRepo.On("ListBySeller", ctx, sellerID, 20, 0).Return([]model.Transaction{}, nil)

		_, err := svc.ListSales(ctx, sellerID, 0, 500)

		assert.NoError(t, err)
		txRepo.AssertExpectations(t)
	})
}
