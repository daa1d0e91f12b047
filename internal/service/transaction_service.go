package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/segundamano/marketplace-backend/internal/model"
	"github.com/segundamano/marketplace-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrForbidden    = errors.New("forbidden")
	ErrUnavailable  = errors.New("product unavailable")
	ErrSelfPurchase = errors.New("cannot buy your own product")
	ErrConflict     = errors.New("reservation lost to a concurrent buyer")
	ErrInvalidState = errors.New("invalid transaction state")
	ErrEmptyNote    = errors.New("note is empty")
)

// Reservation is what a successful reserve call hands back to the
// buyer: the fresh transaction plus the seller's contact details.
type Reservation struct {
	Transaction *model.Transaction
	Seller      *model.User
}

// TransactionDetail is a transaction enriched with both parties'
// public profiles.
type TransactionDetail struct {
	Transaction *model.Transaction
	Buyer       *model.User
	Seller      *model.User
}

type TransactionService interface {
	CreateReservation(ctx context.Context, productID, buyerID string) (*Reservation, error)
	Get(ctx context.Context, idOrCode, callerID string) (*TransactionDetail, error)
	ListPurchases(ctx context.Context, buyerID string, page, limit int) ([]model.Transaction, error)
	ListSales(ctx context.Context, sellerID string, page, limit int) ([]model.Transaction, error)
	SellerConfirm(ctx context.Context, transactionID, callerID, paymentMethod string) (*model.Transaction, error)
	BuyerConfirmPayment(ctx context.Context, transactionID, callerID string) (*model.Transaction, error)
	Complete(ctx context.Context, transactionID, callerID string) (*model.Transaction, error)
	Cancel(ctx context.Context, transactionID, callerID, reason string) (*model.Transaction, error)
	AddNote(ctx context.Context, transactionID, callerID, note string) error
}

type transactionService struct {
	txRepo      repository.TransactionRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	logger      *zap.Logger
}

func NewTransactionService(txRepo repository.TransactionRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository, logger *zap.Logger) TransactionService {
	return &transactionService{txRepo: txRepo, productRepo: productRepo, userRepo: userRepo, logger: logger}
}

// CreateReservation opens a transaction and claims the product for the
// buyer. The claim itself is the registry's conditional update, so two
// simultaneous buyers resolve with one winner; the loser's freshly
// created transaction is cancelled on the spot rather than left
// dangling in pending.
func (s *transactionService) CreateReservation(ctx context.Context, productID, buyerID string) (*Reservation, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if product.Status != model.ProductStatusAvailable {
		return nil, ErrUnavailable
	}
	if product.OwnerID == buyerID {
		return nil, ErrSelfPurchase
	}

	t := &model.Transaction{
		ID:                 uuid.NewString(),
		ProductID:          product.ID,
		BuyerID:            buyerID,
		SellerID:           product.OwnerID,
		ProductName:        product.Name,
		ProductDescription: product.Description,
		ProductPrice:       product.Price,
		ProductCategory:    product.Category,
		ProductSize:        product.Size,
		ProductImageURL:    product.ImageURL,
		Status:             model.TransactionStatusPending,
	}
	if err := s.txRepo.Create(ctx, t); err != nil {
		return nil, err
	}

	reserved, err := s.productRepo.Reserve(ctx, product.ID, buyerID, t.ID)
	if err != nil || !reserved {
		// Lost the race after the status pre-check, or the write
		// itself failed. Either way cancel the record we just created
		// so it cannot linger as a pending orphan.
		if cerr := s.txRepo.AdvanceStatus(ctx, t.ID, model.TransactionStatusCancelled,
			"reservation failed: product no longer available", nil); cerr != nil {
			s.logger.Warn("orphaned transaction cleanup failed",
				zap.String("transaction_id", t.ID), zap.Error(cerr))
		}
		if err != nil {
			return nil, err
		}
		return nil, ErrConflict
	}

	s.logger.Info("product reserved",
		zap.String("product_id", product.ID),
		zap.String("transaction_id", t.ID),
		zap.String("transaction_code", t.Code),
		zap.String("buyer_id", buyerID))

	created, err := s.txRepo.FindByID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return &Reservation{Transaction: created, Seller: s.lookupUser(ctx, created.SellerID)}, nil
}

func (s *transactionService) Get(ctx context.Context, idOrCode, callerID string) (*TransactionDetail, error) {
	t, err := s.txRepo.FindByID(ctx, idOrCode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		t, err = s.txRepo.FindByCode(ctx, idOrCode)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !t.IsParty(callerID) {
		return nil, ErrForbidden
	}
	return &TransactionDetail{
		Transaction: t,
		Buyer:       s.lookupUser(ctx, t.BuyerID),
		Seller:      s.lookupUser(ctx, t.SellerID),
	}, nil
}

func (s *transactionService) ListPurchases(ctx context.Context, buyerID string, page, limit int) ([]model.Transaction, error) {
	limit, offset := pageWindow(page, limit)
	return s.txRepo.ListByBuyer(ctx, buyerID, limit, offset)
}

func (s *transactionService) ListSales(ctx context.Context, sellerID string, page, limit int) ([]model.Transaction, error) {
	limit, offset := pageWindow(page, limit)
	return s.txRepo.ListBySeller(ctx, sellerID, limit, offset)
}

func (s *transactionService) SellerConfirm(ctx context.Context, transactionID, callerID, paymentMethod string) (*model.Transaction, error) {
	t, err := s.load(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if t.SellerID != callerID {
		return nil, ErrForbidden
	}
	if t.Status.Terminal() {
		return nil, ErrInvalidState
	}
	if err := s.txRepo.SellerConfirm(ctx, t.ID, callerID, paymentMethod); err != nil {
		return nil, err
	}
	return s.load(ctx, t.ID)
}

func (s *transactionService) BuyerConfirmPayment(ctx context.Context, transactionID, callerID string) (*model.Transaction, error) {
	t, err := s.load(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if t.BuyerID != callerID {
		return nil, ErrForbidden
	}
	if t.Status.Terminal() {
		return nil, ErrInvalidState
	}
	if err := s.txRepo.BuyerConfirmPayment(ctx, t.ID, callerID); err != nil {
		return nil, err
	}
	return s.load(ctx, t.ID)
}

// Complete closes the handshake. The ledger write is the authoritative
// state change; marking the product sold is a follow-up projection,
// logged but not surfaced if it fails.
func (s *transactionService) Complete(ctx context.Context, transactionID, callerID string) (*model.Transaction, error) {
	t, err := s.load(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !t.IsParty(callerID) {
		return nil, ErrForbidden
	}
	if t.Status.Terminal() {
		return nil, ErrInvalidState
	}
	if !t.SellerConfirmed || !t.BuyerPaid {
		return nil, ErrInvalidState
	}
	if err := s.txRepo.AdvanceStatus(ctx, t.ID, model.TransactionStatusCompleted,
		"transaction completed", &callerID); err != nil {
		return nil, err
	}
	if err := s.productRepo.MarkSold(ctx, t.ProductID, t.ID); err != nil {
		s.logger.Warn("mark sold failed after completion",
			zap.String("product_id", t.ProductID),
			zap.String("transaction_id", t.ID),
			zap.Error(err))
	}
	s.logger.Info("transaction completed",
		zap.String("transaction_id", t.ID),
		zap.String("transaction_code", t.Code))
	return s.load(ctx, t.ID)
}

// Cancel is the escape edge: allowed to either party from any
// non-terminal state, and always releases the product back to
// available. Release is idempotent.
func (s *transactionService) Cancel(ctx context.Context, transactionID, callerID, reason string) (*model.Transaction, error) {
	t, err := s.load(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !t.IsParty(callerID) {
		return nil, ErrForbidden
	}
	if t.Status.Terminal() {
		return nil, ErrInvalidState
	}
	message := "transaction cancelled"
	if reason = strings.TrimSpace(reason); reason != "" {
		message = "transaction cancelled: " + reason
	}
	if err := s.txRepo.AdvanceStatus(ctx, t.ID, model.TransactionStatusCancelled, message, &callerID); err != nil {
		return nil, err
	}
	if err := s.productRepo.Release(ctx, t.ProductID); err != nil {
		s.logger.Warn("release failed after cancellation",
			zap.String("product_id", t.ProductID),
			zap.String("transaction_id", t.ID),
			zap.Error(err))
	}
	s.logger.Info("transaction cancelled",
		zap.String("transaction_id", t.ID),
		zap.String("by_user_id", callerID))
	return s.load(ctx, t.ID)
}

func (s *transactionService) AddNote(ctx context.Context, transactionID, callerID, note string) error {
	if strings.TrimSpace(note) == "" {
		return ErrEmptyNote
	}
	t, err := s.load(ctx, transactionID)
	if err != nil {
		return err
	}
	if !t.IsParty(callerID) {
		return ErrForbidden
	}
	return s.txRepo.AppendNote(ctx, t.ID, callerID, note)
}

func (s *transactionService) load(ctx context.Context, id string) (*model.Transaction, error) {
	t, err := s.txRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// lookupUser is best-effort enrichment; a missing directory row never
// fails the workflow call.
func (s *transactionService) lookupUser(ctx context.Context, id string) *model.User {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("user lookup failed", zap.String("user_id", id), zap.Error(err))
		}
		return nil
	}
	return u
}
