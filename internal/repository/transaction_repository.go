package repository

import (
	"context"
	"errors"
	"time"

	"github.com/segundamano/marketplace-backend/internal/model"
	"gorm.io/gorm"
)

// ErrCodeExhausted means the transaction-code generator kept colliding
// with existing codes until the retry cap. With a 36^6 space this only
// happens when something is badly wrong, so it fails loudly.
var ErrCodeExhausted = errors.New("transaction code generation exhausted")

const maxCodeAttempts = 5

type TransactionRepository interface {
	Create(ctx context.Context, t *model.Transaction) error
	FindByID(ctx context.Context, id string) (*model.Transaction, error)
	FindByCode(ctx context.Context, code string) (*model.Transaction, error)
	ListByBuyer(ctx context.Context, buyerID string, limit, offset int) ([]model.Transaction, error)
	ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]model.Transaction, error)
	AdvanceStatus(ctx context.Context, id string, status model.TransactionStatus, message string, byUserID *string) error
	SellerConfirm(ctx context.Context, id, sellerID, paymentMethod string) error
	BuyerConfirmPayment(ctx context.Context, id, buyerID string) error
	AppendNote(ctx context.Context, id, userID, note string) error
}

type transactionRepository struct {
	db *gorm.DB

	// genCode is swapped in tests to force collisions.
	genCode func() (string, error)
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db, genCode: model.GenerateCode}
}

// Create assigns a unique human-facing code and inserts the record
// together with its initial timeline entry in one database transaction.
func (r *transactionRepository) Create(ctx context.Context, t *model.Transaction) error {
	for attempt := 0; ; attempt++ {
		if attempt == maxCodeAttempts {
			return ErrCodeExhausted
		}
		code, err := r.genCode()
		if err != nil {
			return err
		}
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&model.Transaction{}).
			Where("code = ?", code).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			t.Code = code
			break
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Timeline").Create(t).Error; err != nil {
			return err
		}
		event := model.TransactionEvent{
			TransactionID: t.ID,
			Status:        model.TransactionStatusPending,
			Message:       "reservation created",
		}
		return tx.Create(&event).Error
	})
}

func (r *transactionRepository) FindByID(ctx context.Context, id string) (*model.Transaction, error) {
	var t model.Transaction
	if err := r.withTimeline(ctx).First(&t, "transactions.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) FindByCode(ctx context.Context, code string) (*model.Transaction, error) {
	var t model.Transaction
	if err := r.withTimeline(ctx).First(&t, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) ListByBuyer(ctx context.Context, buyerID string, limit, offset int) ([]model.Transaction, error) {
	var list []model.Transaction
	if err := r.withTimeline(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *transactionRepository) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]model.Transaction, error) {
	var list []model.Transaction
	if err := r.withTimeline(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// AdvanceStatus is the single mutation primitive of the ledger: one
// status write plus exactly one appended timeline entry, atomically.
// CompletedAt is stamped on the transition into completed and never
// touched again.
func (r *transactionRepository) AdvanceStatus(ctx context.Context, id string, status model.TransactionStatus, message string, byUserID *string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}
		if status == model.TransactionStatusCompleted {
			updates["completed_at"] = time.Now()
		}
		res := tx.Model(&model.Transaction{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(&model.TransactionEvent{
			TransactionID: id,
			Status:        status,
			Message:       message,
			ByUserID:      byUserID,
		}).Error
	})
}

func (r *transactionRepository) SellerConfirm(ctx context.Context, id, sellerID, paymentMethod string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Transaction{}).
			Where("id = ? AND seller_id = ?", id, sellerID).
			Updates(map[string]interface{}{
				"status":           model.TransactionStatusConfirmed,
				"seller_confirmed": true,
				"payment_method":   paymentMethod,
				"updated_at":       time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(&model.TransactionEvent{
			TransactionID: id,
			Status:        model.TransactionStatusConfirmed,
			Message:       "seller confirmed the sale",
			ByUserID:      &sellerID,
		}).Error
	})
}

func (r *transactionRepository) BuyerConfirmPayment(ctx context.Context, id, buyerID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Transaction{}).
			Where("id = ? AND buyer_id = ?", id, buyerID).
			Updates(map[string]interface{}{
				"status":     model.TransactionStatusPaymentConfirmed,
				"buyer_paid": true,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(&model.TransactionEvent{
			TransactionID: id,
			Status:        model.TransactionStatusPaymentConfirmed,
			Message:       "buyer confirmed the payment",
			ByUserID:      &buyerID,
		}).Error
	})
}

// AppendNote adds a timeline entry labelled with the current status.
// The status itself does not change.
func (r *transactionRepository) AppendNote(ctx context.Context, id, userID, note string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t model.Transaction
		if err := tx.Select("id", "status").First(&t, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Transaction{}).
			Where("id = ?", id).
			Update("updated_at", time.Now()).Error; err != nil {
			return err
		}
		return tx.Create(&model.TransactionEvent{
			TransactionID: id,
			Status:        t.Status,
			Message:       "note added: " + note,
			ByUserID:      &userID,
		}).Error
	})
}

func (r *transactionRepository) withTimeline(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Timeline", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	})
}
