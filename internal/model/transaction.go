package model

import (
	"crypto/rand"
	"time"
)

type TransactionStatus string

const (
	TransactionStatusPending          TransactionStatus = "pending"
	TransactionStatusConfirmed        TransactionStatus = "confirmed"
	TransactionStatusPaymentConfirmed TransactionStatus = "payment_confirmed"
	TransactionStatusCompleted        TransactionStatus = "completed"
	TransactionStatusCancelled        TransactionStatus = "cancelled"
	TransactionStatusDisputed         TransactionStatus = "disputed"
)

// Terminal reports whether no further transitions are permitted.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusCancelled
}

const (
	TransactionCodePrefix = "TRD-"
	transactionCodeLength = 6
)

var codeAlphabet = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// GenerateCode returns a human-facing transaction code: the fixed
// prefix plus 6 random uppercase alphanumerics. Uniqueness is enforced
// by the caller against the store.
func GenerateCode() (string, error) {
	buf := make([]byte, transactionCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return TransactionCodePrefix + string(buf), nil
}

// Transaction records one buyer/seller handshake over a product. The
// Product* columns are a snapshot taken at reservation time so the
// buyer's receipt survives later edits to the listing. Terminal rows
// are kept forever; nothing here is ever deleted.
type Transaction struct {
	ID        string `gorm:"primaryKey;size:36"`
	Code      string `gorm:"size:16;uniqueIndex:uk_transactions_code;not null"`
	ProductID string `gorm:"size:36;index;not null"`
	BuyerID   string `gorm:"size:36;index;not null"`
	SellerID  string `gorm:"size:36;index;not null"`

	ProductName        string  `gorm:"size:120;not null"`
	ProductDescription string  `gorm:"type:text"`
	ProductPrice       float64 `gorm:"type:decimal(10,2)"`
	ProductCategory    string  `gorm:"size:32"`
	ProductSize        string  `gorm:"size:32"`
	ProductImageURL    string  `gorm:"size:512"`

	Status          TransactionStatus `gorm:"size:32;index;not null"`
	SellerConfirmed bool              `gorm:"not null;default:false"`
	BuyerPaid       bool              `gorm:"not null;default:false"`
	PaymentMethod   string            `gorm:"size:64"`
	Notes           string            `gorm:"type:text"`

	Timeline []TransactionEvent `gorm:"foreignKey:TransactionID"`

	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
	CompletedAt *time.Time
	ExpiresAt   *time.Time // placeholder, reservations never auto-expire
}

func (Transaction) TableName() string {
	return "transactions"
}

// IsParty reports whether uid is the buyer or the seller.
func (t *Transaction) IsParty(uid string) bool {
	return uid == t.BuyerID || uid == t.SellerID
}

// TransactionEvent is one append-only timeline entry. The autoincrement
// id doubles as the ordering key. ByUserID is nil for system entries.
type TransactionEvent struct {
	ID            uint64            `gorm:"primaryKey;autoIncrement"`
	TransactionID string            `gorm:"size:36;index;not null"`
	Status        TransactionStatus `gorm:"size:32;not null"`
	Message       string            `gorm:"type:text"`
	ByUserID      *string           `gorm:"size:36"`
	CreatedAt     time.Time         `gorm:"autoCreateTime"`
}

func (TransactionEvent) TableName() string {
	return "transaction_events"
}
