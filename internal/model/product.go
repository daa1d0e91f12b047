package model

import "time"

type ProductStatus string

const (
	ProductStatusAvailable ProductStatus = "available"
	ProductStatusReserved  ProductStatus = "reserved"
	ProductStatusSold      ProductStatus = "sold"
	ProductStatusInactive  ProductStatus = "inactive"
)

// Categories is the closed set of listing categories. Anything else is
// rejected at creation time.
var Categories = []string{
	"remeras",
	"abrigos",
	"pantalones",
	"vestidos",
	"calzado",
	"accesorios",
}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Product is a single secondhand listing. Stock is always 1 while the
// item is on sale and drops to 0 once sold; there is no restocking.
type Product struct {
	ID                  string        `gorm:"primaryKey;size:36"`
	Name                string        `gorm:"size:120;not null"`
	Description         string        `gorm:"type:text"`
	Price               float64       `gorm:"type:decimal(10,2);not null"`
	Size                string        `gorm:"size:32"`
	Category            string        `gorm:"size:32;index;not null"`
	ImageURL            string        `gorm:"size:512"`
	OwnerID             string        `gorm:"column:owner_id;size:36;index;not null"`
	Status              ProductStatus `gorm:"size:32;index;not null"`
	Stock               uint          `gorm:"not null"`
	ReservedBy          *string       `gorm:"size:36"`
	ActiveTransactionID *string       `gorm:"column:active_transaction_id;size:36"`
	Views               uint64        `gorm:"not null;default:0"`
	CreatedAt           time.Time     `gorm:"autoCreateTime"`
	UpdatedAt           time.Time     `gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}
