package repository

import (
	"context"

	"github.com/segundamano/marketplace-backend/internal/model"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	ListAvailable(ctx context.Context, limit, offset int) ([]model.Product, int64, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]model.Product, error)
	Reserve(ctx context.Context, productID, buyerID, transactionID string) (bool, error)
	Release(ctx context.Context, productID string) error
	MarkSold(ctx context.Context, productID, transactionID string) error
	UpdateStatusByOwner(ctx context.Context, productID, ownerID string, from, to model.ProductStatus) (bool, error)
	IncrementViews(ctx context.Context, productID string) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) ListAvailable(ctx context.Context, limit, offset int) ([]model.Product, int64, error) {
	var (
		products []model.Product
		total    int64
	)
	q := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("status = ?", model.ProductStatusAvailable)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Reserve is the single compare-and-swap write of the registry: the
// status condition is part of the UPDATE, so two racing buyers resolve
// with exactly one winner. The owner check rides in the same WHERE so a
// self-purchase can never win the race either.
func (r *productRepository) Reserve(ctx context.Context, productID, buyerID, transactionID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND status = ? AND owner_id <> ?", productID, model.ProductStatusAvailable, buyerID).
		Updates(map[string]interface{}{
			"status":                model.ProductStatusReserved,
			"reserved_by":           buyerID,
			"active_transaction_id": transactionID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Release rolls a reservation back. Unconditional and idempotent:
// releasing an already-available product is a no-op.
func (r *productRepository) Release(ctx context.Context, productID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"status":                model.ProductStatusAvailable,
			"reserved_by":           nil,
			"active_transaction_id": nil,
		}).Error
}

// MarkSold closes the listing. Sold is terminal; callers guarantee no
// further status writes after this one.
func (r *productRepository) MarkSold(ctx context.Context, productID, transactionID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"status":                model.ProductStatusSold,
			"stock":                 0,
			"reserved_by":           nil,
			"active_transaction_id": transactionID,
		}).Error
}

// UpdateStatusByOwner flips a listing between owner-managed states
// (available/inactive). The current status is part of the WHERE, same
// conditional-update shape as Reserve, so it never clobbers a listing
// that a workflow moved to reserved or sold in the meantime.
func (r *productRepository) UpdateStatusByOwner(ctx context.Context, productID, ownerID string, from, to model.ProductStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND owner_id = ? AND status = ?", productID, ownerID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepository) IncrementViews(ctx context.Context, productID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Update("views", gorm.Expr("views + 1")).Error
}
