package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/segundamano/marketplace-backend/internal/model"
	"github.com/segundamano/marketplace-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Size        string
	Category    string
	ImageURL    string
}

type ProductService interface {
	Create(ctx context.Context, ownerID string, in CreateProductInput) (*model.Product, error)
	Get(ctx context.Context, id string) (*model.Product, error)
	ListAvailable(ctx context.Context, page, limit int) ([]model.Product, int64, error)
	ListByOwner(ctx context.Context, ownerID string, page, limit int) ([]model.Product, error)
	ChangeStatus(ctx context.Context, id, ownerID string, status model.ProductStatus) (*model.Product, error)
}

type productService struct {
	repo   repository.ProductRepository
	logger *zap.Logger
}

func NewProductService(repo repository.ProductRepository, logger *zap.Logger) ProductService {
	return &productService{repo: repo, logger: logger}
}

func (s *productService) Create(ctx context.Context, ownerID string, in CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 120 {
		return nil, fmt.Errorf("%w: invalid name", ErrInvalidInput)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", ErrInvalidInput)
	}
	category := strings.TrimSpace(in.Category)
	if !model.ValidCategory(category) {
		return nil, fmt.Errorf("%w: unknown category", ErrInvalidInput)
	}
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}

	p := &model.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Size:        strings.TrimSpace(in.Size),
		Category:    category,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		OwnerID:     ownerID,
		Status:      model.ProductStatusAvailable,
		Stock:       1,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("product listed",
		zap.String("product_id", p.ID),
		zap.String("owner_id", ownerID),
		zap.String("category", category))
	return p, nil
}

func (s *productService) Get(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		s.logger.Warn("view counter bump failed", zap.String("product_id", id), zap.Error(err))
	}
	return p, nil
}

func (s *productService) ListAvailable(ctx context.Context, page, limit int) ([]model.Product, int64, error) {
	limit, offset := pageWindow(page, limit)
	return s.repo.ListAvailable(ctx, limit, offset)
}

func (s *productService) ListByOwner(ctx context.Context, ownerID string, page, limit int) ([]model.Product, error) {
	limit, offset := pageWindow(page, limit)
	return s.repo.ListByOwner(ctx, ownerID, limit, offset)
}

// ChangeStatus lets the owner toggle a listing between available and
// inactive. Reserved and sold are workflow-owned states and cannot be
// entered or left here.
func (s *productService) ChangeStatus(ctx context.Context, id, ownerID string, status model.ProductStatus) (*model.Product, error) {
	if status != model.ProductStatusAvailable && status != model.ProductStatusInactive {
		return nil, ErrInvalidState
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	if p.Status != model.ProductStatusAvailable && p.Status != model.ProductStatusInactive {
		return nil, ErrInvalidState
	}
	ok, err := s.repo.UpdateStatusByOwner(ctx, id, ownerID, p.Status, status)
	if err != nil {
		return nil, err
	}
	if !ok {
		// status moved under us between the read and the write
		return nil, ErrInvalidState
	}
	p.Status = status
	return p, nil
}

func pageWindow(page, limit int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}
