package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/segundamano/marketplace-backend/internal/model"
	"github.com/segundamano/marketplace-backend/internal/service"
)

type ProductHandler struct {
	svc service.ProductService
}

func NewProductHandler(svc service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

type ProductResponse struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Description         string  `json:"description"`
	Price               float64 `json:"price"`
	Size                string  `json:"size,omitempty"`
	Category            string  `json:"category"`
	ImageURL            string  `json:"imageUrl,omitempty"`
	OwnerID             string  `json:"ownerId"`
	Status              string  `json:"status"`
	Stock               uint    `json:"stock"`
	ReservedBy          *string `json:"reservedBy,omitempty"`
	ActiveTransactionID *string `json:"activeTransactionId,omitempty"`
	Views               uint64  `json:"views"`
	CreatedAt           string  `json:"createdAt"`
	UpdatedAt           string  `json:"updatedAt"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int64             `json:"total"`
}

func toProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:                  p.ID,
		Name:                p.Name,
		Description:         p.Description,
		Price:               p.Price,
		Size:                p.Size,
		Category:            p.Category,
		ImageURL:            p.ImageURL,
		OwnerID:             p.OwnerID,
		Status:              string(p.Status),
		Stock:               p.Stock,
		ReservedBy:          p.ReservedBy,
		ActiveTransactionID: p.ActiveTransactionID,
		Views:               p.Views,
		CreatedAt:           p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           p.UpdatedAt.Format(time.RFC3339),
	}
}

type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Size        string  `json:"size"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl"`
}

func (h *ProductHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	p, err := h.svc.Create(c.Request().Context(), uid, service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Size:        req.Size,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	products, total, err := h.svc.ListAvailable(c.Request().Context(), page, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch products"))
	}
	resp := ProductListResponse{
		Products: make([]ProductResponse, 0, len(products)),
		Total:    total,
	}
	for i := range products {
		resp.Products = append(resp.Products, toProductResponse(&products[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	products, err := h.svc.ListByOwner(c.Request().Context(), uid, page, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch products"))
	}
	resp := make([]ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

func (h *ProductHandler) ChangeStatus(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req ChangeStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	p, err := h.svc.ChangeStatus(c.Request().Context(), c.Param("id"), uid, model.ProductStatus(req.Status))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}
