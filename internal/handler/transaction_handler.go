package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/segundamano/marketplace-backend/internal/model"
	"github.com/segundamano/marketplace-backend/internal/service"
)

type TransactionHandler struct {
	svc service.TransactionService
}

func NewTransactionHandler(svc service.TransactionService) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

type TimelineEventResponse struct {
	Status    string  `json:"status"`
	Message   string  `json:"message"`
	ByUserID  *string `json:"byUserId,omitempty"`
	Timestamp string  `json:"timestamp"`
}

type ProductSnapshotResponse struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Size        string  `json:"size"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

type PartyResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	Whatsapp    string `json:"whatsapp,omitempty"`
}

type TransactionResponse struct {
	ID              string                  `json:"id"`
	Code            string                  `json:"code"`
	ProductID       string                  `json:"productId"`
	BuyerID         string                  `json:"buyerId"`
	SellerID        string                  `json:"sellerId"`
	ProductSnapshot ProductSnapshotResponse `json:"productSnapshot"`
	Status          string                  `json:"status"`
	SellerConfirmed bool                    `json:"sellerConfirmed"`
	BuyerPaid       bool                    `json:"buyerPaid"`
	PaymentMethod   string                  `json:"paymentMethod,omitempty"`
	Timeline        []TimelineEventResponse `json:"timeline"`
	Buyer           *PartyResponse          `json:"buyer,omitempty"`
	Seller          *PartyResponse          `json:"seller,omitempty"`
	CreatedAt       string                  `json:"createdAt"`
	UpdatedAt       string                  `json:"updatedAt"`
	CompletedAt     *string                 `json:"completedAt,omitempty"`
}

func toPartyResponse(u *model.User) *PartyResponse {
	if u == nil {
		return nil
	}
	return &PartyResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Whatsapp:    u.Whatsapp,
	}
}

func toTransactionResponse(t *model.Transaction, buyer, seller *model.User) TransactionResponse {
	var completedAt *string
	if t.CompletedAt != nil {
		val := t.CompletedAt.Format(time.RFC3339)
		completedAt = &val
	}
	timeline := make([]TimelineEventResponse, 0, len(t.Timeline))
	for _, ev := range t.Timeline {
		timeline = append(timeline, TimelineEventResponse{
			Status:    string(ev.Status),
			Message:   ev.Message,
			ByUserID:  ev.ByUserID,
			Timestamp: ev.CreatedAt.Format(time.RFC3339),
		})
	}
	return TransactionResponse{
		ID:        t.ID,
		Code:      t.Code,
		ProductID: t.ProductID,
		BuyerID:   t.BuyerID,
		SellerID:  t.SellerID,
		ProductSnapshot: ProductSnapshotResponse{
			Name:        t.ProductName,
			Description: t.ProductDescription,
			Price:       t.ProductPrice,
			Category:    t.ProductCategory,
			Size:        t.ProductSize,
			ImageURL:    t.ProductImageURL,
		},
		Status:          string(t.Status),
		SellerConfirmed: t.SellerConfirmed,
		BuyerPaid:       t.BuyerPaid,
		PaymentMethod:   t.PaymentMethod,
		Timeline:        timeline,
		Buyer:           toPartyResponse(buyer),
		Seller:          toPartyResponse(seller),
		CreatedAt:       t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       t.UpdatedAt.Format(time.RFC3339),
		CompletedAt:     completedAt,
	}
}

type ReserveRequest struct {
	ProductID string `json:"productId"`
}

func (h *TransactionHandler) Reserve(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req ReserveRequest
	if err := c.Bind(&req); err != nil || req.ProductID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "productId is required"))
	}
	r, err := h.svc.CreateReservation(c.Request().Context(), req.ProductID, uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toTransactionResponse(r.Transaction, nil, r.Seller))
}

func (h *TransactionHandler) Get(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	detail, err := h.svc.Get(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTransactionResponse(detail.Transaction, detail.Buyer, detail.Seller))
}

func (h *TransactionHandler) GetByCode(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	detail, err := h.svc.Get(c.Request().Context(), c.Param("code"), uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTransactionResponse(detail.Transaction, detail.Buyer, detail.Seller))
}

func (h *TransactionHandler) ListPurchases(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	list, err := h.svc.ListPurchases(c.Request().Context(), uid, page, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch purchases"))
	}
	return c.JSON(http.StatusOK, toTransactionListResponse(list))
}

func (h *TransactionHandler) ListSales(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	list, err := h.svc.ListSales(c.Request().Context(), uid, page, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch sales"))
	}
	return c.JSON(http.StatusOK, toTransactionListResponse(list))
}

func toTransactionListResponse(list []model.Transaction) []TransactionResponse {
	resp := make([]TransactionResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toTransactionResponse(&list[i], nil, nil))
	}
	return resp
}

type SellerConfirmRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

func (h *TransactionHandler) SellerConfirm(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req SellerConfirmRequest
	_ = c.Bind(&req)
	t, err := h.svc.SellerConfirm(c.Request().Context(), c.Param("id"), uid, req.PaymentMethod)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTransactionResponse(t, nil, nil))
}

func (h *TransactionHandler) BuyerConfirmPayment(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	t, err := h.svc.BuyerConfirmPayment(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTransactionResponse(t, nil, nil))
}

func (h *TransactionHandler) Complete(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	t, err := h.svc.Complete(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTransactionResponse(t, nil, nil))
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

func (h *TransactionHandler) Cancel(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req CancelRequest
	_ = c.Bind(&req)
	t, err := h.svc.Cancel(c.Request().Context(), c.Param("id"), uid, req.Reason)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTransactionResponse(t, nil, nil))
}

type AddNoteRequest struct {
	Note string `json:"note"`
}

func (h *TransactionHandler) AddNote(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req AddNoteRequest
	_ = c.Bind(&req)
	if err := h.svc.AddNote(c.Request().Context(), c.Param("id"), uid, req.Note); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
