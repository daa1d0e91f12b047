package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/segundamano/marketplace-backend/internal/config"
	"github.com/segundamano/marketplace-backend/internal/handler"
	appmw "github.com/segundamano/marketplace-backend/internal/middleware"
	"github.com/segundamano/marketplace-backend/internal/repository"
	"github.com/segundamano/marketplace-backend/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	e *echo.Echo
}

func New(db *gorm.DB, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	productRepo := repository.NewProductRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	userRepo := repository.NewUserRepository(db)

	productSvc := service.NewProductService(productRepo, logger)
	txSvc := service.NewTransactionService(txRepo, productRepo, userRepo, logger)

	productHandler := handler.NewProductHandler(productSvc)
	txHandler := handler.NewTransactionHandler(txSvc)

	authMw, err := appmw.NewAuthMiddleware(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})

	api := e.Group("/api")

	api.GET("/products", productHandler.List)
	api.GET("/products/:id", productHandler.Get)
	api.POST("/products", productHandler.Create, authMw.RequireAuth)
	api.POST("/products/:id/status", productHandler.ChangeStatus, authMw.RequireAuth)
	api.GET("/me/products", productHandler.ListMine, authMw.RequireAuth)

	api.POST("/transactions/reserve", txHandler.Reserve, authMw.RequireAuth)
	api.GET("/transactions/:id", txHandler.Get, authMw.RequireAuth)
	api.GET("/transactions/code/:code", txHandler.GetByCode, authMw.RequireAuth)
	api.GET("/me/purchases", txHandler.ListPurchases, authMw.RequireAuth)
	api.GET("/me/sales", txHandler.ListSales, authMw.RequireAuth)
	api.POST("/transactions/:id/seller-confirm", txHandler.SellerConfirm, authMw.RequireAuth)
	api.POST("/transactions/:id/buyer-confirm-payment", txHandler.BuyerConfirmPayment, authMw.RequireAuth)
	api.POST("/transactions/:id/complete", txHandler.Complete, authMw.RequireAuth)
	api.POST("/transactions/:id/cancel", txHandler.Cancel, authMw.RequireAuth)
	api.POST("/transactions/:id/note", txHandler.AddNote, authMw.RequireAuth)

	return &Server{e: e}, nil
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}
