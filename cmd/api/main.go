package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/segundamano/marketplace-backend/internal/config"
	"github.com/segundamano/marketplace-backend/internal/db"
	"github.com/segundamano/marketplace-backend/internal/model"
	"github.com/segundamano/marketplace-backend/internal/server"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	conn, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("db connect error", zap.Error(err))
	}
	if err := conn.AutoMigrate(
		&model.Product{},
		&model.Transaction{},
		&model.TransactionEvent{},
		&model.User{},
	); err != nil {
		logger.Fatal("auto migrate error", zap.Error(err))
	}

	srv, err := server.New(conn, cfg, logger)
	if err != nil {
		logger.Fatal("server init error", zap.Error(err))
	}

	addr := ":" + cfg.Port
	logger.Info("starting server", zap.String("addr", addr))
	if err := srv.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
