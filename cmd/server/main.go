package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/commerce-app/internal/config"
	"github.com/diewo77/commerce-app/internal/db"
	"github.com/diewo77/commerce-app/internal/logger"
	"github.com/diewo77/commerce-app/internal/server"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	if migrateOnlyFlag != nil && *migrateOnlyFlag {
		if err := db.RunMigrations(cfg.DatabaseDSN); err != nil {
			log.Fatalf("migrate-only failed: %v", err)
		}
		log.Println("migrations completed; exiting as requested")
		return
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	dbConn, err := db.ConnectAndMigrate(cfg.DatabaseDSN)
	if err != nil {
		zl.Fatal("db connection failed", zap.Error(err))
	}
	zl.Info("starting server", zap.String("env", cfg.Env), zap.String("port", cfg.Port))

	handler := logger.RequestLog(server.New(dbConn, cfg.VATRate), zl)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: handler}

	go func() {
		zl.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("error during shutdown", zap.Error(err))
	}
	zl.Info("server gracefully stopped")
}
