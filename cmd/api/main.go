package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielokoh/accounts-transfer-service/internal/config"
	"github.com/danielokoh/accounts-transfer-service/internal/handler"
	"github.com/danielokoh/accounts-transfer-service/internal/logging"
	"github.com/danielokoh/accounts-transfer-service/internal/middleware"
	"github.com/danielokoh/accounts-transfer-service/internal/notification"
	"github.com/danielokoh/accounts-transfer-service/internal/repository"
	"github.com/danielokoh/accounts-transfer-service/internal/service/ledger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init("accounts-api", cfg.LogLevel, cfg.AppEnv)

	store := repository.NewAccountStore()

	notifier := notification.NewLogNotifier(logger)
	dispatcher := notification.NewDispatcher(notifier, cfg.NotifyBufferSize, logger)

	dispatchCtx, stopDispatcher := context.WithCancel(context.Background())
	go dispatcher.Start(dispatchCtx)

	ledgerService := ledger.New(store, dispatcher)

	accountHandler := handler.NewAccountHandler(ledgerService)
	transferHandler := handler.NewTransferHandler(ledgerService)
	healthHandler := handler.NewHealthHandler(store)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("POST /v1/accounts", accountHandler.Create)
	mux.HandleFunc("GET /v1/accounts/{accountID}", accountHandler.Get)
	mux.HandleFunc("POST /v1/accounts/{accountID}/deposit", accountHandler.Deposit)
	mux.HandleFunc("POST /v1/accounts/{accountID}/withdraw", accountHandler.Withdraw)
	mux.HandleFunc("POST /v1/transfers", transferHandler.Create)

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutS)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	stopDispatcher()
	slog.Info("server stopped")
}
