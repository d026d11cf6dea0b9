package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"currency-exchange-cli/internal/adapter/cache"
	httpRouter "currency-exchange-cli/internal/adapter/http"
	"currency-exchange-cli/internal/adapter/repository"
	"currency-exchange-cli/internal/config"
	"currency-exchange-cli/internal/metrics"
	"currency-exchange-cli/internal/service"
	"currency-exchange-cli/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.Env)
	defer log.Sync() //nolint:errcheck
	log.Info("Starting currency exchange server")

	if cfg.ExchangeAPI.APIKey == "" {
		log.Warn("EXCHANGE_API_KEY is empty; every fetch will be rejected")
	}

	appMetrics := metrics.NewMetrics()
	rateRepo := repository.NewExchangeAPI(cfg.ExchangeAPI.BaseURL, cfg.ExchangeAPI.Timeout, log)
	rateCache := cache.NewMemoryCache(rateRepo, cfg.ExchangeAPI.APIKey, log, appMetrics)
	exchangeService := service.NewExchangeService(rateCache, log, appMetrics)

	handler := httpRouter.NewHandler(exchangeService, log)
	router := httpRouter.NewRouter(handler, log, appMetrics)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
