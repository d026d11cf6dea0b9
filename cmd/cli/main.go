package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"currency-exchange-cli/internal/adapter/cache"
	"currency-exchange-cli/internal/adapter/cli"
	httpRouter "currency-exchange-cli/internal/adapter/http"
	"currency-exchange-cli/internal/adapter/repository"
	"currency-exchange-cli/internal/config"
	"currency-exchange-cli/internal/metrics"
	"currency-exchange-cli/internal/service"
	"currency-exchange-cli/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	log := logger.New(cfg.LogLevel, cfg.Env)
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appMetrics := metrics.NewMetrics()
	if cfg.Metrics.Addr != "" {
		metricsServer := &http.Server{
			Addr:         cfg.Metrics.Addr,
			Handler:      httpRouter.MetricsRoutes(appMetrics),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		}
		go func() {
			log.Info("Serving metrics", "addr", cfg.Metrics.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Metrics listener stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Error("Metrics listener forced to shutdown", "error", err)
			}
		}()
	}

	rateRepo := repository.NewExchangeAPI(cfg.ExchangeAPI.BaseURL, cfg.ExchangeAPI.Timeout, log)
	rateCache := cache.NewMemoryCache(rateRepo, cfg.ExchangeAPI.APIKey, log, appMetrics)
	exchangeService := service.NewExchangeService(rateCache, log, appMetrics)

	prompt := cli.NewPrompt(exchangeService, os.Stdin, os.Stdout, log)
	if cfg.ExchangeAPI.APIKey == "" {
		key, err := prompt.AskAPIKey(ctx)
		if err != nil {
			return exitCode(log, err)
		}
		exchangeService.SetCredential(key)
	}

	return exitCode(log, prompt.Run(ctx))
}

// exitCode maps the prompt's result to a process status. An interrupt ends
// the session normally.
func exitCode(log *logger.Logger, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stdout)
		return 0
	default:
		log.Error("Input error", "error", err)
		return 1
	}
}
