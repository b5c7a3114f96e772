// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"professionals-admin/internal/common/camunda"
	"professionals-admin/internal/common/config"
	apihttp "professionals-admin/internal/common/http"
	"professionals-admin/internal/common/logger"
	"professionals-admin/internal/common/observability"
	"professionals-admin/internal/dataprovider"
	"professionals-admin/internal/professionals"
	"professionals-admin/pkg/registry"

	bulk "professionals-admin/internal/workers/professionals/bulk-upsert-professionals"
	create "professionals-admin/internal/workers/professionals/create-professional"
	list "professionals-admin/internal/workers/professionals/list-professionals"
	upload "professionals-admin/internal/workers/professionals/upload-resume"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("apiBaseURL", cfg.API.BaseURL),
	)

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	zeebe, err := camunda.NewClient(ctx, camunda.ConfigFrom(cfg.Camunda), func(attempt int, delay time.Duration, err error) {
		zapLog.Warn("Zeebe client initialization failed, retrying...",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("nextRetryIn", delay),
		)
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- Professionals API ---
	api := apihttp.NewClient(apihttp.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: config.GetDuration(cfg.API.Timeout),
		Logger:  log,
	})
	client := professionals.NewClient(
		dataprovider.New(api),
		professionals.WithResource(cfg.API.Resource),
		professionals.WithLogger(log),
	)

	reg, err := registry.Default()
	if err != nil {
		zapLog.Fatal("activity registry failed to load", zap.Error(err))
	}

	workers := camunda.NewWorkers(zeebe.GetClient(), zapLog)
	if err := startWorkers(workers, cfg, reg, client, obs, log); err != nil {
		zapLog.Fatal("worker setup failed", zap.Error(err))
	}
	zapLog.Info("Workers registered", zap.Int("count", workers.Count()))

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              cfg.Metrics.Address,
		Handler:           healthMux(zeebe),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	workers.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}

func startWorkers(
	workers *camunda.Workers,
	cfg *config.Config,
	reg *registry.ActivityRegistry,
	client *professionals.Client,
	obs *observability.Observability,
	log logger.Logger,
) error {
	timeout := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	listHandler, err := list.NewHandler(list.HandlerOptions{
		Config:   &list.Config{Timeout: timeout(list.TaskType), IncludeResume: true},
		Lister:   client,
		Registry: reg,
		Logger:   log,
	})
	if err != nil {
		return err
	}
	workers.Start(list.TaskType, config.GetWorkerConfig(cfg, list.TaskType), listHandler.Handle)

	createHandler, err := create.NewHandler(create.HandlerOptions{
		Config:   &create.Config{Timeout: timeout(create.TaskType)},
		Creator:  client,
		Registry: reg,
		Observer: obs,
		Logger:   log,
	})
	if err != nil {
		return err
	}
	workers.Start(create.TaskType, config.GetWorkerConfig(cfg, create.TaskType), createHandler.Handle)

	bulkConfig := bulk.DefaultConfig()
	bulkConfig.Timeout = timeout(bulk.TaskType)
	bulkHandler, err := bulk.NewHandler(bulk.HandlerOptions{
		Config:    bulkConfig,
		Submitter: client,
		Registry:  reg,
		Observer:  obs,
		Logger:    log,
	})
	if err != nil {
		return err
	}
	workers.Start(bulk.TaskType, config.GetWorkerConfig(cfg, bulk.TaskType), bulkHandler.Handle)

	uploadConfig := upload.DefaultConfig()
	uploadConfig.Timeout = timeout(upload.TaskType)
	uploadHandler, err := upload.NewHandler(upload.HandlerOptions{
		Config:   uploadConfig,
		Uploader: client,
		Registry: reg,
		Observer: obs,
		Logger:   log,
	})
	if err != nil {
		return err
	}
	workers.Start(upload.TaskType, config.GetWorkerConfig(cfg, upload.TaskType), uploadHandler.Handle)

	return nil
}

func healthMux(zeebe *camunda.Client) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
