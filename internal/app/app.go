// Package app собирает приложение: хранилище, сервисы, метрики и
// консольное меню.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/retail-oms/internal/cli"
	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/retail-oms/internal/health"
	"github.com/vladislavdragonenkov/retail-oms/internal/metrics"
	"github.com/vladislavdragonenkov/retail-oms/internal/service/inventory"
	"github.com/vladislavdragonenkov/retail-oms/internal/service/orders"
	"github.com/vladislavdragonenkov/retail-oms/internal/service/purge"
	"github.com/vladislavdragonenkov/retail-oms/internal/service/reports"
	"github.com/vladislavdragonenkov/retail-oms/internal/service/returns"
	"github.com/vladislavdragonenkov/retail-oms/internal/storage/memory"
	"github.com/vladislavdragonenkov/retail-oms/internal/storage/postgres"
	"github.com/vladislavdragonenkov/retail-oms/internal/version"
)

// Run запускает приложение и блокируется до выхода из меню или отмены
// контекста.
func Run(ctx context.Context, cfg Config) error {
	baseLogger := log.StandardLogger()
	logger := baseLogger.WithField("component", "app")

	storage, cleanup, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	orderMetrics := metrics.NewOrderMetrics()
	ledger := inventory.NewLedger(baseLogger, orderMetrics)
	composer := orders.NewComposer(storage, ledger, baseLogger, orderMetrics)
	processor := returns.NewProcessor(storage, ledger, baseLogger, orderMetrics).
		WithWindow(time.Duration(cfg.ReturnWindowDays) * 24 * time.Hour)
	purger := purge.NewPurger(storage, baseLogger, orderMetrics).
		WithRetention(cfg.RetentionMonths)
	reportSvc := reports.NewService(storage, baseLogger)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("storage",
		healthcheck.NewStorageChecker("storage", storage, 2*time.Second))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)
	defer shutdownHTTP(metricsSrv, logger)

	menu := cli.New(storage, composer, processor, purger, reportSvc,
		baseLogger, os.Stdin, os.Stdout)

	logger.WithFields(log.Fields{
		"storage":      cfg.StorageBackend,
		"metrics_addr": cfg.MetricsAddr,
	}).Info("приложение запущено")

	if err := menu.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// initStorage выбирает бэкенд по конфигурации. Память наполняется
// демонстрационными данными, postgres мигрируется до актуальной схемы.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (domain.Storage, func(), error) {
	switch cfg.StorageBackend {
	case StoragePostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("init postgres storage: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("хранилище postgres готово")
		return store, func() { _ = store.Close() }, nil
	case StorageMemory:
		store := memory.NewStore()
		if err := seedDemoData(ctx, store); err != nil {
			return nil, nil, fmt.Errorf("seed demo data: %w", err)
		}
		logger.Info("хранилище в памяти наполнено демо-данными")
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
