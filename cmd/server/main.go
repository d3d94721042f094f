package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lendgate/internal/audit"
	"lendgate/internal/loan"
	loanhandler "lendgate/internal/loan/handler"
	loanmetrics "lendgate/internal/loan/metrics"
	"lendgate/internal/platform/config"
	"lendgate/internal/platform/httpserver"
	"lendgate/internal/platform/logger"
	"lendgate/internal/platform/middleware"
	platformredis "lendgate/internal/platform/redis"
	"lendgate/internal/policy"
	"lendgate/internal/vendor"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	// Audit sinks: the file sink is always on, Postgres and Kafka join when
	// configured. The engine itself never touches any of them.
	fileSink, err := audit.NewFileSink(cfg.AuditLogPath)
	if err != nil {
		log.Error("open audit log", "path", cfg.AuditLogPath, "error", err)
		os.Exit(1)
	}
	defer fileSink.Close()
	sinks := []audit.Sink{fileSink}

	var auditStore *audit.PostgresStore
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		auditStore = audit.NewPostgresStore(db)
		if err := auditStore.EnsureSchema(context.Background()); err != nil {
			log.Error("ensure audit schema", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, auditStore)
	}

	if cfg.KafkaBrokers != "" {
		kafkaSink, err := audit.NewKafkaSink(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
	}

	auditor := audit.NewPublisher(audit.NewMultiSink(sinks...))

	// Vendor client, with an optional Redis read-through cache in front.
	var vendorClient vendor.Client = vendor.NewHTTPClient(cfg.VendorURL, vendor.WithTimeout(cfg.VendorTimeout))
	rdb, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
		vendorClient = vendor.NewCachedClient(vendorClient, rdb.Client, cfg.AssessmentTTL, log)
	}

	engine := policy.New(cfg.Mode, policy.DefaultThresholds())
	service := loan.NewService(engine, vendorClient, auditor, log, loanmetrics.New())
	handler := loanhandler.New(service, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientInfo)
	handler.Register(r)
	if auditStore != nil {
		handler.RegisterAudit(r, auditStore)
	}
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, r)

	log.Info("starting lendgate",
		"addr", cfg.Addr,
		"mode", cfg.Mode.Label(),
		"vendor_url", cfg.VendorURL,
		"vendor_timeout", cfg.VendorTimeout,
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
