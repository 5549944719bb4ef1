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

	"lending-workers/internal/assessment"
	"lending-workers/internal/common/aws"
	"lending-workers/internal/common/camunda"
	"lending-workers/internal/common/config"
	"lending-workers/internal/common/database"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/observability"
	"lending-workers/internal/common/validation"
	"lending-workers/internal/community"
	"lending-workers/internal/contract"
	"lending-workers/pkg/registry"

	sdn "lending-workers/internal/workers/communication/send-decision-notification"
	scc "lending-workers/internal/workers/contract/submit-contract-call"
	alv "lending-workers/internal/workers/lending/assess-loan-viability"
	gdp "lending-workers/internal/workers/lending/generate-demo-profile"
	gms "lending-workers/internal/workers/lending/get-mitigation-strategies"
)

const defaultJobTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting worker manager",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(cfg.App.Name, 1.0)
	if err != nil {
		zapLog.Warn("otel metrics exporter unavailable", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("observability shutdown failed", zap.Error(err))
		}
	}()

	// --- Zeebe ---
	zeebe, err := camunda.NewClientWithConfig(&camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.Plaintext,
		RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("zeebe client connected", zap.String("gateway", cfg.Camunda.BrokerAddress))

	// --- Assessment engine ---
	tables := assessment.DefaultTables()
	if cfg.Assessment.TablesPath != "" {
		tables, err = assessment.LoadTables(cfg.Assessment.TablesPath)
		if err != nil {
			zapLog.Fatal("assessment tables invalid", zap.String("path", cfg.Assessment.TablesPath), zap.Error(err))
		}
	}
	policy := assessment.DefaultPolicy()
	policy.CapApprovedAmount = cfg.Assessment.CapApprovedAmount

	engine, err := assessment.NewEngine(assessment.WithTables(tables), assessment.WithPolicy(policy))
	if err != nil {
		zapLog.Fatal("assessment engine failed", zap.Error(err))
	}

	reg := registry.Default()
	validator, err := validation.NewValidator(reg)
	if err != nil {
		zapLog.Fatal("activity registry schemas invalid", zap.Error(err))
	}

	// --- Community store ---
	var (
		pg        *database.PostgresClient
		lookup    alv.CommunityLookup
		readiness = []database.Pinger{}
	)
	if cfg.Assessment.CommunityLookup {
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			zapLog.Fatal("postgres open failed", zap.Error(err))
		}
		defer pg.Close()
		if err := database.WaitReady(ctx, pg, 6, time.Second, retryLogger(zapLog, "postgres")); err != nil {
			zapLog.Fatal("postgres unavailable", zap.Error(err))
		}
		readiness = append(readiness, pg)

		rdb := database.NewRedis(cfg.Database.Redis)
		defer rdb.Close()
		store := community.NewStore(pg.DB, rdb.Client, cfg.Assessment.CacheTTL(), log)
		if err := database.WaitReady(ctx, rdb, 3, time.Second, retryLogger(zapLog, "redis")); err != nil {
			zapLog.Warn("redis unavailable, community cache disabled", zap.Error(err))
			store = community.NewStore(pg.DB, nil, 0, log)
		}
		lookup = store
		zapLog.Info("community lookup enabled", zap.Duration("cacheTTL", cfg.Assessment.CacheTTL()))
	}

	// --- Notification channels ---
	var (
		sms   sdn.SMSSender
		email sdn.EmailSender
	)
	if cfg.Notifications.SMS.Enabled || cfg.Notifications.Email.Enabled {
		awsCfg, err := aws.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config failed", zap.Error(err))
		}
		if cfg.Notifications.SMS.Enabled {
			sms = aws.NewSNSClient(awsCfg)
		}
		if cfg.Notifications.Email.Enabled {
			email = aws.NewSESClient(awsCfg)
		}
	}

	// --- Workers ---
	timeoutFor := func(taskType string) time.Duration {
		if w, ok := cfg.Workers[taskType]; ok {
			return config.GetDuration(w.Timeout)
		}
		activity, _ := reg.Lookup(taskType)
		return activity.JobTimeout(defaultJobTimeout)
	}

	handlers := map[string]camunda.JobHandler{
		alv.TaskType: alv.NewHandler(
			&alv.Config{Timeout: timeoutFor(alv.TaskType)},
			alv.Dependencies{
				Engine:        engine,
				Community:     lookup,
				Validator:     validator,
				Observability: obs,
				Logger:        log,
			},
		),
		gms.TaskType: gms.NewHandler(&gms.Config{Timeout: timeoutFor(gms.TaskType)}, engine, log),
		gdp.TaskType: gdp.NewHandler(&gdp.Config{Timeout: timeoutFor(gdp.TaskType)}, log),
		scc.TaskType: scc.NewHandler(
			&scc.Config{
				AppID:   cfg.Contract.AppID,
				Network: cfg.Contract.Network,
				Timeout: timeoutFor(scc.TaskType),
			},
			contract.New(cfg.Contract.AppID),
			log,
		),
		sdn.TaskType: sdn.NewHandler(
			&sdn.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				SenderID:     cfg.Notifications.SMS.SenderID,
				Timeout:      timeoutFor(sdn.TaskType),
			},
			sms, email, validator, log,
		),
	}

	var workers []*camunda.Worker
	for taskType, handler := range handlers {
		if !config.IsWorkerEnabled(cfg, taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			continue
		}
		wcfg := config.GetWorkerConfig(cfg, taskType)
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), taskType, camunda.WorkerOptions{
			MaxJobsActive:  wcfg.MaxJobsActive,
			Timeout:        timeoutFor(taskType),
			RequestTimeout: config.GetDuration(cfg.Camunda.RequestTimeout),
			Name:           cfg.App.Name,
		}, handler, log))
	}
	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           newMux(zeebe, readiness),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("health/metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("health/metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("shutdown signal received, stopping workers")

	for _, w := range workers {
		w.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("health/metrics server shutdown failed", zap.Error(err))
	}

	zapLog.Info("worker manager stopped")
}

func retryLogger(log *zap.Logger, name string) func(int, error) {
	return func(attempt int, err error) {
		log.Warn(name+" not ready, retrying", zap.Int("attempt", attempt), zap.Error(err))
	}
}

func newMux(zeebe *camunda.Client, deps []database.Pinger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", "")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := zeebe.HealthCheck(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "unavailable", err.Error())
			return
		}
		for _, d := range deps {
			if err := d.Ping(ctx); err != nil {
				writeStatus(w, http.StatusServiceUnavailable, "unavailable", err.Error())
				return
			}
		}
		writeStatus(w, http.StatusOK, "ready", "")
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, status, reason string) {
	body := map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if reason != "" {
		body["reason"] = reason
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
