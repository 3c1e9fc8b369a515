package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/phishguard/phishguard-backend/internal/api/rest"
	"github.com/phishguard/phishguard-backend/internal/domain/features"
	"github.com/phishguard/phishguard-backend/internal/domain/policy"
	"github.com/phishguard/phishguard-backend/internal/infrastructure/cache"
	"github.com/phishguard/phishguard-backend/internal/infrastructure/config"
	"github.com/phishguard/phishguard-backend/internal/infrastructure/database"
	"github.com/phishguard/phishguard-backend/internal/infrastructure/repository"
	"github.com/phishguard/phishguard-backend/internal/infrastructure/telemetry"
	"github.com/phishguard/phishguard-backend/internal/metrics"
	judgesvc "github.com/phishguard/phishguard-backend/internal/service/judge"
	"github.com/phishguard/phishguard-backend/internal/service/model"
	"github.com/phishguard/phishguard-backend/internal/service/triage"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		migrate    = flag.Bool("migrate", false, "Run database migrations and exit")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := telemetry.SetupLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := telemetry.InitializeOpenTelemetry(ctx, &telemetry.Config{
		ServiceName:    "phishguard-gateway",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SamplingRate:   cfg.Telemetry.SampleRate,
		ExportTimeout:  cfg.Telemetry.ExportTimeout,
		BatchTimeout:   cfg.Telemetry.BatchTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	if *migrate {
		if cfg.Database.URL == "" {
			log.Fatal("Migrations require a database URL")
		}
		if err := database.RunMigrations("file://migrations", cfg.Database.URL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		logger.Info("migrations completed")
		return
	}

	// The thresholds artifact is the product of offline calibration; a
	// missing or malformed file must stop the gateway, not default.
	thresholds, err := policy.LoadThresholds(cfg.ThresholdsPath)
	if err != nil {
		log.Fatalf("Failed to load thresholds: %v", err)
	}

	tlds, err := features.LoadTLDTable(cfg.TLDProbsPath)
	if err != nil {
		log.Fatalf("Failed to load TLD table: %v", err)
	}
	logger.Info("calibration loaded",
		"thresholds_path", cfg.ThresholdsPath,
		"low", thresholds.Low,
		"high", thresholds.High,
		"tld_entries", tlds.Len())

	registry, err := metrics.NewRegistry("phishguard.gateway")
	if err != nil {
		log.Fatalf("Failed to create metrics registry: %v", err)
	}

	var backend judgesvc.Backend
	switch cfg.Judge.Backend {
	case string(judgesvc.BackendLLM):
		backend = judgesvc.NewLLM(judgesvc.LLMConfig{
			Host:    cfg.Judge.Host,
			Model:   cfg.Judge.Model,
			Timeout: cfg.Judge.Timeout,
		}, logger)
	default:
		backend = judgesvc.NewStub()
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create zap logger: %v", err)
	}
	defer zapLogger.Sync()

	var audit triage.AuditSink
	if cfg.Database.URL != "" {
		pool, err := database.Connect(ctx, &cfg.Database, zapLogger)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		audit = repository.NewAuditRepository(pool)
	} else {
		logger.Warn("no database configured, audit records will be dropped")
	}

	var decisionCache *cache.DecisionCache
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(&cfg.Redis, zapLogger)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisCache.Close()
		decisionCache = cache.NewDecisionCache(redisCache, cfg.Redis.TTL)
	}

	var modelClient model.Client
	if cfg.Model.URL != "" {
		modelClient = model.NewHTTPClient(cfg.Model.URL, cfg.Model.Timeout)
	} else {
		modelClient = model.NewHeuristic()
	}

	routing := triage.RoutingConfig{
		ShortDomainLength:     cfg.Routing.ShortDomainLength,
		ShortDomainConfidence: cfg.Routing.ShortDomainConfidence,
	}

	triageSvc := triage.NewService(
		thresholds,
		features.NewExtractor(tlds),
		backend,
		triage.NewMemoryCounters(),
		audit,
		registry,
		routing,
		logger,
	)

	handler := rest.NewHandler(rest.HandlerDeps{
		Triage:       triageSvc,
		Model:        modelClient,
		Cache:        decisionCache,
		Thresholds:   thresholds,
		TLDs:         tlds,
		Routing:      routing,
		JudgeBackend: cfg.Judge.Backend,
		Logger:       logger,
	})

	router := rest.NewRouter(handler, rest.RouterConfig{
		EnableMetrics:      true,
		EnableRateLimiting: true,
		RequestsPerSecond:  float64(cfg.RateLimit.RequestsPerSecond),
		Burst:              cfg.RateLimit.BurstSize,
		Logger:             logger,
		Registry:           registry,
	})

	server := rest.NewServer(&cfg.Server, router, logger)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
