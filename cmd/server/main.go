package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	lendingapp "github.com/bookloop/backend/internal/application/lending"
	queryapp "github.com/bookloop/backend/internal/application/query"
	reputationapp "github.com/bookloop/backend/internal/application/reputation"
	"github.com/bookloop/backend/internal/domain/lending"
	"github.com/bookloop/backend/internal/domain/shared"
	"github.com/bookloop/backend/internal/infrastructure/cache"
	"github.com/bookloop/backend/internal/infrastructure/config"
	"github.com/bookloop/backend/internal/infrastructure/event"
	ledgerinfra "github.com/bookloop/backend/internal/infrastructure/ledger"
	"github.com/bookloop/backend/internal/infrastructure/logger"
	"github.com/bookloop/backend/internal/infrastructure/persistence"
	"github.com/bookloop/backend/internal/interfaces/http/handler"
	"github.com/bookloop/backend/internal/interfaces/http/middleware"
	"github.com/bookloop/backend/internal/interfaces/http/router"
)

const requestBodyLimit = 1 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting BookLoop backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := persistence.AutoMigrate(db.DB); err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}
	if err := ledgerinfra.Migrate(db.DB); err != nil {
		log.Fatal("Failed to migrate ledger schema", zap.Error(err))
	}
	log.Info("Database ready")

	// Repositories and the ledger
	bookRepo := persistence.NewGormBookRepository(db.DB)
	loanRepo := persistence.NewGormLoanRepository(db.DB)
	statsRepo := persistence.NewGormStatsRepository(db.DB)
	profileRepo := persistence.NewGormProfileRepository(db.DB)
	ledgerAdapter := ledgerinfra.NewGormAdapter(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Event bus with an idempotent reputation projection. Redis backs
	// the dedup keys when configured; otherwise they live in memory.
	eventBus := event.NewInMemoryEventBus(log)
	var dedupStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		dedupStore, err = cache.NewRedisIdempotencyStore(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		log.Info("Redis idempotency store connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		dedupStore = cache.NewInMemoryIdempotencyStore()
	}
	defer func() {
		_ = dedupStore.Close()
	}()

	settledHandler := reputationapp.NewLoanSettledHandler(profileRepo, txManager, log)
	idempotencyCfg := shared.DefaultIdempotencyConfig()
	if cfg.Event.IdempotencyTTL > 0 {
		idempotencyCfg.TTL = cfg.Event.IdempotencyTTL
	}
	eventBus.Subscribe(
		event.NewIdempotentHandler(settledHandler, dedupStore, idempotencyCfg, log),
		settledHandler.EventTypes()...,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	engineService := lendingapp.NewEngineService(bookRepo, loanRepo, statsRepo, ledgerAdapter, txManager)
	engineService.SetEventPublisher(eventBus)
	engineService.SetPolicy(settlementPolicy(cfg.Settlement))
	profileService := reputationapp.NewProfileService(profileRepo, txManager)
	queryService := queryapp.NewService(profileRepo, statsRepo)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(requestBodyLimit),
	)

	router.NewRouter(engine).
		Register(handler.NewBookHandler(engineService)).
		Register(handler.NewLoanHandler(engineService)).
		Register(handler.NewAccountHandler(engineService)).
		Register(handler.NewProfileHandler(profileService)).
		Register(handler.NewQueryHandler(queryService)).
		Register(handler.NewSystemHandler(db)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus stop failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// settlementPolicy maps the configured terms onto the engine's policy.
// The cap stays at the full deposit.
func settlementPolicy(cfg config.SettlementConfig) lending.SettlementPolicy {
	policy := lending.DefaultSettlementPolicy()
	policy.LatePenaltyPerDay = decimal.NewFromFloat(cfg.LatePenaltyPerDay)
	policy.DamagePenaltyRate = decimal.NewFromFloat(cfg.DamagePenaltyRate)
	policy.OwnerReward = decimal.NewFromInt(cfg.OwnerReward)
	policy.BorrowerReward = decimal.NewFromInt(cfg.BorrowerReward)
	return policy
}
