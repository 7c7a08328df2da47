package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shoreline_portal_backend/internal/adapters"
	"shoreline_portal_backend/internal/cleanupevents"
	"shoreline_portal_backend/internal/email"
	"shoreline_portal_backend/internal/events"
	apphttp "shoreline_portal_backend/internal/http"
	"shoreline_portal_backend/internal/http/router"
	"shoreline_portal_backend/internal/partners"
	"shoreline_portal_backend/internal/prospects"
	"shoreline_portal_backend/internal/prospects/ports"
	"shoreline_portal_backend/platform/ai/gemini"
	"shoreline_portal_backend/platform/config"
	"shoreline_portal_backend/platform/db"
	"shoreline_portal_backend/platform/logger"
	"shoreline_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	var textGen ports.TextGenerator = adapters.NewDisabledTextGenerator()
	if cfg.IsAIEnabled() {
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey: cfg.GetGeminiAPIKey(),
			Model:  cfg.GetGeminiModel(),
		})
		if err != nil {
			log.Error("failed to initialize gemini client", "error", err)
			panic("failed to initialize gemini client: " + err.Error())
		}
		textGen = client
		log.Info("gemini client initialized", "model", cfg.GetGeminiModel())
	} else {
		log.Warn("AI disabled, content generation and discovery unavailable")
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	cleanupModule := cleanupevents.NewModule(pool, val, log)
	partnersModule := partners.NewModule(pool, sender, val, log)
	partnersModule.RegisterHandlers(eventBus)

	// Anti-Corruption Layer adapters: prospects sees the other contexts only
	// through its own port interfaces.
	activityReader := adapters.NewActivityReader(cleanupModule.Service())
	coverageReader := adapters.NewPartnerCoverageReader(partnersModule.Service())

	prospectsModule := prospects.NewModule(prospects.Deps{
		Pool:     pool,
		EventBus: eventBus,
		AI:       textGen,
		Sender:   sender,
		Activity: activityReader,
		Partners: coverageReader,
		Settings: cfg.GetOutreachSettings(),
		Val:      val,
		Log:      log,
	})

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			prospectsModule,
			partnersModule,
			cleanupModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
