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
	"shoreline_portal_backend/internal/partners"
	"shoreline_portal_backend/internal/prospects"
	"shoreline_portal_backend/internal/prospects/ports"
	"shoreline_portal_backend/internal/scheduler"
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

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	}

	val := validator.New()

	// Worker-side outreach wiring (no HTTP handlers required).
	cleanupModule := cleanupevents.NewModule(pool, val, log)
	partnersModule := partners.NewModule(pool, sender, val, log)
	partnersModule.RegisterHandlers(eventBus)

	prospectsModule := prospects.NewModule(prospects.Deps{
		Pool:     pool,
		EventBus: eventBus,
		AI:       textGen,
		Sender:   sender,
		Activity: adapters.NewActivityReader(cleanupModule.Service()),
		Partners: adapters.NewPartnerCoverageReader(partnersModule.Service()),
		Settings: cfg.GetOutreachSettings(),
		Val:      val,
		Log:      log,
	})

	dispatcher, err := scheduler.NewDispatcher(cfg, log)
	if err != nil {
		log.Error("failed to initialize dispatcher", "error", err)
		panic("failed to initialize dispatcher: " + err.Error())
	}
	defer func() { _ = dispatcher.Close() }()
	go dispatcher.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, prospectsModule.Orchestrator(), prospectsModule.Scorer(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
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
