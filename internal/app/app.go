package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/lib/pq"

	"ChannelScanner/internal/config"
	"ChannelScanner/internal/domain"
	"ChannelScanner/internal/infrastructure/llm"
	"ChannelScanner/internal/infrastructure/scheduler"
	"ChannelScanner/internal/infrastructure/storage"
	"ChannelScanner/internal/infrastructure/telegram"
	"ChannelScanner/internal/logging"
	"ChannelScanner/internal/ports"
	"ChannelScanner/internal/prompt"
	"ChannelScanner/internal/retry"
	"ChannelScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration. The
// completion and store client handles are built exactly once per process.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	pipeline  *usecase.Pipeline
	source    ports.MessageSource
	scheduler *usecase.Scheduler
}

var (
	initOnce sync.Once
	initApp  *Application
	initErr  error
)

// Init builds the application once; repeated calls return the first result
// without re-creating clients.
func Init(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	initOnce.Do(func() {
		initApp, initErr = newApplication(cfg, baseLogger)
	})
	return initApp, initErr
}

func newApplication(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY not set", domain.ErrConfiguration)
	}

	policy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Delay:       cfg.Retry.Wait(),
	}
	completion := llm.NewGeminiClient(cfg.Gemini, policy, baseLogger.With("component", "llm"))

	var db *sql.DB
	var repository ports.UpdateRepository
	if cfg.Database.DSN != "" {
		opened, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("%w: open store: %v", domain.ErrConfiguration, err)
		}
		db = opened
		repository = storage.NewPostgresRepository(db, baseLogger.With("component", "storage"))
	} else {
		baseLogger.Warn("DATABASE_DSN not set, persistence disabled")
	}

	var notifier ports.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.OpsChatID != "" {
		notifier = telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.OpsChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Completion: completion,
		Repository: repository,
		Notifier:   notifier,
		Prompts:    prompt.NewBuilder(),
		Logger:     baseLogger.With("component", "pipeline"),
	})

	var source ports.MessageSource
	if cfg.Telegram.BotToken != "" {
		source = telegram.NewSource(cfg.Telegram.BotToken, cfg.Telegram.PollTimeoutSeconds,
			baseLogger.With("component", "source"))
	}

	var sched *usecase.Scheduler
	if cfg.Backfill.Enabled && repository != nil {
		backfill := usecase.NewBackfill(repository, pipeline, uint64(cfg.Backfill.Limit),
			baseLogger.With("component", "backfill"))
		sched = usecase.NewScheduler(scheduler.NewTickerScheduler(cfg.Backfill.Interval()), backfill)
	}

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		db:        db,
		pipeline:  pipeline,
		source:    source,
		scheduler: sched,
	}, nil
}

// Pipeline exposes the orchestrator for embedding callers.
func (a *Application) Pipeline() *usecase.Pipeline {
	return a.pipeline
}

// Run starts the backfill scheduler (if configured) and blocks on the
// message source until ctx is done.
func (a *Application) Run(ctx context.Context) error {
	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer func() { _ = a.scheduler.Stop(context.Background()) }()
	}

	if a.source == nil {
		return fmt.Errorf("%w: no message source configured", domain.ErrConfiguration)
	}

	return a.source.Listen(ctx, func(msg domain.RawMessage) {
		a.pipeline.ProcessMessage(ctx, msg)
	})
}

// Close releases the store handle.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
