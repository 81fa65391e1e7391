package app

import (
	"context"
	"fmt"
	"log/slog"

	"PublicationIngest/internal/config"
	"PublicationIngest/internal/discovery"
	"PublicationIngest/internal/extract"
	"PublicationIngest/internal/infrastructure/fetch"
	"PublicationIngest/internal/infrastructure/navigator"
	"PublicationIngest/internal/infrastructure/scheduler"
	"PublicationIngest/internal/infrastructure/storage"
	"PublicationIngest/internal/infrastructure/telegram"
	"PublicationIngest/internal/infrastructure/warehouse"
	"PublicationIngest/internal/ingest"
	"PublicationIngest/internal/logging"
	"PublicationIngest/internal/ports"
	"PublicationIngest/internal/usecase"
	"PublicationIngest/pkg/logger"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	pipeline  *usecase.Pipeline
	warehouse *warehouse.PostgresWarehouse
	logger    *slog.Logger
}

// New builds a runnable application instance from configuration.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	if cfg.Pipeline.LandingURL == "" {
		return nil, fmt.Errorf("landing page url is not configured")
	}

	store, err := storage.NewS3Store(ctx, cfg.Storage.Bucket, cfg.Storage.Region)
	if err != nil {
		return nil, fmt.Errorf("object store: %w", err)
	}

	wh, err := warehouse.NewPostgresWarehouse(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("warehouse: %w", err)
	}

	var navigators ports.NavigatorFactory
	switch cfg.Navigator.Engine {
	case "static":
		navigators = navigator.NewStaticFactory(nil)
	default:
		navigators = navigator.NewChromedpFactory(cfg.Navigator.Headless, logger.New("navigator"))
	}

	fetcher := fetch.NewClient(cfg.Pipeline.FetchTimeout.Duration)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Navigators: navigators,
		Store:      store,
		Warehouse:  wh,
		Notifier:   buildNotifier(cfg.Notifications),
		Discoverer: discovery.New(
			cfg.Pipeline.PresenceTimeout.Duration,
			cfg.Pipeline.ClickableTimeout.Duration,
			baseLogger.With("component", "discovery"),
		),
		Extractor: extract.New(
			cfg.Pipeline.BodyTimeout.Duration,
			baseLogger.With("component", "extract"),
		),
		Ingestor: ingest.New(fetcher, store, baseLogger.With("component", "ingest")),
		Logger:   baseLogger.With("component", "pipeline"),

		Workers:      cfg.Pipeline.Workers,
		RetryLimit:   cfg.Pipeline.RetryLimit,
		ImagesPrefix: cfg.Storage.ImagesPrefix,
		PDFsPrefix:   cfg.Storage.PDFsPrefix,
	})

	return &Application{
		cfg:       cfg,
		pipeline:  pipeline,
		warehouse: wh,
		logger:    baseLogger,
	}, nil
}

// Run executes a single batch, or keeps batches recurring when the scheduler
// is enabled.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	if a.cfg.Scheduler.Enabled {
		return a.runScheduled(ctx)
	}

	summary, err := a.pipeline.RunBatch(ctx, a.cfg.Pipeline.LandingURL)
	if err != nil {
		return err
	}
	a.logger.Info("batch summary",
		"discovered", summary.Discovered,
		"persisted", summary.Persisted,
		"skipped", summary.Skipped)
	return nil
}

func (a *Application) runScheduled(ctx context.Context) error {
	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval.Duration)
	batches := usecase.NewBatchScheduler(driver, a.pipeline, a.cfg.Pipeline.LandingURL,
		a.logger.With("component", "scheduler"))

	if err := batches.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return batches.Stop(context.WithoutCancel(ctx))
}

// Close releases pooled resources.
func (a *Application) Close() error {
	if a.warehouse == nil {
		return nil
	}
	return a.warehouse.Close()
}

func buildNotifier(cfg config.NotificationConfig) ports.Notifier {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == "" {
		return nil
	}
	return telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
}
