package usecase

import (
	"context"
	"log/slog"
	"time"

	"PublicationIngest/internal/ports"
)

// BatchScheduler wires the interval driver with the ingestion pipeline.
type BatchScheduler struct {
	driver     ports.Scheduler
	pipeline   *Pipeline
	landingURL string
	logger     *slog.Logger
}

// NewBatchScheduler returns a helper to start/stop recurring batches.
func NewBatchScheduler(driver ports.Scheduler, pipeline *Pipeline, landingURL string, logger *slog.Logger) *BatchScheduler {
	return &BatchScheduler{driver: driver, pipeline: pipeline, landingURL: landingURL, logger: logger}
}

// Start registers the batch job with the provided scheduler.
func (s *BatchScheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		summary, err := s.pipeline.RunBatch(ctx, s.landingURL)
		if err != nil {
			if s.logger != nil {
				s.logger.Error("scheduled batch failed", "trigger", trigger, "error", err)
			}
			return
		}
		if s.logger != nil {
			s.logger.Info("scheduled batch finished",
				"trigger", trigger,
				"persisted", summary.Persisted,
				"skipped", summary.Skipped)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *BatchScheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
