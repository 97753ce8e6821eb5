package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"ChannelScanner/internal/ports"
)

// Backfill re-runs the pipeline over recently stored rows. Deduplication
// makes the pass idempotent: already-extracted messages come back as
// duplicate skips.
type Backfill struct {
	repository ports.UpdateRepository
	pipeline   *Pipeline
	limit      uint64
	logger     *slog.Logger
}

// NewBackfill wires the repository feeding the pass and the pipeline
// consuming it.
func NewBackfill(repo ports.UpdateRepository, pipeline *Pipeline, limit uint64, logger *slog.Logger) *Backfill {
	return &Backfill{repository: repo, pipeline: pipeline, limit: limit, logger: logger}
}

// Run processes up to limit stored rows, continuing past per-message errors.
func (b *Backfill) Run(ctx context.Context) error {
	if b.repository == nil || b.pipeline == nil {
		return nil
	}

	messages, err := b.repository.ListRecent(ctx, b.limit)
	if err != nil {
		return fmt.Errorf("list recent rows: %w", err)
	}

	for _, msg := range messages {
		res := b.pipeline.ProcessMessage(ctx, msg)
		if res.ErrorMessage != "" && b.logger != nil {
			b.logger.Warn("backfill row finished with error", "link", msg.Link, "error", res.ErrorMessage)
		}
	}

	if b.logger != nil {
		b.logger.Info("backfill pass done", "rows", len(messages))
	}
	return nil
}
