// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mia-platform/stocksync/internal/destination"
	"github.com/mia-platform/stocksync/internal/logger"
	"github.com/mia-platform/stocksync/internal/shard"
	"github.com/mia-platform/stocksync/internal/source"
	"github.com/mia-platform/stocksync/internal/state"
)

const (
	loggerName = "stocksync:pipeline"
)

// Report summarizes a run. It is returned also when the run fails, with the counts reached
// up to the failure.
type Report struct {
	RunID   string
	Channel string
	Mode    Mode

	// Fetched counts the products received from the source.
	Fetched int
	// Assigned counts the fetched products belonging to the current worker.
	Assigned int
	// Delivered counts the records accepted by the channel.
	Delivered int
	// Batches counts the delivery requests accepted by the channel.
	Batches int

	// Window is the watermark the run started from, nil when every product was requested.
	Window *time.Time
	// Watermark is the value recorded at the end of an incremental run, if any.
	Watermark *time.Time
}

// Pipeline syncs the products of a source to a channel with records of type R.
type Pipeline[R any] struct {
	source  source.ProductSource
	channel destination.Channel[R]
	store   state.Store
}

func New[R any](src source.ProductSource, channel destination.Channel[R], store state.Store) *Pipeline[R] {
	return &Pipeline[R]{
		source:  src,
		channel: channel,
		store:   store,
	}
}

// Sync runs a single sync. Every failure aborts the run: batches already delivered stay
// delivered and the watermark is left untouched.
func (p *Pipeline[R]) Sync(ctx context.Context, cfg Config) (Report, error) {
	cfg = cfg.withDefaults()
	report := Report{
		RunID:   uuid.NewString(),
		Channel: p.channel.Name(),
		Mode:    cfg.Mode,
	}

	if err := cfg.validate(); err != nil {
		return report, err
	}

	log := logger.FromContext(ctx).WithName(loggerName).With("runId", report.RunID, "channel", report.Channel, "mode", report.Mode.String())
	log.Info("starting sync", "totalWorkers", cfg.TotalWorkers, "workerId", cfg.WorkerID, "batchSize", cfg.BatchSize, "pageSize", cfg.PageSize)

	err := p.run(ctx, log, cfg, &report)
	if err != nil {
		log.Error("sync failed", append(reportArgs(report), "error", err)...)
		return report, err
	}

	log.Info("sync completed", reportArgs(report)...)
	return report, nil
}

func (p *Pipeline[R]) run(ctx context.Context, log logger.Logger, cfg Config, report *Report) error {
	changedAfter, err := p.window(ctx, log, cfg.Mode)
	if err != nil {
		return err
	}
	report.Window = changedAfter

	pages, err := p.source.Stream(ctx, cfg.PageSize, changedAfter)
	if err != nil {
		return err
	}

	var latest time.Time
	batch := make([]R, 0, cfg.BatchSize)
	for page, err := range pages {
		if err != nil {
			return err
		}

		report.Fetched += len(page.Data)
		assigned := shard.Filter(page.Data, cfg.TotalWorkers, cfg.WorkerID)
		log.Trace("page received", "page", page.Pagination.Page, "products", len(page.Data), "assigned", len(assigned))

		for _, product := range assigned {
			if report.Assigned == 0 || product.UpdatedAt.After(latest) {
				latest = product.UpdatedAt
			}
			report.Assigned++

			batch = append(batch, p.channel.MapProduct(product))
			if len(batch) < cfg.BatchSize {
				continue
			}

			if err := p.deliver(ctx, log, report, batch); err != nil {
				return err
			}
			batch = make([]R, 0, cfg.BatchSize)
		}
	}

	if err := p.deliver(ctx, log, report, batch); err != nil {
		return err
	}

	if cfg.Mode != ModeIncremental {
		return nil
	}

	if report.Assigned == 0 {
		log.Debug("no product assigned, watermark left untouched")
		return nil
	}

	if err := p.store.RecordWatermark(ctx, report.Channel, latest); err != nil {
		return err
	}
	report.Watermark = &latest
	log.Debug("watermark recorded", "watermark", latest.UTC().Format(time.RFC3339Nano))
	return nil
}

// window returns the changedAfter filter of the run: nil in full mode and on the first
// incremental run of a channel.
func (p *Pipeline[R]) window(ctx context.Context, log logger.Logger, mode Mode) (*time.Time, error) {
	if mode != ModeIncremental {
		return nil, nil
	}

	lastSyncedAt, ok, err := p.store.Watermark(ctx, p.channel.Name())
	if err != nil {
		return nil, err
	}

	if !ok {
		log.Info("no watermark found, syncing every product")
		return nil, nil
	}

	log.Debug("watermark found", "watermark", lastSyncedAt.UTC().Format(time.RFC3339Nano))
	return &lastSyncedAt, nil
}

func (p *Pipeline[R]) deliver(ctx context.Context, log logger.Logger, report *Report, batch []R) error {
	if len(batch) == 0 {
		return nil
	}

	if err := p.channel.Deliver(ctx, batch); err != nil {
		return fmt.Errorf("delivering batch %d: %w", report.Batches+1, err)
	}

	report.Batches++
	report.Delivered += len(batch)
	log.Debug("batch delivered", "batch", report.Batches, "size", len(batch))
	return nil
}

func reportArgs(report Report) []any {
	return []any{
		"fetched", report.Fetched,
		"assigned", report.Assigned,
		"delivered", report.Delivered,
		"batches", report.Batches,
	}
}
