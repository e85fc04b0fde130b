// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/mia-platform/stocksync/internal/config"
	"github.com/mia-platform/stocksync/internal/destination"
	"github.com/mia-platform/stocksync/internal/destination/makro"
	"github.com/mia-platform/stocksync/internal/destination/remote"
	"github.com/mia-platform/stocksync/internal/destination/woo"
	"github.com/mia-platform/stocksync/internal/destination/writer"
	"github.com/mia-platform/stocksync/internal/pipeline"
	"github.com/mia-platform/stocksync/internal/shard"
	"github.com/mia-platform/stocksync/internal/source"
	"github.com/mia-platform/stocksync/internal/state"
	"github.com/mia-platform/stocksync/internal/state/sqlite"
)

type syncOptions struct {
	target       string
	mode         string
	totalWorkers int
	workerID     int
	batchSize    int
	batchSizeSet bool
	configFile   string
	statePath    string
	localOutput  bool

	out io.Writer

	lock sync.Mutex
}

// validate checks every flag value without doing any I/O.
func (o *syncOptions) validate() error {
	if o.target == "" {
		return errMissingTarget
	}

	if _, ok := availableTargets[o.target]; !ok {
		return fmt.Errorf("%w: %s", errInvalidTarget, o.target)
	}

	if _, err := pipeline.ParseMode(o.mode); err != nil {
		return fmt.Errorf("%w: %s", errInvalidMode, o.mode)
	}

	if err := shard.ValidateWorkers(o.totalWorkers, o.workerID); err != nil {
		return fmt.Errorf("%w: %d workers, worker %d", errInvalidWorkers, o.totalWorkers, o.workerID)
	}

	if o.batchSizeSet && o.batchSize < 1 {
		return fmt.Errorf("%w: must be greater than 0, got %d", errInvalidBatchSize, o.batchSize)
	}

	return nil
}

// execute runs a single sync of the target channel.
func (o *syncOptions) execute(ctx context.Context) error {
	if !o.lock.TryLock() {
		return nil
	}
	defer o.lock.Unlock()

	settings, err := config.NewSettingsFromPath(o.configFile)
	if err != nil {
		return err
	}

	mode, _ := pipeline.ParseMode(o.mode)
	cfg := pipeline.Config{
		Mode:         mode,
		BatchSize:    o.resolveBatchSize(settings),
		PageSize:     settings.PageSize,
		TotalWorkers: o.totalWorkers,
		WorkerID:     o.workerID,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	src, err := sourceGetter(ctx)
	if err != nil {
		return err
	}

	sender, err := o.sender(ctx)
	if err != nil {
		return err
	}

	store, err := sqlite.Open(ctx, o.statePath)
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Fprintln(o.out, startMessage(mode, o.target, o.totalWorkers, o.workerID))

	var report pipeline.Report
	switch o.target {
	case makro.Name:
		report, err = runSync(ctx, src, makro.New(sender), store, cfg)
	case woo.Name:
		report, err = runSync(ctx, src, woo.New(sender), store, cfg)
	}
	if err != nil {
		return fmt.Errorf("sync failed after %d delivered updates: %w", report.Delivered, err)
	}

	fmt.Fprintf(o.out, "Sync completed: %d fetched, %d assigned, %d delivered in %d batches\n",
		report.Fetched, report.Assigned, report.Delivered, report.Batches)
	return nil
}

// resolveBatchSize applies the flag, then the config file value. Zero leaves the pipeline default.
func (o *syncOptions) resolveBatchSize(settings *config.Settings) int {
	if o.batchSizeSet {
		return o.batchSize
	}

	return settings.BatchSize(o.target)
}

func (o *syncOptions) sender(ctx context.Context) (destination.Sender, error) {
	if o.localOutput {
		return writer.NewSender(o.out, o.target), nil
	}

	sender, err := remote.NewSender(ctx, o.target)
	if err != nil {
		return nil, err
	}
	return sender, nil
}

func runSync[R any](ctx context.Context, src source.ProductSource, channel destination.Channel[R], store state.Store, cfg pipeline.Config) (pipeline.Report, error) {
	return pipeline.New(src, channel, store).Sync(ctx, cfg)
}

func startMessage(mode pipeline.Mode, target string, totalWorkers, workerID int) string {
	message := fmt.Sprintf("Starting %s sync to %s", mode, target)
	if totalWorkers > 1 {
		message += fmt.Sprintf(" (worker %d/%d)", workerID+1, totalWorkers)
	}
	return message
}
