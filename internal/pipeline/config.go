// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"fmt"

	"github.com/mia-platform/stocksync/internal/shard"
	"github.com/mia-platform/stocksync/internal/source"
	"github.com/mia-platform/stocksync/internal/syncerr"
)

const (
	DefaultBatchSize = 100
	DefaultPageSize  = source.MaxPageSize
)

// Mode selects which products a run processes.
type Mode string

const (
	// ModeFull processes the whole catalog ignoring any watermark.
	ModeFull Mode = "full"
	// ModeIncremental processes only the products changed after the channel watermark.
	ModeIncremental Mode = "incremental"
)

// Modes lists every supported Mode.
var Modes = []Mode{ModeFull, ModeIncremental}

func (m Mode) String() string {
	return string(m)
}

// ParseMode returns the Mode named value.
func ParseMode(value string) (Mode, error) {
	switch mode := Mode(value); mode {
	case ModeFull, ModeIncremental:
		return mode, nil
	default:
		return "", syncerr.InvalidArgument("invalid mode: %q", value)
	}
}

// Config holds the settings of a single run. Zero BatchSize, PageSize and Mode are replaced
// by their defaults.
type Config struct {
	Mode         Mode
	BatchSize    int
	PageSize     int
	TotalWorkers int
	WorkerID     int
}

func (c Config) withDefaults() Config {
	if c.Mode == "" {
		c.Mode = ModeFull
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	return c
}

// Validate reports, without doing any I/O, the first setting a Sync would reject once the
// defaults are applied.
func (c Config) Validate() error {
	return c.withDefaults().validate()
}

func (c Config) validate() error {
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}

	if c.BatchSize < 1 {
		return syncerr.InvalidArgument("batch size must be greater than 0, got %d", c.BatchSize)
	}

	if c.PageSize < source.MinPageSize || c.PageSize > source.MaxPageSize {
		return syncerr.InvalidArgument("page size must be between %d and %d, got %d", source.MinPageSize, source.MaxPageSize, c.PageSize)
	}

	if err := shard.ValidateWorkers(c.TotalWorkers, c.WorkerID); err != nil {
		return fmt.Errorf("invalid worker configuration: %w", err)
	}

	return nil
}
