// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package state defines how the sync progress of every channel is persisted between runs.
package state

import (
	"context"
	"slices"
	"time"

	"github.com/mia-platform/stocksync/internal/syncerr"
)

// Watermark is the persisted sync progress of one channel.
type Watermark struct {
	// Channel is the unique name of the channel.
	Channel string
	// LastSyncedAt is the highest product update time successfully delivered to the channel.
	LastSyncedAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store persists one watermark per channel. Implementations must be durable across restarts.
type Store interface {
	// Watermark returns the last synced time of channel. ok is false when no incremental
	// sync has ever been recorded for it.
	Watermark(ctx context.Context, channel string) (lastSyncedAt time.Time, ok bool, err error)

	// RecordWatermark stores the maximum of candidates for channel, only when it is strictly
	// after the stored one. Ties and older values are ignored. candidates must not be empty.
	RecordWatermark(ctx context.Context, channel string, candidates ...time.Time) error

	// Get returns the full watermark row of channel, or nil when there is none.
	Get(ctx context.Context, channel string) (*Watermark, error)

	// List returns every stored watermark ordered by channel name.
	List(ctx context.Context) ([]Watermark, error)

	// Close releases the resources held by the store.
	Close() error
}

// MaxCandidate returns the latest of candidates, failing with syncerr.ErrInvalidArgument
// when there are none.
func MaxCandidate(candidates []time.Time) (time.Time, error) {
	if len(candidates) == 0 {
		return time.Time{}, syncerr.InvalidArgument("at least one watermark candidate is required")
	}

	return slices.MaxFunc(candidates, func(a, b time.Time) int {
		return a.Compare(b)
	}), nil
}
