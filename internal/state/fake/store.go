// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"maps"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/mia-platform/stocksync/internal/state"
)

var _ state.Store = &Store{}

// Store is an in-memory state.Store recording every RecordWatermark call.
type Store struct {
	tb testing.TB

	// Err, when set, is returned by every operation.
	Err error
	// RecordErr, when set, is returned by RecordWatermark only.
	RecordErr error
	// Records holds the candidates received by each RecordWatermark call.
	Records [][]time.Time

	lock       sync.Mutex
	watermarks map[string]state.Watermark
}

// NewStore returns an empty Store.
func NewStore(tb testing.TB) *Store {
	tb.Helper()
	return &Store{
		tb:         tb,
		watermarks: make(map[string]state.Watermark),
	}
}

// Seed stores lastSyncedAt for channel as if a previous run had recorded it.
func (s *Store) Seed(channel string, lastSyncedAt time.Time) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.watermarks[channel] = state.Watermark{Channel: channel, LastSyncedAt: lastSyncedAt}
}

func (s *Store) Watermark(_ context.Context, channel string) (time.Time, bool, error) {
	s.tb.Helper()
	if s.Err != nil {
		return time.Time{}, false, s.Err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	watermark, ok := s.watermarks[channel]
	return watermark.LastSyncedAt, ok, nil
}

func (s *Store) RecordWatermark(_ context.Context, channel string, candidates ...time.Time) error {
	s.tb.Helper()
	if s.Err != nil {
		return s.Err
	}
	if s.RecordErr != nil {
		return s.RecordErr
	}

	latest, err := state.MaxCandidate(candidates)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.Records = append(s.Records, slices.Clone(candidates))

	now := time.Now()
	current, ok := s.watermarks[channel]
	switch {
	case !ok:
		s.watermarks[channel] = state.Watermark{Channel: channel, LastSyncedAt: latest, CreatedAt: now, UpdatedAt: now}
	case latest.After(current.LastSyncedAt):
		current.LastSyncedAt = latest
		current.UpdatedAt = now
		s.watermarks[channel] = current
	}
	return nil
}

func (s *Store) Get(_ context.Context, channel string) (*state.Watermark, error) {
	s.tb.Helper()
	if s.Err != nil {
		return nil, s.Err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	watermark, ok := s.watermarks[channel]
	if !ok {
		return nil, nil
	}
	return &watermark, nil
}

func (s *Store) List(_ context.Context) ([]state.Watermark, error) {
	s.tb.Helper()
	if s.Err != nil {
		return nil, s.Err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	watermarks := make([]state.Watermark, 0, len(s.watermarks))
	for _, channel := range slices.Sorted(maps.Keys(s.watermarks)) {
		watermarks = append(watermarks, s.watermarks[channel])
	}
	return watermarks, nil
}

func (s *Store) Close() error {
	return nil
}
