// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package sqlite

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/stocksync/internal/syncerr"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()

	store, err := Open(t.Context(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSchemaInitialization(t *testing.T) {
	t.Parallel()

	store := openTestStore(t, filepath.Join(t.TempDir(), "nested", "state.db"))

	var count int
	err := store.db.QueryRowContext(t.Context(), `SELECT count(*) FROM sqlite_master WHERE type='table' AND name='sync_state'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWatermarkAbsent(t *testing.T) {
	t.Parallel()

	store := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))

	lastSyncedAt, ok, err := store.Watermark(t.Context(), "makro")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, lastSyncedAt.IsZero())

	watermark, err := store.Get(t.Context(), "makro")
	require.NoError(t, err)
	assert.Nil(t, watermark)
}

func TestRecordWatermarkOnlyAdvances(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))
	clock := baseTime
	store.now = func() time.Time { return clock }

	require.NoError(t, store.RecordWatermark(ctx, "makro", baseTime.Add(2*time.Minute), baseTime.Add(5*time.Minute), baseTime))

	first, err := store.Get(ctx, "makro")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "makro", first.Channel)
	assert.Equal(t, baseTime.Add(5*time.Minute), first.LastSyncedAt)
	assert.Equal(t, baseTime, first.CreatedAt)
	assert.Equal(t, baseTime, first.UpdatedAt)

	testCases := []struct {
		name       string
		candidates []time.Time
		expected   time.Time
		updatedAt  bool
	}{
		{name: "older value is ignored", candidates: []time.Time{baseTime.Add(time.Minute)}, expected: baseTime.Add(5 * time.Minute)},
		{name: "equal value is ignored", candidates: []time.Time{baseTime.Add(5 * time.Minute)}, expected: baseTime.Add(5 * time.Minute)},
		{name: "newer value advances", candidates: []time.Time{baseTime.Add(6 * time.Minute)}, expected: baseTime.Add(6 * time.Minute), updatedAt: true},
		{name: "sub second precision advances", candidates: []time.Time{baseTime.Add(6*time.Minute + time.Nanosecond)}, expected: baseTime.Add(6*time.Minute + time.Nanosecond), updatedAt: true},
	}

	for _, test := range testCases {
		clock = clock.Add(time.Hour)
		previous, err := store.Get(ctx, "makro")
		require.NoError(t, err)

		require.NoError(t, store.RecordWatermark(ctx, "makro", test.candidates...), test.name)
		current, err := store.Get(ctx, "makro")
		require.NoError(t, err)

		assert.Equal(t, test.expected, current.LastSyncedAt, test.name)
		assert.Equal(t, baseTime, current.CreatedAt, test.name)
		if test.updatedAt {
			assert.Equal(t, clock, current.UpdatedAt, test.name)
		} else {
			assert.Equal(t, previous.UpdatedAt, current.UpdatedAt, test.name)
		}
	}
}

func TestRecordWatermarkOrderInsensitive(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))

	candidates := make([]time.Time, 0, 50)
	for i := range 50 {
		candidates = append(candidates, baseTime.Add(time.Duration(i)*time.Second))
	}
	random := rand.New(rand.NewSource(42))
	random.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	var expected time.Time
	for _, candidate := range candidates {
		require.NoError(t, store.RecordWatermark(ctx, "woo", candidate))
		if candidate.After(expected) {
			expected = candidate
		}

		lastSyncedAt, ok, err := store.Watermark(ctx, "woo")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, expected, lastSyncedAt)
	}

	// replaying everything is a no-op
	require.NoError(t, store.RecordWatermark(ctx, "woo", candidates...))
	lastSyncedAt, _, err := store.Watermark(ctx, "woo")
	require.NoError(t, err)
	assert.Equal(t, baseTime.Add(49*time.Second), lastSyncedAt)
}

func TestRecordWatermarkNormalizesZones(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))

	plusTwo := time.FixedZone("UTC+2", 2*3600)
	require.NoError(t, store.RecordWatermark(ctx, "woo", baseTime.In(plusTwo)))

	// an earlier instant with a larger wall clock must not win
	require.NoError(t, store.RecordWatermark(ctx, "woo", baseTime.Add(-time.Hour).In(time.FixedZone("UTC+5", 5*3600))))

	lastSyncedAt, ok, err := store.Watermark(ctx, "woo")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, baseTime, lastSyncedAt)
}

func TestRecordWatermarkRequiresCandidates(t *testing.T) {
	t.Parallel()

	store := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))
	err := store.RecordWatermark(t.Context(), "makro")
	assert.ErrorIs(t, err, syncerr.ErrInvalidArgument)

	_, ok, err := store.Watermark(t.Context(), "makro")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChannelsAreIndependentAndListed(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))

	require.NoError(t, store.RecordWatermark(ctx, "woo", baseTime))
	require.NoError(t, store.RecordWatermark(ctx, "makro", baseTime.Add(time.Hour)))

	watermarks, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, watermarks, 2)
	assert.Equal(t, "makro", watermarks[0].Channel)
	assert.Equal(t, baseTime.Add(time.Hour), watermarks[0].LastSyncedAt)
	assert.Equal(t, "woo", watermarks[1].Channel)
	assert.Equal(t, baseTime, watermarks[1].LastSyncedAt)
}

func TestWatermarkSurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.db")
	store, err := Open(t.Context(), path)
	require.NoError(t, err)
	require.NoError(t, store.RecordWatermark(t.Context(), "makro", baseTime))
	require.NoError(t, store.Close())

	reopened := openTestStore(t, path)
	lastSyncedAt, ok, err := reopened.Watermark(t.Context(), "makro")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, baseTime, lastSyncedAt)
}

func TestStorageErrorsAreSurfaced(t *testing.T) {
	t.Parallel()

	t.Run("closed database", func(t *testing.T) {
		t.Parallel()

		store, err := Open(t.Context(), filepath.Join(t.TempDir(), "state.db"))
		require.NoError(t, err)
		require.NoError(t, store.Close())

		err = store.RecordWatermark(t.Context(), "makro", baseTime)
		assert.ErrorIs(t, err, syncerr.ErrStorageFailure)

		_, _, err = store.Watermark(t.Context(), "makro")
		assert.ErrorIs(t, err, syncerr.ErrStorageFailure)
	})

	t.Run("corrupted timestamp", func(t *testing.T) {
		t.Parallel()

		store := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))
		_, err := store.db.ExecContext(t.Context(), `INSERT INTO sync_state (channel, last_synced_at, created_at, updated_at) VALUES ('makro', 'yesterday', 'x', 'y')`)
		require.NoError(t, err)

		_, _, err = store.Watermark(t.Context(), "makro")
		assert.ErrorIs(t, err, syncerr.ErrStorageFailure)
	})

	t.Run("state path is a file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

		_, err := Open(t.Context(), filepath.Join(blocker, "state.db"))
		assert.ErrorIs(t, err, syncerr.ErrStorageFailure)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		store := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		err := store.RecordWatermark(ctx, "makro", baseTime)
		assert.ErrorIs(t, err, syncerr.ErrStorageFailure)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
