// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContextFallsBackToNullLogger(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		ctx func(t *testing.T) context.Context
	}{
		"nil context": {
			ctx: func(*testing.T) context.Context { return nil },
		},
		"context without logger": {
			ctx: func(t *testing.T) context.Context { return t.Context() },
		},
		"context with a value of another type": {
			ctx: func(t *testing.T) context.Context {
				return context.WithValue(t.Context(), contextKey, "not a logger")
			},
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			log := FromContext(test.ctx(t))
			assert.Equal(t, nullLogger, log)
			assert.NotPanics(t, func() {
				log.WithName("stocksync:pipeline").With("runId", "run-1").Error("discarded")
			})
		})
	}
}

func TestContextCarriesNamedLoggers(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	root := NewLogger(buffer)
	ctx := WithContext(t.Context(), root)
	require.Equal(t, root, FromContext(ctx))

	runLogger := FromContext(ctx).WithName("stocksync:pipeline").With("runId", "run-1", "channel", "makro")
	runCtx := WithContext(ctx, runLogger)

	FromContext(runCtx).Info("sync started")
	FromContext(runCtx).WithName("stocksync:source:erp").Info("page fetched", "page", 0)
	FromContext(ctx).Info("outside the run")

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	require.Len(t, lines, 3)

	assert.Contains(t, lines[0], `"@module":"stocksync:pipeline"`)
	assert.Contains(t, lines[0], `"runId":"run-1"`)
	assert.Contains(t, lines[0], `"channel":"makro"`)

	assert.Contains(t, lines[1], `"@module":"stocksync:source:erp"`)
	assert.Contains(t, lines[1], `"runId":"run-1"`, "fields survive a rename")
	assert.Contains(t, lines[1], `"page":0`)

	assert.NotContains(t, lines[2], "@module")
	assert.NotContains(t, lines[2], "runId")
}

func TestContextLoggerSharesLevel(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	root := NewLogger(buffer)
	ctx := WithContext(t.Context(), root)

	named := FromContext(ctx).WithName("stocksync:cmd")
	named.Debug("silenced at INFO")
	root.SetLevel(DEBUG)
	named.Debug("emitted at DEBUG")

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "emitted at DEBUG")
}
