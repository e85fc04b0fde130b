// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package writer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/stocksync/internal/syncerr"
)

func TestSend(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	sender := NewSender(buffer, "makro")

	err := sender.Send(t.Context(), "/products/batch-stock", map[string]any{
		"updates": []map[string]any{
			{"product_id": "SKU-1", "quantity": 5},
		},
	})
	require.NoError(t, err)

	expectedOutput := `Send batch:
	Channel: makro
	Path: /products/batch-stock
	Body: {
		"updates": [
			{
				"product_id": "SKU-1",
				"quantity": 5
			}
		]
	}

`

	assert.Equal(t, expectedOutput, buffer.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestSendFailures(t *testing.T) {
	t.Parallel()

	t.Run("write error", func(t *testing.T) {
		t.Parallel()

		err := NewSender(failingWriter{}, "woo").Send(t.Context(), "/products/bulk-stock", map[string]any{})
		assert.ErrorIs(t, err, syncerr.ErrChannelDeliveryFailed)
		assert.ErrorContains(t, err, "disk full")
	})

	t.Run("unencodable payload", func(t *testing.T) {
		t.Parallel()

		buffer := new(bytes.Buffer)
		err := NewSender(buffer, "woo").Send(t.Context(), "/products/bulk-stock", make(chan int))
		assert.ErrorIs(t, err, syncerr.ErrChannelDeliveryFailed)
		assert.Empty(t, buffer.String())
	})
}
