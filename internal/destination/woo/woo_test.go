// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package woo

import (
	"encoding/json"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/stocksync/internal/destination"
	"github.com/mia-platform/stocksync/internal/destination/fake"
	"github.com/mia-platform/stocksync/internal/source"
	"github.com/mia-platform/stocksync/internal/syncerr"
)

func TestMapProduct(t *testing.T) {
	t.Parallel()

	channel := New(fake.NewSender(t))
	assert.Equal(t, Name, channel.Name())

	update := channel.MapProduct(source.Product{
		ID:  42,
		SKU: "SKU-0042",
		Stock: source.Stock{
			ProductID: 42,
			Quantity:  7,
		},
	})
	assert.Equal(t, StockUpdate{ProductID: 42, StockQuantity: 7}, update)

	body, err := json.Marshal(update)
	require.NoError(t, err)
	assert.JSONEq(t, `{"product_id":42,"stock_quantity":7}`, string(body))
}

func TestProductKeyRoundTrip(t *testing.T) {
	t.Parallel()

	channel := New(fake.NewSender(t))
	roundTrip := func(id, quantity int64, sku string) bool {
		return ProductKey(channel.MapProduct(source.Product{ID: id, SKU: sku, Stock: source.Stock{Quantity: quantity}})) == id
	}
	require.NoError(t, quick.Check(roundTrip, nil))
}

func TestDeliver(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		batch            []StockUpdate
		senderErr        error
		expectedRequests int
		expectedErr      error
	}{
		"empty batch": {
			batch: []StockUpdate{},
		},
		"single batch": {
			batch:            []StockUpdate{{ProductID: 1, StockQuantity: 10}, {ProductID: 2, StockQuantity: 0}},
			expectedRequests: 1,
		},
		"rejected batch": {
			batch:            []StockUpdate{{ProductID: 1, StockQuantity: 10}},
			senderErr:        syncerr.ErrChannelDeliveryFailed,
			expectedRequests: 1,
			expectedErr:      syncerr.ErrChannelDeliveryFailed,
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			sender := fake.NewSender(t)
			sender.Err = test.senderErr
			err := New(sender).Deliver(t.Context(), test.batch)
			if test.expectedErr != nil {
				assert.ErrorIs(t, err, test.expectedErr)
			} else {
				assert.NoError(t, err)
			}

			require.Len(t, sender.Requests, test.expectedRequests)
			for _, request := range sender.Requests {
				assert.Equal(t, BulkStockPath, request.Path)
				assert.Equal(t, destination.BulkUpdate[StockUpdate]{Updates: test.batch}, request.Payload)
			}
		})
	}
}
