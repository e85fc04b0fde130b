// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package makro implements the Makro marketplace channel. Makro identifies products by their SKU.
package makro

import (
	"context"

	"github.com/mia-platform/stocksync/internal/destination"
	"github.com/mia-platform/stocksync/internal/source"
)

const (
	// Name is the channel name, also used as its sync state key.
	Name = "makro"

	BatchStockPath = "/products/batch-stock"
)

var _ destination.Channel[StockUpdate] = &Channel{}

// StockUpdate is a single entry of a Makro batch stock request.
type StockUpdate struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type Channel struct {
	sender destination.Sender
}

// New returns the Makro channel delivering its batches through sender.
func New(sender destination.Sender) *Channel {
	return &Channel{sender: sender}
}

func (c *Channel) Name() string {
	return Name
}

func (c *Channel) MapProduct(product source.Product) StockUpdate {
	return StockUpdate{
		ProductID: product.SKU,
		Quantity:  product.Stock.Quantity,
	}
}

func (c *Channel) Deliver(ctx context.Context, batch []StockUpdate) error {
	return destination.DeliverBatch(ctx, c.sender, BatchStockPath, batch)
}

// ProductKey returns the identifier Makro uses for the updated product.
func ProductKey(update StockUpdate) string {
	return update.ProductID
}
