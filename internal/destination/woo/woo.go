// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package woo implements the WooCommerce storefront channel. WooCommerce identifies products by
// the numeric id assigned by the ERP.
package woo

import (
	"context"

	"github.com/mia-platform/stocksync/internal/destination"
	"github.com/mia-platform/stocksync/internal/source"
)

const (
	// Name is the channel name, also used as its sync state key.
	Name = "woo"

	BulkStockPath = "/products/bulk-stock"
)

var _ destination.Channel[StockUpdate] = &Channel{}

// StockUpdate is a single entry of a WooCommerce bulk stock request.
type StockUpdate struct {
	ProductID     int64 `json:"product_id"`
	StockQuantity int64 `json:"stock_quantity"`
}

type Channel struct {
	sender destination.Sender
}

// New returns the WooCommerce channel delivering its batches through sender.
func New(sender destination.Sender) *Channel {
	return &Channel{sender: sender}
}

func (c *Channel) Name() string {
	return Name
}

func (c *Channel) MapProduct(product source.Product) StockUpdate {
	return StockUpdate{
		ProductID:     product.ID,
		StockQuantity: product.Stock.Quantity,
	}
}

func (c *Channel) Deliver(ctx context.Context, batch []StockUpdate) error {
	return destination.DeliverBatch(ctx, c.sender, BulkStockPath, batch)
}

// ProductKey returns the identifier WooCommerce uses for the updated product.
func ProductKey(update StockUpdate) int64 {
	return update.ProductID
}
