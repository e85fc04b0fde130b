// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package destination

import (
	"context"

	"github.com/mia-platform/stocksync/internal/source"
)

// Channel is a sales channel receiving stock updates shaped as R.
type Channel[R any] interface {
	// Name returns the unique name of the channel, used as key of its sync state.
	Name() string
	// MapProduct converts a source product into the channel update record. It must be pure.
	MapProduct(product source.Product) R
	// Deliver sends batch as a single request. The batch is accepted or rejected as a whole.
	// An empty batch must not produce any request.
	Deliver(ctx context.Context, batch []R) error
}

// Sender ships a single request body to path of a channel api.
type Sender interface {
	Send(ctx context.Context, path string, payload any) error
}

// BulkUpdate is the body of the bulk stock update requests of every channel.
type BulkUpdate[R any] struct {
	Updates []R `json:"updates"`
}

// DeliverBatch sends batch to path wrapped in a BulkUpdate. Empty batches are skipped.
func DeliverBatch[R any](ctx context.Context, sender Sender, path string, batch []R) error {
	if len(batch) == 0 {
		return nil
	}

	return sender.Send(ctx, path, BulkUpdate[R]{Updates: batch})
}
