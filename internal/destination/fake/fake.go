// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"testing"

	"github.com/mia-platform/stocksync/internal/destination"
	"github.com/mia-platform/stocksync/internal/source"
)

var _ destination.Channel[Record] = &Channel{}
var _ destination.Sender = &Sender{}

// Record is the update record of the fake channel.
type Record struct {
	SKU      string
	Quantity int64
}

// Channel records every delivered batch. It can be set to fail on a specific delivery.
type Channel struct {
	tb testing.TB

	name string

	// FailOnBatch is the 0 based index of the delivery that fails with FailWith, -1 never fails.
	FailOnBatch int
	FailWith    error

	Batches [][]Record
	calls   int
}

func NewChannel(tb testing.TB, name string) *Channel {
	tb.Helper()
	return &Channel{
		tb:          tb,
		name:        name,
		FailOnBatch: -1,
	}
}

func (c *Channel) Name() string {
	return c.name
}

func (c *Channel) MapProduct(product source.Product) Record {
	return Record{
		SKU:      product.SKU,
		Quantity: product.Stock.Quantity,
	}
}

func (c *Channel) Deliver(_ context.Context, batch []Record) error {
	c.tb.Helper()
	if len(batch) == 0 {
		return nil
	}

	call := c.calls
	c.calls++
	if call == c.FailOnBatch {
		return c.FailWith
	}

	c.Batches = append(c.Batches, append([]Record(nil), batch...))
	return nil
}

// Delivered returns every record of the accepted batches in delivery order.
func (c *Channel) Delivered() []Record {
	delivered := make([]Record, 0)
	for _, batch := range c.Batches {
		delivered = append(delivered, batch...)
	}
	return delivered
}

// Request is a single call received by Sender.
type Request struct {
	Path    string
	Payload any
}

// Sender records every request it receives and returns Err for each of them.
type Sender struct {
	tb testing.TB

	Err      error
	Requests []Request
}

func NewSender(tb testing.TB) *Sender {
	tb.Helper()
	return &Sender{tb: tb}
}

func (s *Sender) Send(_ context.Context, path string, payload any) error {
	s.tb.Helper()
	s.Requests = append(s.Requests, Request{Path: path, Payload: payload})
	return s.Err
}
