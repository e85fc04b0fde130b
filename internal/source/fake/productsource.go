// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"iter"
	"testing"
	"time"

	"github.com/mia-platform/stocksync/internal/source"
	"github.com/mia-platform/stocksync/internal/syncerr"
)

var _ source.ProductSource = &ProductSource{}

// ProductSource serves an in-memory product list split in pages of the requested size.
// It records every page request and every changedAfter value it receives.
type ProductSource struct {
	tb       testing.TB
	products []source.Product

	// FailOnPage, when not negative, makes the request of that page index fail with FailWith.
	FailOnPage int
	FailWith   error

	RequestedPages []int
	ChangedAfter   []*time.Time
}

// NewProductSource returns a ProductSource holding products.
func NewProductSource(tb testing.TB, products []source.Product) *ProductSource {
	tb.Helper()
	return &ProductSource{
		tb:         tb,
		products:   products,
		FailOnPage: -1,
	}
}

// Stream implements source.ProductSource.
func (f *ProductSource) Stream(ctx context.Context, pageSize int, changedAfter *time.Time) (iter.Seq2[*source.Page, error], error) {
	f.tb.Helper()
	if pageSize < source.MinPageSize || pageSize > source.MaxPageSize {
		return nil, syncerr.InvalidArgument("page size %d", pageSize)
	}

	f.ChangedAfter = append(f.ChangedAfter, changedAfter)
	totalPages := (len(f.products) + pageSize - 1) / pageSize

	return func(yield func(*source.Page, error) bool) {
		for index := 0; ; index++ {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			f.RequestedPages = append(f.RequestedPages, index)
			if index == f.FailOnPage {
				yield(nil, f.FailWith)
				return
			}

			start := min(index*pageSize, len(f.products))
			end := min(start+pageSize, len(f.products))
			page := &source.Page{
				Data: f.products[start:end],
				Pagination: source.Pagination{
					Page:       index,
					Limit:      pageSize,
					Total:      len(f.products),
					TotalPages: totalPages,
				},
				Total: len(f.products),
			}

			if !yield(page, nil) || !page.HasNext(index) {
				return
			}
		}
	}, nil
}
