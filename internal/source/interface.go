// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package source

import (
	"context"
	"iter"
	"time"
)

const (
	// MinPageSize is the smallest page size accepted by the source.
	MinPageSize = 1
	// MaxPageSize is the largest page size accepted by the source.
	MaxPageSize = 1000
)

// ProductSource defines the interface for a source of products that can be streamed page by page.
type ProductSource interface {
	// Stream returns a lazy, single-pass sequence of pages of pageSize products. No request is
	// made until the sequence is iterated. When changedAfter is not nil only the products updated
	// strictly after it are returned. The first non-nil error ends the sequence.
	// An out of range pageSize is reported as an error before any network call.
	Stream(ctx context.Context, pageSize int, changedAfter *time.Time) (iter.Seq2[*Page, error], error)
}
