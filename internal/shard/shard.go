// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package shard assigns every product to exactly one of N independent workers.
//
// The assignment is a public contract shared by every worker process: the 31-multiplier
// rolling hash of the SKU UTF-16 code units, computed with 32-bit wraparound, taken in
// absolute value and reduced modulo the number of workers. Workers never talk to each other,
// so any change to this function repartitions the whole catalog.
package shard

import (
	"unicode/utf16"

	"github.com/mia-platform/stocksync/internal/source"
	"github.com/mia-platform/stocksync/internal/syncerr"
)

// Hash returns the 32-bit rolling hash of sku. The empty string hashes to 0.
func Hash(sku string) int32 {
	var hash int32
	for _, unit := range utf16.Encode([]rune(sku)) {
		hash = hash*31 + int32(unit)
	}
	return hash
}

// Worker returns the worker id in [0, totalWorkers) owning sku, or -1 when totalWorkers is
// lower than 1.
func Worker(sku string, totalWorkers int) int {
	if totalWorkers < 1 {
		return -1
	}

	hash := int64(Hash(sku))
	if hash < 0 {
		hash = -hash
	}
	return int(hash % int64(totalWorkers))
}

// IsAssigned reports whether sku belongs to workerID when the catalog is split across
// totalWorkers workers. Nothing is assigned when the pair does not pass ValidateWorkers.
func IsAssigned(sku string, totalWorkers, workerID int) bool {
	if ValidateWorkers(totalWorkers, workerID) != nil {
		return false
	}
	if totalWorkers == 1 {
		return workerID == 0
	}
	return Worker(sku, totalWorkers) == workerID
}

// Filter returns the products assigned to workerID, preserving their order.
// With a single worker the input is returned unchanged and no hash is computed. An invalid
// worker pair yields an empty result.
func Filter(products []source.Product, totalWorkers, workerID int) []source.Product {
	if ValidateWorkers(totalWorkers, workerID) != nil {
		return []source.Product{}
	}
	if totalWorkers == 1 {
		return products
	}

	assigned := make([]source.Product, 0, len(products)/totalWorkers+1)
	for _, product := range products {
		if IsAssigned(product.SKU, totalWorkers, workerID) {
			assigned = append(assigned, product)
		}
	}
	return assigned
}

// ValidateWorkers checks that workerID is a valid 0-indexed id among totalWorkers workers.
func ValidateWorkers(totalWorkers, workerID int) error {
	if totalWorkers < 1 {
		return syncerr.InvalidArgument("total workers must be >= 1, got %d", totalWorkers)
	}
	if workerID < 0 || workerID >= totalWorkers {
		return syncerr.InvalidArgument("worker id must be in [0, %d), got %d", totalWorkers, workerID)
	}
	return nil
}
