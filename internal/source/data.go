// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package source

import (
	"time"
)

// Product is one inventory-bearing entity returned by the source of stock truth.
type Product struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	SKU        string    `json:"sku"`
	Price      float64   `json:"price"`
	CategoryID int64     `json:"category_id"`
	Stock      Stock     `json:"stock"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Stock holds the stock information of a product.
type Stock struct {
	ProductID        int64     `json:"product_id"`
	Quantity         int64     `json:"quantity"`
	ReservedQuantity int64     `json:"reserved_quantity"`
	LastUpdated      time.Time `json:"last_updated"`
}

// Pagination is the pagination metadata attached to every page. Page is 0-indexed.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Page is one ordered slice of products returned by a single source request.
type Page struct {
	Data       []Product  `json:"data"`
	Pagination Pagination `json:"pagination"`
	Total      int        `json:"total"`
}

// HasNext reports whether another page follows the one consumed at index. The index is the one
// the caller requested, the page number echoed by the server is not trusted.
func (p *Page) HasNext(index int) bool {
	return index+1 < p.Pagination.TotalPages
}
