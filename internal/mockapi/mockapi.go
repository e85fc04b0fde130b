// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package mockapi serves an in-memory emulation of the ERP products api and of the stock
// endpoints of every channel, to run syncs locally without reaching the real systems.
package mockapi

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/stocksync/internal/destination"
	"github.com/mia-platform/stocksync/internal/destination/makro"
	"github.com/mia-platform/stocksync/internal/destination/woo"
	"github.com/mia-platform/stocksync/internal/logger"
	"github.com/mia-platform/stocksync/internal/source"
)

const (
	loggerName = "stocksync:mockapi"

	ERPPrefix   = "/erp"
	MakroPrefix = "/" + makro.Name
	WooPrefix   = "/" + woo.Name

	defaultLimit = 100
)

// API holds the state shared by the emulated systems.
type API struct {
	lock     sync.Mutex
	now      func() time.Time
	products []source.Product

	makroStock    map[string]int64
	wooStock      map[int64]int64
	makroRequests int
	wooRequests   int
}

// New returns an API serving products as the ERP catalog, in the given order.
func New(products []source.Product) *API {
	return &API{
		now:        time.Now,
		products:   slices.Clone(products),
		makroStock: make(map[string]int64),
		wooStock:   make(map[int64]int64),
	}
}

// GenerateProducts returns a deterministic catalog of count products updated one second apart
// starting from start.
func GenerateProducts(count int, start time.Time) []source.Product {
	products := make([]source.Product, 0, count)
	for i := range count {
		id := int64(i + 1)
		updatedAt := start.Add(time.Duration(i) * time.Second).UTC()
		products = append(products, source.Product{
			ID:         id,
			Name:       fmt.Sprintf("Product %d", id),
			SKU:        fmt.Sprintf("SKU-%06d", id),
			Price:      float64(id%50) + 0.99,
			CategoryID: id%10 + 1,
			Stock: source.Stock{
				ProductID:        id,
				Quantity:         (id * 7) % 120,
				ReservedQuantity: id % 5,
				LastUpdated:      updatedAt,
			},
			CreatedAt: start.UTC(),
			UpdatedAt: updatedAt,
		})
	}
	return products
}

// Register adds the routes of every emulated system to router.
func (a *API) Register(router fiber.Router) {
	erp := router.Group(ERPPrefix)
	erp.Get("/products", a.listProducts)
	erp.Put("/products/:id/stock", a.updateProductStock)

	router.Post(MakroPrefix+makro.BatchStockPath, a.makroBatchStock)
	router.Post(WooPrefix+woo.BulkStockPath, a.wooBulkStock)
}

// MakroStock returns the last quantity received by Makro for every SKU.
func (a *API) MakroStock() map[string]int64 {
	a.lock.Lock()
	defer a.lock.Unlock()
	return maps.Clone(a.makroStock)
}

// WooStock returns the last quantity received by WooCommerce for every product id.
func (a *API) WooStock() map[int64]int64 {
	a.lock.Lock()
	defer a.lock.Unlock()
	return maps.Clone(a.wooStock)
}

// Requests returns how many bulk requests channel has accepted.
func (a *API) Requests(channel string) int {
	a.lock.Lock()
	defer a.lock.Unlock()
	switch channel {
	case makro.Name:
		return a.makroRequests
	case woo.Name:
		return a.wooRequests
	default:
		return 0
	}
}

func (a *API) listProducts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 0)
	limit := c.QueryInt("limit", defaultLimit)
	if page < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "page must be >= 0")
	}
	if limit < source.MinPageSize || limit > source.MaxPageSize {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("limit must be between %d and %d", source.MinPageSize, source.MaxPageSize))
	}

	var updatedAfter *time.Time
	if value := c.Query("updated_after"); value != "" {
		parsed, err := time.Parse(time.RFC3339Nano, value)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "updated_after must be an RFC 3339 timestamp")
		}
		updatedAfter = &parsed
	}

	a.lock.Lock()
	matching := make([]source.Product, 0, len(a.products))
	for _, product := range a.products {
		if updatedAfter == nil || product.UpdatedAt.After(*updatedAfter) {
			matching = append(matching, product)
		}
	}
	a.lock.Unlock()

	total := len(matching)
	start := min(page*limit, total)
	end := min(start+limit, total)
	return c.JSON(source.Page{
		Data: matching[start:end],
		Pagination: source.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
		},
		Total: total,
	})
}

type stockChange struct {
	Quantity int64 `json:"quantity"`
}

// updateProductStock changes the quantity of a product, moving its updated_at to now so that the
// next incremental sync picks it up.
func (a *API) updateProductStock(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "id must be a number")
	}

	change := new(stockChange)
	if err := c.BodyParser(change); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	if change.Quantity < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity must not be negative")
	}

	a.lock.Lock()
	defer a.lock.Unlock()
	index := slices.IndexFunc(a.products, func(product source.Product) bool { return product.ID == int64(id) })
	if index < 0 {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("product %d not found", id))
	}

	now := a.now().UTC()
	product := &a.products[index]
	product.Stock.Quantity = change.Quantity
	product.Stock.LastUpdated = now
	product.UpdatedAt = now
	logger.FromContext(c.UserContext()).WithName(loggerName).Debug("product stock updated", "id", id, "quantity", change.Quantity)
	return c.JSON(product)
}

func (a *API) makroBatchStock(c *fiber.Ctx) error {
	body := new(destination.BulkUpdate[makro.StockUpdate])
	if err := c.BodyParser(body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	if len(body.Updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "updates must not be empty")
	}

	a.lock.Lock()
	defer a.lock.Unlock()
	for _, update := range body.Updates {
		if update.ProductID == "" {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "product_id is required")
		}
	}
	for _, update := range body.Updates {
		a.makroStock[update.ProductID] = update.Quantity
	}
	a.makroRequests++
	return c.JSON(fiber.Map{"updated": len(body.Updates)})
}

func (a *API) wooBulkStock(c *fiber.Ctx) error {
	body := new(destination.BulkUpdate[woo.StockUpdate])
	if err := c.BodyParser(body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	if len(body.Updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "updates must not be empty")
	}

	a.lock.Lock()
	defer a.lock.Unlock()
	for _, update := range body.Updates {
		if update.ProductID < 1 {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "product_id must be a positive number")
		}
	}
	for _, update := range body.Updates {
		a.wooStock[update.ProductID] = update.StockQuantity
	}
	a.wooRequests++
	return c.JSON(fiber.Map{"updated": len(body.Updates)})
}
