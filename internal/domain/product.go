package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxSKULength is the longest SKU the catalog accepts.
const MaxSKULength = 50

// Product is a catalog item with a guarded stock counter. Stock is only
// ever changed through AdjustStock; the quantity never goes negative.
type Product struct {
	Recorder
	id            uuid.UUID
	name          string
	sku           string
	description   string
	price         decimal.Decimal
	cost          decimal.Decimal
	stockQuantity int
	categoryID    uuid.UUID
	active        bool
	createdAt     time.Time
	updatedAt     time.Time
	version       int
}

// NewProduct constructs an active product and raises ProductCreated.
// SKU uniqueness is pre-checked by the application layer; the aggregate
// does not query the store.
func NewProduct(name, sku, description string, price, cost decimal.Decimal, stockQuantity int, categoryID uuid.UUID) Result[*Product] {
	if name == "" {
		return Failf[*Product](CodeValidationFailed, "product name is required")
	}
	if sku == "" {
		return Failf[*Product](CodeValidationFailed, "sku is required")
	}
	if len(sku) > MaxSKULength {
		return Failf[*Product](CodeValidationFailed, "sku exceeds %d characters", MaxSKULength)
	}
	if !price.IsPositive() {
		return Failf[*Product](CodeValidationFailed, "price must be greater than zero")
	}
	if cost.IsNegative() {
		return Failf[*Product](CodeValidationFailed, "cost must not be negative")
	}
	if stockQuantity < 0 {
		return Failf[*Product](CodeValidationFailed, "stock quantity must not be negative")
	}
	if categoryID == uuid.Nil {
		return Failf[*Product](CodeValidationFailed, "category id is required")
	}

	now := time.Now().UTC()
	p := &Product{
		id:            uuid.New(),
		name:          name,
		sku:           sku,
		description:   description,
		price:         price,
		cost:          cost,
		stockQuantity: stockQuantity,
		categoryID:    categoryID,
		active:        true,
		createdAt:     now,
		updatedAt:     now,
	}
	p.Raise(ProductCreatedEvent{
		BaseEvent: newBaseEvent(EventTypeProductCreated, p.id),
		SKU:       sku,
		Name:      name,
	})
	return OK(p)
}

// ReconstituteProduct rebuilds a product from persistence. No events are raised.
func ReconstituteProduct(
	id uuid.UUID,
	name, sku, description string,
	price, cost decimal.Decimal,
	stockQuantity int,
	categoryID uuid.UUID,
	active bool,
	createdAt, updatedAt time.Time,
	version int,
) *Product {
	return &Product{
		id:            id,
		name:          name,
		sku:           sku,
		description:   description,
		price:         price,
		cost:          cost,
		stockQuantity: stockQuantity,
		categoryID:    categoryID,
		active:        active,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		version:       version,
	}
}

func (p *Product) ID() uuid.UUID          { return p.id }
func (p *Product) Name() string           { return p.name }
func (p *Product) SKU() string            { return p.sku }
func (p *Product) Description() string    { return p.description }
func (p *Product) Price() decimal.Decimal { return p.price }
func (p *Product) Cost() decimal.Decimal  { return p.cost }
func (p *Product) StockQuantity() int     { return p.stockQuantity }
func (p *Product) CategoryID() uuid.UUID  { return p.categoryID }
func (p *Product) Active() bool           { return p.active }
func (p *Product) CreatedAt() time.Time   { return p.createdAt }
func (p *Product) UpdatedAt() time.Time   { return p.updatedAt }

// Version is the optimistic-concurrency counter managed by the store.
func (p *Product) Version() int { return p.version }

// AdjustStock applies a signed delta to the stock quantity. Positive deltas
// restock, negative deltas sell or consume. A delta that would drive the
// quantity below zero is rejected with InsufficientStock and leaves the
// product unchanged. This is the only sanctioned path to change stock.
func (p *Product) AdjustStock(delta int) Result[Void] {
	newQty := p.stockQuantity + delta
	if newQty < 0 {
		return Failf[Void](CodeInsufficientStock,
			"insufficient stock for product %s: have %d, requested %d", p.sku, p.stockQuantity, -delta)
	}
	p.stockQuantity = newQty
	p.updatedAt = time.Now().UTC()
	return OKVoid()
}

// UpdateDetails edits the descriptive fields of the product.
func (p *Product) UpdateDetails(name, description string, price, cost decimal.Decimal, categoryID uuid.UUID) Result[Void] {
	if name == "" {
		return Failf[Void](CodeValidationFailed, "product name is required")
	}
	if !price.IsPositive() {
		return Failf[Void](CodeValidationFailed, "price must be greater than zero")
	}
	if cost.IsNegative() {
		return Failf[Void](CodeValidationFailed, "cost must not be negative")
	}
	if categoryID == uuid.Nil {
		return Failf[Void](CodeValidationFailed, "category id is required")
	}
	p.name = name
	p.description = description
	p.price = price
	p.cost = cost
	p.categoryID = categoryID
	p.updatedAt = time.Now().UTC()
	return OKVoid()
}

// Activate marks the product as active. Idempotent, no events.
func (p *Product) Activate() {
	if p.active {
		return
	}
	p.active = true
	p.updatedAt = time.Now().UTC()
}

// Deactivate marks the product as inactive. Idempotent, no events.
func (p *Product) Deactivate() {
	if !p.active {
		return
	}
	p.active = false
	p.updatedAt = time.Now().UTC()
}
