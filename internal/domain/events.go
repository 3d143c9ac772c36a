package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeProductCreated  = "PRODUCT_CREATED"
	EventTypeCategoryCreated = "CATEGORY_CREATED"
	EventTypeCustomerCreated = "CUSTOMER_CREATED"
	EventTypeSaleCreated     = "SALE_CREATED"
	EventTypeSaleCompleted   = "SALE_COMPLETED"
)

// Event is an immutable fact raised by an aggregate mutation. Events are
// queued on the aggregate that raised them and owned by it until drained.
type Event interface {
	EventName() string
	AggregateID() uuid.UUID
	OccurredAt() time.Time
}

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType string    `json:"event_type"`
	Aggregate uuid.UUID `json:"aggregate_id"`
	Timestamp time.Time `json:"timestamp"`
}

func newBaseEvent(eventType string, aggregateID uuid.UUID) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New(),
		EventType: eventType,
		Aggregate: aggregateID,
		Timestamp: time.Now().UTC(),
	}
}

func (e BaseEvent) EventName() string      { return e.EventType }
func (e BaseEvent) AggregateID() uuid.UUID { return e.Aggregate }
func (e BaseEvent) OccurredAt() time.Time  { return e.Timestamp }

// ProductCreatedEvent is raised when a product enters the catalog.
type ProductCreatedEvent struct {
	BaseEvent
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// CategoryCreatedEvent is raised when a category is created.
type CategoryCreatedEvent struct {
	BaseEvent
	Name string `json:"name"`
}

// CustomerCreatedEvent is raised when a customer is registered.
type CustomerCreatedEvent struct {
	BaseEvent
	Name string `json:"name"`
}

// SaleCreatedEvent is raised when a sale is opened.
type SaleCreatedEvent struct {
	BaseEvent
	CustomerID    *uuid.UUID `json:"customer_id,omitempty"`
	PaymentMethod string     `json:"payment_method"`
}

// SaleCompletedEvent is raised when a pending sale transitions to completed.
type SaleCompletedEvent struct {
	BaseEvent
	CustomerID  *uuid.UUID      `json:"customer_id,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}
