package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus is the lifecycle state of a sale.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

// MaxPaymentMethodLength is the longest payment method label accepted.
const MaxPaymentMethodLength = 50

// TaxRate is the fixed 10% tax applied to every sale subtotal.
// Not configurable yet; a sale always derives its tax from this rate.
var TaxRate = decimal.RequireFromString("0.10")

// SaleItem is a line item owned exclusively by its Sale. Product name and
// unit price are snapshots taken when the line was added.
type SaleItem struct {
	ID          uuid.UUID
	SaleID      uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// TotalPrice is the line total: unit price times quantity.
func (i SaleItem) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Sale is a point-of-sale transaction: an ordered collection of line items
// with derived totals and a Pending -> Completed | Cancelled state machine.
// Totals are recomputed after every item or discount mutation; they are
// never assigned directly. Once a terminal status is reached no further
// mutation or transition is permitted.
type Sale struct {
	Recorder
	id             uuid.UUID
	customerID     *uuid.UUID
	paymentMethod  string
	items          []SaleItem
	subtotal       decimal.Decimal
	taxAmount      decimal.Decimal
	discountAmount decimal.Decimal
	totalAmount    decimal.Decimal
	status         SaleStatus
	createdAt      time.Time
	completedAt    *time.Time
}

// NewSale opens a pending sale with no items and zero totals, raising
// SaleCreated. customerID may be nil for an anonymous walk-in sale.
func NewSale(customerID *uuid.UUID, paymentMethod string) Result[*Sale] {
	if paymentMethod == "" {
		return Failf[*Sale](CodeValidationFailed, "payment method is required")
	}
	if len(paymentMethod) > MaxPaymentMethodLength {
		return Failf[*Sale](CodeValidationFailed, "payment method exceeds %d characters", MaxPaymentMethodLength)
	}

	s := &Sale{
		id:             uuid.New(),
		customerID:     customerID,
		paymentMethod:  paymentMethod,
		items:          make([]SaleItem, 0),
		subtotal:       decimal.Zero,
		taxAmount:      decimal.Zero,
		discountAmount: decimal.Zero,
		totalAmount:    decimal.Zero,
		status:         SaleStatusPending,
		createdAt:      time.Now().UTC(),
	}
	s.Raise(SaleCreatedEvent{
		BaseEvent:     newBaseEvent(EventTypeSaleCreated, s.id),
		CustomerID:    customerID,
		PaymentMethod: paymentMethod,
	})
	return OK(s)
}

// ReconstituteSale rebuilds a sale from persistence. No events are raised.
func ReconstituteSale(
	id uuid.UUID,
	customerID *uuid.UUID,
	paymentMethod string,
	items []SaleItem,
	subtotal, taxAmount, discountAmount, totalAmount decimal.Decimal,
	status SaleStatus,
	createdAt time.Time,
	completedAt *time.Time,
) *Sale {
	return &Sale{
		id:             id,
		customerID:     customerID,
		paymentMethod:  paymentMethod,
		items:          items,
		subtotal:       subtotal,
		taxAmount:      taxAmount,
		discountAmount: discountAmount,
		totalAmount:    totalAmount,
		status:         status,
		createdAt:      createdAt,
		completedAt:    completedAt,
	}
}

func (s *Sale) ID() uuid.UUID                   { return s.id }
func (s *Sale) CustomerID() *uuid.UUID          { return s.customerID }
func (s *Sale) PaymentMethod() string           { return s.paymentMethod }
func (s *Sale) Subtotal() decimal.Decimal       { return s.subtotal }
func (s *Sale) TaxAmount() decimal.Decimal      { return s.taxAmount }
func (s *Sale) DiscountAmount() decimal.Decimal { return s.discountAmount }
func (s *Sale) TotalAmount() decimal.Decimal    { return s.totalAmount }
func (s *Sale) Status() SaleStatus              { return s.status }
func (s *Sale) CreatedAt() time.Time            { return s.createdAt }
func (s *Sale) CompletedAt() *time.Time         { return s.completedAt }

// Items returns a copy of the ordered line items.
func (s *Sale) Items() []SaleItem {
	out := make([]SaleItem, len(s.items))
	copy(out, s.items)
	return out
}

// AddItem adds a product line with the given name/price snapshot. Adding a
// product that already has a line merges by incrementing that line's
// quantity; it never creates a duplicate line. Fails with InvalidState on a
// non-pending sale.
func (s *Sale) AddItem(productID uuid.UUID, productName string, unitPrice decimal.Decimal, quantity int) Result[Void] {
	if s.status != SaleStatusPending {
		return Failf[Void](CodeInvalidState, "cannot modify items of a %s sale", s.status)
	}
	if quantity <= 0 {
		return Failf[Void](CodeValidationFailed, "quantity must be greater than zero")
	}
	if productName == "" {
		return Failf[Void](CodeValidationFailed, "product name is required")
	}
	if unitPrice.IsNegative() {
		return Failf[Void](CodeValidationFailed, "unit price must not be negative")
	}

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity += quantity
			s.recalculateTotals()
			return OKVoid()
		}
	}

	s.items = append(s.items, SaleItem{
		ID:          uuid.New(),
		SaleID:      s.id,
		ProductID:   productID,
		ProductName: productName,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
	})
	s.recalculateTotals()
	return OKVoid()
}

// RemoveItem removes the line for the given product. Fails with ItemNotFound
// when no such line exists, and with InvalidState on a non-pending sale.
func (s *Sale) RemoveItem(productID uuid.UUID) Result[Void] {
	if s.status != SaleStatusPending {
		return Failf[Void](CodeInvalidState, "cannot modify items of a %s sale", s.status)
	}
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.recalculateTotals()
			return OKVoid()
		}
	}
	return Failf[Void](CodeItemNotFound, "sale has no item for product %s", productID)
}

// ApplyDiscount sets the discount amount and recomputes totals. The amount
// must be non-negative and must not exceed the current subtotal. Fails with
// InvalidState on a non-pending sale.
func (s *Sale) ApplyDiscount(amount decimal.Decimal) Result[Void] {
	if s.status != SaleStatusPending {
		return Failf[Void](CodeInvalidState, "cannot discount a %s sale", s.status)
	}
	if amount.IsNegative() {
		return Failf[Void](CodeValidationFailed, "discount must not be negative")
	}
	if amount.GreaterThan(s.subtotal) {
		return Failf[Void](CodeValidationFailed, "discount exceeds subtotal")
	}
	s.discountAmount = amount
	s.recalculateTotals()
	return OKVoid()
}

// Complete transitions a pending sale with at least one item to Completed,
// stamps the completion time and raises SaleCompleted.
func (s *Sale) Complete() Result[Void] {
	if s.status != SaleStatusPending {
		return Failf[Void](CodeInvalidState, "cannot complete a %s sale", s.status)
	}
	if len(s.items) == 0 {
		return Failf[Void](CodeInvalidState, "sale has no items")
	}

	now := time.Now().UTC()
	s.status = SaleStatusCompleted
	s.completedAt = &now
	s.Raise(SaleCompletedEvent{
		BaseEvent:   newBaseEvent(EventTypeSaleCompleted, s.id),
		CustomerID:  s.customerID,
		TotalAmount: s.totalAmount,
		ItemCount:   len(s.items),
	})
	return OKVoid()
}

// Cancel transitions a pending sale to Cancelled.
func (s *Sale) Cancel() Result[Void] {
	if s.status != SaleStatusPending {
		return Failf[Void](CodeInvalidState, "cannot cancel a %s sale", s.status)
	}
	s.status = SaleStatusCancelled
	return OKVoid()
}

// recalculateTotals derives subtotal, tax and total from the current item
// list and discount. It is a pure function of that state, never an
// incremental adjustment.
func (s *Sale) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range s.items {
		subtotal = subtotal.Add(item.TotalPrice())
	}
	s.subtotal = subtotal
	s.taxAmount = subtotal.Mul(TaxRate)
	s.totalAmount = subtotal.Add(s.taxAmount).Sub(s.discountAmount)
}
