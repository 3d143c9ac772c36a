package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSale(t *testing.T) *Sale {
	t.Helper()

	res := NewSale(nil, "card")
	require.True(t, res.IsOK(), "unexpected failure: %v", res.Failure())
	return res.Value()
}

// assertTotals checks the derived-totals invariant: subtotal equals the sum
// of line totals, tax is 10% of subtotal, total is subtotal + tax - discount.
func assertTotals(t *testing.T, s *Sale) {
	t.Helper()

	sum := decimal.Zero
	for _, item := range s.Items() {
		sum = sum.Add(item.TotalPrice())
	}
	assert.True(t, s.Subtotal().Equal(sum), "subtotal %s != sum of items %s", s.Subtotal(), sum)
	assert.True(t, s.TaxAmount().Equal(sum.Mul(TaxRate)), "tax %s != 10%% of subtotal", s.TaxAmount())
	want := sum.Add(s.TaxAmount()).Sub(s.DiscountAmount())
	assert.True(t, s.TotalAmount().Equal(want), "total %s != %s", s.TotalAmount(), want)
}

func TestNewSale(t *testing.T) {
	s := newTestSale(t)

	assert.Equal(t, SaleStatusPending, s.Status())
	assert.Empty(t, s.Items())
	assert.True(t, s.TotalAmount().IsZero())
	assert.Nil(t, s.CompletedAt())

	events := s.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeSaleCreated, events[0].EventName())
}

func TestNewSaleValidation(t *testing.T) {
	res := NewSale(nil, "")
	require.False(t, res.IsOK())
	assert.Equal(t, CodeValidationFailed, res.Failure().Code)

	long := make([]byte, MaxPaymentMethodLength+1)
	for i := range long {
		long[i] = 'x'
	}
	res = NewSale(nil, string(long))
	require.False(t, res.IsOK())
	assert.Equal(t, CodeValidationFailed, res.Failure().Code)
}

func TestAddItemMerges(t *testing.T) {
	s := newTestSale(t)
	productID := uuid.New()
	price := decimal.RequireFromString("10.00")

	require.True(t, s.AddItem(productID, "Widget", price, 2).IsOK())
	assertTotals(t, s)
	require.True(t, s.AddItem(productID, "Widget", price, 3).IsOK())
	assertTotals(t, s)

	items := s.Items()
	require.Len(t, items, 1, "adding the same product twice must merge, not duplicate")
	assert.Equal(t, 5, items[0].Quantity)
	assert.True(t, items[0].TotalPrice().Equal(decimal.RequireFromString("50.00")))
}

func TestAddItemValidation(t *testing.T) {
	s := newTestSale(t)
	price := decimal.RequireFromString("10.00")

	assert.Equal(t, CodeValidationFailed, s.AddItem(uuid.New(), "Widget", price, 0).Failure().Code)
	assert.Equal(t, CodeValidationFailed, s.AddItem(uuid.New(), "", price, 1).Failure().Code)
	assert.Equal(t, CodeValidationFailed, s.AddItem(uuid.New(), "Widget", decimal.RequireFromString("-1"), 1).Failure().Code)
}

func TestRemoveItem(t *testing.T) {
	s := newTestSale(t)
	p1 := uuid.New()
	p2 := uuid.New()
	price := decimal.RequireFromString("5.00")

	require.True(t, s.AddItem(p1, "Widget", price, 1).IsOK())
	require.True(t, s.AddItem(p2, "Gadget", price, 2).IsOK())

	res := s.RemoveItem(p1)
	require.True(t, res.IsOK())
	require.Len(t, s.Items(), 1)
	assert.Equal(t, p2, s.Items()[0].ProductID)
	assertTotals(t, s)

	res = s.RemoveItem(p1)
	require.False(t, res.IsOK())
	assert.Equal(t, CodeItemNotFound, res.Failure().Code)
}

func TestTotalsInvariantAcrossMutations(t *testing.T) {
	s := newTestSale(t)
	p1 := uuid.New()
	p2 := uuid.New()

	require.True(t, s.AddItem(p1, "Widget", decimal.RequireFromString("10.00"), 2).IsOK())
	assertTotals(t, s)
	require.True(t, s.AddItem(p2, "Gadget", decimal.RequireFromString("3.75"), 4).IsOK())
	assertTotals(t, s)
	require.True(t, s.ApplyDiscount(decimal.RequireFromString("2.00")).IsOK())
	assertTotals(t, s)
	require.True(t, s.RemoveItem(p2).IsOK())
	assertTotals(t, s)
	require.True(t, s.AddItem(p1, "Widget", decimal.RequireFromString("10.00"), 1).IsOK())
	assertTotals(t, s)
}

func TestApplyDiscount(t *testing.T) {
	s := newTestSale(t)
	require.True(t, s.AddItem(uuid.New(), "Widget", decimal.RequireFromString("10.00"), 2).IsOK())

	// subtotal=20.00, tax=2.00, total=22.00
	assert.True(t, s.TotalAmount().Equal(decimal.RequireFromString("22.00")))

	res := s.ApplyDiscount(decimal.RequireFromString("2.00"))
	require.True(t, res.IsOK())
	assert.True(t, s.TotalAmount().Equal(decimal.RequireFromString("20.00")))

	res = s.ApplyDiscount(decimal.RequireFromString("-1.00"))
	require.False(t, res.IsOK())
	assert.Equal(t, CodeValidationFailed, res.Failure().Code)

	res = s.ApplyDiscount(decimal.RequireFromString("100.00"))
	require.False(t, res.IsOK())
	assert.Equal(t, CodeValidationFailed, res.Failure().Code)
}

func TestCompleteEmptySale(t *testing.T) {
	s := newTestSale(t)

	res := s.Complete()
	require.False(t, res.IsOK())
	assert.Equal(t, CodeInvalidState, res.Failure().Code)
	assert.Contains(t, res.Failure().Message, "no items")
	assert.Equal(t, SaleStatusPending, s.Status())
}

func TestCompleteSale(t *testing.T) {
	s := newTestSale(t)
	require.True(t, s.AddItem(uuid.New(), "Widget", decimal.RequireFromString("10.00"), 2).IsOK())
	s.DrainEvents()

	res := s.Complete()
	require.True(t, res.IsOK())
	assert.Equal(t, SaleStatusCompleted, s.Status())
	require.NotNil(t, s.CompletedAt())

	events := s.PendingEvents()
	require.Len(t, events, 1)
	completed, ok := events[0].(SaleCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, s.ID(), completed.AggregateID())
	assert.True(t, completed.TotalAmount.Equal(s.TotalAmount()))

	// terminal states admit no further transitions
	res = s.Complete()
	require.False(t, res.IsOK())
	assert.Equal(t, CodeInvalidState, res.Failure().Code)
	res = s.Cancel()
	require.False(t, res.IsOK())
	assert.Equal(t, CodeInvalidState, res.Failure().Code)
}

func TestCancelSale(t *testing.T) {
	s := newTestSale(t)

	require.True(t, s.Cancel().IsOK())
	assert.Equal(t, SaleStatusCancelled, s.Status())

	res := s.Complete()
	require.False(t, res.IsOK())
	assert.Equal(t, CodeInvalidState, res.Failure().Code)
}

func TestTerminalSaleRejectsMutation(t *testing.T) {
	s := newTestSale(t)
	productID := uuid.New()
	price := decimal.RequireFromString("10.00")
	require.True(t, s.AddItem(productID, "Widget", price, 1).IsOK())
	require.True(t, s.Complete().IsOK())

	assert.Equal(t, CodeInvalidState, s.AddItem(uuid.New(), "Gadget", price, 1).Failure().Code)
	assert.Equal(t, CodeInvalidState, s.RemoveItem(productID).Failure().Code)
	assert.Equal(t, CodeInvalidState, s.ApplyDiscount(decimal.Zero).Failure().Code)
}

func TestSaleScenario(t *testing.T) {
	s := newTestSale(t)

	require.True(t, s.AddItem(uuid.New(), "Widget", decimal.RequireFromString("10.00"), 2).IsOK())
	assert.True(t, s.Subtotal().Equal(decimal.RequireFromString("20.00")))
	assert.True(t, s.TaxAmount().Equal(decimal.RequireFromString("2.00")))
	assert.True(t, s.TotalAmount().Equal(decimal.RequireFromString("22.00")))

	require.True(t, s.ApplyDiscount(decimal.RequireFromString("2.00")).IsOK())
	assert.True(t, s.TotalAmount().Equal(decimal.RequireFromString("20.00")))

	require.True(t, s.Complete().IsOK())
	assert.Equal(t, SaleStatusCompleted, s.Status())

	// exactly one SaleCreated and one SaleCompleted queued, in raise order
	events := s.DrainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeSaleCreated, events[0].EventName())
	assert.Equal(t, EventTypeSaleCompleted, events[1].EventName())
	assert.Empty(t, s.PendingEvents())
}

func TestItemsReturnsCopy(t *testing.T) {
	s := newTestSale(t)
	require.True(t, s.AddItem(uuid.New(), "Widget", decimal.RequireFromString("10.00"), 1).IsOK())

	items := s.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, s.Items()[0].Quantity)
	assertTotals(t, s)
}
