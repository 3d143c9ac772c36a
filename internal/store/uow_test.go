package store

import (
	"context"
	"errors"
	"testing"

	"sales-service/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRunner simulates the transactional boundary without a database: it
// records invocations and reports success or failure without executing the
// staged SQL.
type stubRunner struct {
	calls int
	err   error
}

func (r *stubRunner) RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	r.calls++
	return r.err
}

type capturingPublisher struct {
	events []domain.Event
}

func (p *capturingPublisher) Publish(ctx context.Context, e domain.Event) {
	p.events = append(p.events, e)
}

func newPendingSale(t *testing.T) *domain.Sale {
	t.Helper()
	res := domain.NewSale(nil, "cash")
	require.True(t, res.IsOK())
	return res.Value()
}

func TestCommitPublishesEventsAfterCommit(t *testing.T) {
	runner := &stubRunner{}
	pub := &capturingPublisher{}
	uow := NewUnitOfWork(runner)

	sale := newPendingSale(t)
	require.True(t, sale.AddItem(sale.ID(), "Widget", decimal.RequireFromString("10.00"), 1).IsOK())
	require.True(t, sale.Complete().IsOK())
	uow.RegisterNew(sale)

	err := uow.Commit(context.Background(), pub)
	require.NoError(t, err)
	assert.Equal(t, 1, runner.calls)

	// SaleCreated then SaleCompleted, in raise order, exactly once
	require.Len(t, pub.events, 2)
	assert.Equal(t, domain.EventTypeSaleCreated, pub.events[0].EventName())
	assert.Equal(t, domain.EventTypeSaleCompleted, pub.events[1].EventName())

	// ownership transferred: the aggregate's queue is empty after commit
	assert.Empty(t, sale.PendingEvents())

	// a second commit has nothing tracked and publishes nothing
	require.NoError(t, uow.Commit(context.Background(), pub))
	assert.Len(t, pub.events, 2)
	assert.Equal(t, 1, runner.calls)
}

func TestCommitFailureSuppressesEvents(t *testing.T) {
	runner := &stubRunner{err: errors.New("connection reset")}
	pub := &capturingPublisher{}
	uow := NewUnitOfWork(runner)

	sale := newPendingSale(t)
	uow.RegisterNew(sale)

	err := uow.Commit(context.Background(), pub)
	require.Error(t, err)
	assert.Empty(t, pub.events, "no events may reach subscribers when the commit fails")
}

func TestCommitAccumulatesInTouchOrder(t *testing.T) {
	runner := &stubRunner{}
	pub := &capturingPublisher{}
	uow := NewUnitOfWork(runner)

	first := newPendingSale(t)
	res := domain.NewCustomer("Ada", "ada@example.com", "", "")
	require.True(t, res.IsOK())
	second := res.Value()

	uow.RegisterNew(first)
	uow.RegisterNew(second)

	require.NoError(t, uow.Commit(context.Background(), pub))
	require.Len(t, pub.events, 2)
	assert.Equal(t, first.ID(), pub.events[0].AggregateID())
	assert.Equal(t, second.ID(), pub.events[1].AggregateID())
}

func TestRegisterSameAggregateTwice(t *testing.T) {
	runner := &stubRunner{}
	pub := &capturingPublisher{}
	uow := NewUnitOfWork(runner)

	sale := newPendingSale(t)
	uow.RegisterNew(sale)
	uow.RegisterDirty(sale)

	require.NoError(t, uow.Commit(context.Background(), pub))
	assert.Len(t, pub.events, 1, "a twice-registered aggregate is drained once")
}

func TestCommitCancelledContext(t *testing.T) {
	runner := &stubRunner{}
	pub := &capturingPublisher{}
	uow := NewUnitOfWork(runner)

	sale := newPendingSale(t)
	uow.RegisterNew(sale)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := uow.Commit(ctx, pub)
	require.Error(t, err)
	assert.Equal(t, 0, runner.calls, "cancellation before persistence must abort cleanly")
	assert.Empty(t, pub.events)
	assert.Len(t, sale.PendingEvents(), 1, "aggregate keeps its events when nothing was committed")
}

func TestCommitNilPublisher(t *testing.T) {
	runner := &stubRunner{}
	uow := NewUnitOfWork(runner)
	uow.RegisterNew(newPendingSale(t))

	assert.NoError(t, uow.Commit(context.Background(), nil))
}
