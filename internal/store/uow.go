package store

import (
	"context"
	"fmt"
	"time"

	"sales-service/internal/domain"
	"sales-service/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type registrationKind int

const (
	registerNew registrationKind = iota
	registerDirty
)

type registration struct {
	agg  domain.AggregateRoot
	kind registrationKind
}

// UnitOfWork collects aggregates touched during one use-case call and
// commits their mutations as a single transaction. Per commit:
//
//  1. every tracked aggregate is drained, in the order the aggregates were
//     first registered, FIFO within each aggregate;
//  2. all registrations are persisted inside one transaction — on failure
//     nothing is published and no partial state is visible;
//  3. only after the commit succeeds are the drained events handed to the
//     publisher, in accumulation order.
//
// A UnitOfWork is request-scoped and not safe for concurrent use.
type UnitOfWork struct {
	runner TxRunner
	logger *zap.Logger
	regs   []registration
	seen   map[uuid.UUID]struct{}
}

// NewUnitOfWork creates a unit of work that commits through runner.
func NewUnitOfWork(runner TxRunner) *UnitOfWork {
	return &UnitOfWork{
		runner: runner,
		logger: util.GetLogger(),
		seen:   make(map[uuid.UUID]struct{}),
	}
}

// RegisterNew tracks an aggregate that must be inserted on commit.
func (u *UnitOfWork) RegisterNew(agg domain.AggregateRoot) {
	u.register(agg, registerNew)
}

// RegisterDirty tracks an aggregate that must be updated on commit.
// Re-registering an already tracked aggregate keeps its first registration.
func (u *UnitOfWork) RegisterDirty(agg domain.AggregateRoot) {
	u.register(agg, registerDirty)
}

func (u *UnitOfWork) register(agg domain.AggregateRoot, kind registrationKind) {
	if _, ok := u.seen[agg.ID()]; ok {
		return
	}
	u.seen[agg.ID()] = struct{}{}
	u.regs = append(u.regs, registration{agg: agg, kind: kind})
}

// Commit persists every tracked aggregate atomically and then publishes the
// events those mutations raised. The publisher is passed at the call
// boundary; a nil publisher drops the events after a successful commit.
func (u *UnitOfWork) Commit(ctx context.Context, pub domain.EventPublisher) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(u.regs) == 0 {
		return nil
	}

	// Drain before commit: the unit of work takes one-shot ownership of the
	// pending events; aggregates are empty from here on.
	var events []domain.Event
	for _, reg := range u.regs {
		events = append(events, reg.agg.DrainEvents()...)
	}

	start := time.Now()
	err := u.runner.RunInTx(ctx, func(tx *sqlx.Tx) error {
		for _, reg := range u.regs {
			if err := u.persist(ctx, tx, reg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	util.CommitLatency.Observe(time.Since(start).Seconds())

	util.AggregatesCommittedTotal.Add(float64(len(u.regs)))
	u.logger.Debug("Unit of work committed",
		zap.Int("aggregates", len(u.regs)),
		zap.Int("events", len(events)))

	if pub != nil {
		for _, e := range events {
			pub.Publish(ctx, e)
		}
	}

	u.regs = nil
	u.seen = make(map[uuid.UUID]struct{})
	return nil
}

func (u *UnitOfWork) persist(ctx context.Context, tx *sqlx.Tx, reg registration) error {
	switch agg := reg.agg.(type) {
	case *domain.Product:
		if reg.kind == registerNew {
			return insertProduct(ctx, tx, agg)
		}
		return updateProduct(ctx, tx, agg)
	case *domain.Category:
		if reg.kind == registerNew {
			return insertCategory(ctx, tx, agg)
		}
		return updateCategory(ctx, tx, agg)
	case *domain.Customer:
		if reg.kind == registerNew {
			return insertCustomer(ctx, tx, agg)
		}
		return updateCustomer(ctx, tx, agg)
	case *domain.Sale:
		if reg.kind == registerNew {
			return insertSale(ctx, tx, agg)
		}
		return updateSale(ctx, tx, agg)
	default:
		return fmt.Errorf("unit of work cannot persist aggregate type %T", reg.agg)
	}
}

// Factory creates one UnitOfWork per incoming use-case call.
type Factory struct {
	runner TxRunner
}

// NewFactory creates a unit-of-work factory backed by runner.
func NewFactory(runner TxRunner) *Factory {
	return &Factory{runner: runner}
}

// New returns a fresh unit of work.
func (f *Factory) New() domain.UnitOfWork {
	return NewUnitOfWork(f.runner)
}

var _ domain.UnitOfWorkFactory = (*Factory)(nil)
