package domain

import (
	"context"

	"github.com/google/uuid"
)

// Recorder is an append-only buffer of domain events raised by an aggregate.
// It is embedded by value in every aggregate type; there is no base-class
// hierarchy. An aggregate (and therefore its Recorder) is not safe for
// concurrent use and must be confined to one logical transaction at a time.
type Recorder struct {
	pending []Event
}

// Raise appends an event to the pending queue.
func (r *Recorder) Raise(e Event) {
	r.pending = append(r.pending, e)
}

// PendingEvents returns a snapshot of the queued events without draining them.
func (r *Recorder) PendingEvents() []Event {
	out := make([]Event, len(r.pending))
	copy(out, r.pending)
	return out
}

// DrainEvents returns the queued events in raise order and empties the queue.
// The caller takes exclusive ownership of the returned slice; the queue is
// empty immediately after drain.
func (r *Recorder) DrainEvents() []Event {
	drained := r.pending
	r.pending = nil
	return drained
}

// EventSource is the drainable-event capability every aggregate exposes
// through its embedded Recorder.
type EventSource interface {
	PendingEvents() []Event
	DrainEvents() []Event
}

// AggregateRoot is the entry point of a consistency boundary: identified,
// mutated only through its own methods, and a source of domain events.
type AggregateRoot interface {
	ID() uuid.UUID
	EventSource
}

// EventPublisher delivers committed domain events to subscribers.
// Implementations must tolerate subscriber faults without surfacing them:
// by the time Publish runs, the mutation that raised the event is durable.
type EventPublisher interface {
	Publish(ctx context.Context, e Event)
}

// UnitOfWork tracks aggregates touched within one use-case call and commits
// their mutations as a single atomic operation. The publisher is handed in at
// the commit boundary rather than held as ambient state; events drained from
// the tracked aggregates are published only after the persist step succeeds.
type UnitOfWork interface {
	RegisterNew(agg AggregateRoot)
	RegisterDirty(agg AggregateRoot)
	Commit(ctx context.Context, pub EventPublisher) error
}

// UnitOfWorkFactory creates one UnitOfWork per incoming use-case call.
type UnitOfWorkFactory interface {
	New() UnitOfWork
}
