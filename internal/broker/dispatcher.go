package broker

import (
	"context"
	"sync"

	"sales-service/internal/domain"
	"sales-service/internal/util"

	"go.uber.org/zap"
)

// Subscriber handles one kind of domain event.
type Subscriber interface {
	Name() string
	Handle(ctx context.Context, event domain.Event) error
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc struct {
	SubscriberName string
	Fn             func(ctx context.Context, event domain.Event) error
}

func (s SubscriberFunc) Name() string { return s.SubscriberName }

func (s SubscriberFunc) Handle(ctx context.Context, event domain.Event) error {
	return s.Fn(ctx, event)
}

// Dispatcher routes committed domain events to the subscribers registered
// for their event name. A subscriber fault is logged and counted but never
// propagated: the write already committed, delivery problems must not fail
// the request.
type Dispatcher struct {
	mu     sync.RWMutex
	subs   map[string][]Subscriber
	logger *zap.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		subs:   make(map[string][]Subscriber),
		logger: util.GetLogger(),
	}
}

// Subscribe registers a subscriber for an event name. Subscribers fire in
// registration order.
func (d *Dispatcher) Subscribe(eventName string, sub Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs[eventName] = append(d.subs[eventName], sub)
}

// Publish delivers the event to every subscriber registered for its name.
func (d *Dispatcher) Publish(ctx context.Context, event domain.Event) {
	d.mu.RLock()
	subs := d.subs[event.EventName()]
	d.mu.RUnlock()

	util.EventsPublishedTotal.WithLabelValues(event.EventName()).Inc()

	for _, sub := range subs {
		if err := sub.Handle(ctx, event); err != nil {
			util.EventSubscriberFailures.WithLabelValues(sub.Name()).Inc()
			d.logger.Error("Subscriber failed to handle event",
				zap.String("subscriber", sub.Name()),
				zap.String("event_type", event.EventName()),
				zap.String("aggregate_id", event.AggregateID().String()),
				zap.Error(err))
		}
	}
}

var _ domain.EventPublisher = (*Dispatcher)(nil)
