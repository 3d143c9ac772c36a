package broker

import (
	"context"
	"errors"
	"testing"

	"sales-service/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func newCategoryID() uuid.UUID { return uuid.New() }

func newProductCreated(t *testing.T) domain.Event {
	t.Helper()
	res := domain.NewProduct("Keyboard", "KB-100", "", mustDecimal(t, "49.90"), mustDecimal(t, "20.00"), 5, newCategoryID())
	require.True(t, res.IsOK())
	events := res.Value().DrainEvents()
	require.Len(t, events, 1)
	return events[0]
}

func TestDispatcherRoutesByEventName(t *testing.T) {
	d := NewDispatcher()

	var got []string
	d.Subscribe(domain.EventTypeProductCreated, SubscriberFunc{
		SubscriberName: "first",
		Fn: func(ctx context.Context, e domain.Event) error {
			got = append(got, "first:"+e.EventName())
			return nil
		},
	})
	d.Subscribe(domain.EventTypeProductCreated, SubscriberFunc{
		SubscriberName: "second",
		Fn: func(ctx context.Context, e domain.Event) error {
			got = append(got, "second:"+e.EventName())
			return nil
		},
	})
	d.Subscribe(domain.EventTypeSaleCompleted, SubscriberFunc{
		SubscriberName: "unrelated",
		Fn: func(ctx context.Context, e domain.Event) error {
			got = append(got, "unrelated")
			return nil
		},
	})

	d.Publish(context.Background(), newProductCreated(t))

	assert.Equal(t, []string{
		"first:" + domain.EventTypeProductCreated,
		"second:" + domain.EventTypeProductCreated,
	}, got, "subscribers fire in registration order, only for their event name")
}

func TestDispatcherSubscriberFailureDoesNotStopOthers(t *testing.T) {
	d := NewDispatcher()

	var delivered bool
	d.Subscribe(domain.EventTypeProductCreated, SubscriberFunc{
		SubscriberName: "failing",
		Fn: func(ctx context.Context, e domain.Event) error {
			return errors.New("broker unavailable")
		},
	})
	d.Subscribe(domain.EventTypeProductCreated, SubscriberFunc{
		SubscriberName: "healthy",
		Fn: func(ctx context.Context, e domain.Event) error {
			delivered = true
			return nil
		},
	})

	d.Publish(context.Background(), newProductCreated(t))
	assert.True(t, delivered, "a failing subscriber must not block the rest")
}

func TestDispatcherNoSubscribers(t *testing.T) {
	d := NewDispatcher()
	assert.NotPanics(t, func() {
		d.Publish(context.Background(), newProductCreated(t))
	})
}

type stubWriter struct {
	keys   []string
	values []interface{}
	err    error
}

func (w *stubWriter) PublishEvent(ctx context.Context, key string, event interface{}) error {
	w.keys = append(w.keys, key)
	w.values = append(w.values, event)
	return w.err
}

func TestKafkaRelayKeysByAggregateID(t *testing.T) {
	w := &stubWriter{}
	relay := NewKafkaRelay(w)

	event := newProductCreated(t)
	require.NoError(t, relay.Handle(context.Background(), event))

	require.Len(t, w.keys, 1)
	assert.Equal(t, event.AggregateID().String(), w.keys[0])
	assert.Equal(t, event, w.values[0])
}

func TestKafkaRelayPropagatesWriterError(t *testing.T) {
	w := &stubWriter{err: errors.New("write timeout")}
	relay := NewKafkaRelay(w)

	err := relay.Handle(context.Background(), newProductCreated(t))
	assert.Error(t, err)
}
