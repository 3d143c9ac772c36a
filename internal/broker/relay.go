package broker

import (
	"context"

	"sales-service/internal/domain"
)

// EventWriter is the slice of Producer the relay needs.
type EventWriter interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// KafkaRelay forwards committed domain events to the sales event topic,
// keyed by aggregate id so events for one aggregate stay ordered within a
// partition.
type KafkaRelay struct {
	writer EventWriter
}

// NewKafkaRelay creates a relay that writes through writer.
func NewKafkaRelay(writer EventWriter) *KafkaRelay {
	return &KafkaRelay{writer: writer}
}

func (r *KafkaRelay) Name() string { return "kafka-relay" }

func (r *KafkaRelay) Handle(ctx context.Context, event domain.Event) error {
	return r.writer.PublishEvent(ctx, event.AggregateID().String(), event)
}

var _ Subscriber = (*KafkaRelay)(nil)
