package worker

import (
	"context"
	"encoding/json"

	"sales-service/internal/broker"
	"sales-service/internal/domain"
	"sales-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventLedger marks consumed events as processed so replays are no-ops.
type EventLedger interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// AuditWorker consumes the sales event topic and records every event in the
// processed-events ledger. Duplicate deliveries are detected by event id and
// skipped, which makes the audit trail exactly-once over an at-least-once
// topic.
type AuditWorker struct {
	consumer *broker.Consumer
	ledger   EventLedger
	logger   *zap.Logger
}

// NewAuditWorker creates an audit worker.
func NewAuditWorker(consumer *broker.Consumer, ledger EventLedger) *AuditWorker {
	return &AuditWorker{
		consumer: consumer,
		ledger:   ledger,
		logger:   util.GetLogger(),
	}
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting audit worker")
	return w.consumer.StartConsuming(ctx, w.handleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	w.logger.Info("Stopping audit worker")
	return w.consumer.Close()
}

func (w *AuditWorker) handleMessage(ctx context.Context, msg kafka.Message) error {
	var envelope domain.BaseEvent
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		// a malformed message will never parse; commit it instead of
		// redelivering forever
		w.logger.Error("Skipping malformed event", zap.Error(err))
		return nil
	}

	processed, err := w.ledger.IsEventProcessed(ctx, envelope.EventID.String())
	if err != nil {
		return err
	}
	if processed {
		w.logger.Debug("Skipping already processed event",
			zap.String("event_id", envelope.EventID.String()))
		return nil
	}

	if err := w.ledger.MarkEventProcessed(ctx, envelope.EventID.String(), envelope.EventType); err != nil {
		return err
	}

	w.logger.Info("Event recorded",
		zap.String("event_id", envelope.EventID.String()),
		zap.String("event_type", envelope.EventType),
		zap.String("aggregate_id", envelope.Aggregate.String()))
	return nil
}
