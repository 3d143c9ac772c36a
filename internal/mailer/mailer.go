package mailer

import (
	"context"

	"sales-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Sender delivers sale confirmations to customers.
type Sender interface {
	SendConfirmation(ctx context.Context, to string, saleID uuid.UUID, total decimal.Decimal) error
}

// LogSender writes confirmations to the application log. It stands in for a
// real mail gateway in environments without SMTP access.
type LogSender struct {
	from   string
	logger *zap.Logger
}

// NewLogSender creates a log-backed sender using from as the sender address.
func NewLogSender(from string) *LogSender {
	return &LogSender{from: from, logger: util.GetLogger()}
}

func (s *LogSender) SendConfirmation(ctx context.Context, to string, saleID uuid.UUID, total decimal.Decimal) error {
	s.logger.Info("Sale confirmation sent",
		zap.String("from", s.from),
		zap.String("to", to),
		zap.String("sale_id", saleID.String()),
		zap.String("total", total.StringFixed(2)))
	return nil
}

var _ Sender = (*LogSender)(nil)
