package event

import (
	"context"
	"log/slog"

	"loan-admin/internal/infrastructure/monitoring"
)

// LogEventPublisher writes events to the log. It stands in for RabbitMQ when
// no broker is configured.
type LogEventPublisher struct {
	logger *slog.Logger
}

func NewLogEventPublisher(logger *slog.Logger) *LogEventPublisher {
	return &LogEventPublisher{logger: logger.With("component", "LogEventPublisher")}
}

func (p *LogEventPublisher) PublishLoanCreated(ctx context.Context, event LoanCreatedEvent) error {
	return p.log(ctx, routingKeyLoanCreated, event.EventID, "loanId", event.LoanID, "customerId", event.CustomerID)
}

func (p *LogEventPublisher) PublishLoanStatusChanged(ctx context.Context, event LoanStatusChangedEvent) error {
	return p.log(ctx, routingKeyLoanStatusChanged, event.EventID, "loanId", event.LoanID, "oldStatus", event.OldStatus, "newStatus", event.NewStatus)
}

func (p *LogEventPublisher) PublishLoanClosed(ctx context.Context, event LoanClosedEvent) error {
	return p.log(ctx, routingKeyLoanClosed, event.EventID, "loanId", event.LoanID, "paymentId", event.PaymentID)
}

func (p *LogEventPublisher) PublishPaymentRecorded(ctx context.Context, event PaymentRecordedEvent) error {
	return p.log(ctx, routingKeyPaymentRecorded, event.EventID, "loanId", event.LoanID, "paymentId", event.PaymentID, "amountPaid", event.AmountPaid.String())
}

func (p *LogEventPublisher) log(ctx context.Context, routingKey, eventID string, args ...any) error {
	args = append([]any{"routingKey", routingKey, "eventId", eventID}, args...)
	p.logger.InfoContext(ctx, "Event emitted", args...)
	monitoring.RecordEventPublished(routingKey, "logged")
	return nil
}

var _ EventPublisher = (*LogEventPublisher)(nil)
