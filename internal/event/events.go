package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	routingKeyLoanCreated       = "loan.created"
	routingKeyLoanStatusChanged = "loan.status.changed"
	routingKeyLoanClosed        = "loan.closed"
	routingKeyPaymentRecorded   = "payment.recorded"
)

type EventPublisher interface {
	PublishLoanCreated(ctx context.Context, event LoanCreatedEvent) error
	PublishLoanStatusChanged(ctx context.Context, event LoanStatusChangedEvent) error
	PublishLoanClosed(ctx context.Context, event LoanClosedEvent) error
	PublishPaymentRecorded(ctx context.Context, event PaymentRecordedEvent) error
}

// Envelope carries the fields shared by every published event.
type Envelope struct {
	EventID   string    `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
}

func newEnvelope() Envelope {
	return Envelope{EventID: uuid.NewString(), Timestamp: time.Now().UTC()}
}

type LoanCreatedEvent struct {
	Envelope
	LoanID             int64           `json:"loanId"`
	CustomerID         int64           `json:"customerId"`
	LoanAmount         decimal.Decimal `json:"loanAmount"`
	InterestType       string          `json:"interestType"`
	TenureMonths       int             `json:"tenureMonths"`
	EMIAmount          decimal.Decimal `json:"emiAmount"`
	TotalPayableAmount decimal.Decimal `json:"totalPayableAmount"`
}

type LoanStatusChangedEvent struct {
	Envelope
	LoanID    int64  `json:"loanId"`
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
}

type LoanClosedEvent struct {
	Envelope
	LoanID     int64 `json:"loanId"`
	CustomerID int64 `json:"customerId"`
	PaymentID  int64 `json:"paymentId"`
}

type PaymentRecordedEvent struct {
	Envelope
	PaymentID        int64           `json:"paymentId"`
	LoanID           int64           `json:"loanId"`
	AmountPaid       decimal.Decimal `json:"amountPaid"`
	LateFee          decimal.Decimal `json:"lateFee"`
	PaymentMethod    string          `json:"paymentMethod"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	LoanStatus       string          `json:"loanStatus"`
	RecordedBy       int64           `json:"recordedBy"`
}

func NewLoanCreatedEvent(loanID, customerID int64, amount decimal.Decimal, interestType string, tenure int, emi, total decimal.Decimal) LoanCreatedEvent {
	return LoanCreatedEvent{
		Envelope:           newEnvelope(),
		LoanID:             loanID,
		CustomerID:         customerID,
		LoanAmount:         amount,
		InterestType:       interestType,
		TenureMonths:       tenure,
		EMIAmount:          emi,
		TotalPayableAmount: total,
	}
}

func NewLoanStatusChangedEvent(loanID int64, oldStatus, newStatus string) LoanStatusChangedEvent {
	return LoanStatusChangedEvent{
		Envelope:  newEnvelope(),
		LoanID:    loanID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}
}

func NewLoanClosedEvent(loanID, customerID, paymentID int64) LoanClosedEvent {
	return LoanClosedEvent{
		Envelope:   newEnvelope(),
		LoanID:     loanID,
		CustomerID: customerID,
		PaymentID:  paymentID,
	}
}

type PaymentRecordedParams struct {
	PaymentID        int64
	LoanID           int64
	AmountPaid       decimal.Decimal
	LateFee          decimal.Decimal
	PaymentMethod    string
	RemainingBalance decimal.Decimal
	LoanStatus       string
	RecordedBy       int64
}

func NewPaymentRecordedEvent(p PaymentRecordedParams) PaymentRecordedEvent {
	return PaymentRecordedEvent{
		Envelope:         newEnvelope(),
		PaymentID:        p.PaymentID,
		LoanID:           p.LoanID,
		AmountPaid:       p.AmountPaid,
		LateFee:          p.LateFee,
		PaymentMethod:    p.PaymentMethod,
		RemainingBalance: p.RemainingBalance,
		LoanStatus:       p.LoanStatus,
		RecordedBy:       p.RecordedBy,
	}
}
