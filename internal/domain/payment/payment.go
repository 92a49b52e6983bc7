package payment

import (
	"time"

	"loan-admin/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodCash Method = "Cash"
	MethodBank Method = "Bank"
	MethodUPI  Method = "UPI"
)

func (m Method) Valid() bool {
	return m == MethodCash || m == MethodBank || m == MethodUPI
}

// Payment is an immutable ledger entry.
type Payment struct {
	ID               int64
	LoanID           int64
	PaymentDate      time.Time
	AmountPaid       decimal.Decimal
	PaymentMethod    Method
	RemainingBalance decimal.Decimal
	InterestApplied  decimal.Decimal
	LateFee          decimal.Decimal
	RecordedBy       int64
	CreatedAt        time.Time

	// Loan summary populated by list queries.
	CustomerID   int64
	CustomerName string
	LoanAmount   decimal.Decimal
	LoanStatus   loan.Status
}
