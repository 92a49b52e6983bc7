package loan

import (
	"fmt"
	"time"

	"loan-admin/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

type InterestType string

const (
	InterestFlat     InterestType = "Flat"
	InterestReducing InterestType = "Reducing"
)

func (t InterestType) Valid() bool {
	return t == InterestFlat || t == InterestReducing
}

type Status string

const (
	StatusActive  Status = "Active"
	StatusClosed  Status = "Closed"
	StatusOverdue Status = "Overdue"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusClosed || s == StatusOverdue
}

type Loan struct {
	ID                 int64
	CustomerID         int64
	CustomerName       string
	CustomerMobile     string
	CustomerAddress    string
	LoanAmount         decimal.Decimal
	InterestRate       decimal.Decimal
	InterestType       InterestType
	StartDate          time.Time
	TenureMonths       int
	EMIAmount          decimal.Decimal
	TotalPayableAmount decimal.Decimal
	OutstandingBalance decimal.Decimal
	Status             Status
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Installment is one projected monthly repayment.
type Installment struct {
	Number  int
	DueDate time.Time
	Amount  decimal.Decimal
}

// NewLoan freezes the amortization figures onto a fresh Active loan whose
// outstanding balance starts at the total payable.
func NewLoan(customerID int64, principal, rate decimal.Decimal, interestType InterestType, tenureMonths int, startDate time.Time) (*Loan, error) {
	if customerID <= 0 {
		return nil, apperrors.NewValidationError("customerId", "must be a valid customer id")
	}

	a, err := CalculateAmortization(principal, rate, tenureMonths, interestType)
	if err != nil {
		return nil, err
	}

	if startDate.IsZero() {
		startDate = time.Now().UTC().Truncate(24 * time.Hour)
	}

	return &Loan{
		CustomerID:         customerID,
		LoanAmount:         principal,
		InterestRate:       rate,
		InterestType:       interestType,
		StartDate:          startDate,
		TenureMonths:       tenureMonths,
		EMIAmount:          a.EMI,
		TotalPayableAmount: a.TotalPayable,
		OutstandingBalance: a.TotalPayable,
		Status:             StatusActive,
	}, nil
}

// ExpectedInterest is the interest the loan will earn if fully repaid.
func (l *Loan) ExpectedInterest() decimal.Decimal {
	return l.TotalPayableAmount.Sub(l.LoanAmount)
}

// CanTransitionTo reports whether a manual status change is allowed.
// Closed is reached only through repayment and is terminal.
func (l *Loan) CanTransitionTo(next Status) error {
	if !next.Valid() {
		return apperrors.NewValidationError("status", fmt.Sprintf("unknown loan status %q", next))
	}
	if l.Status == StatusClosed {
		return fmt.Errorf("%w: loan %d cannot change status", apperrors.ErrLoanClosed, l.ID)
	}
	if next == StatusClosed {
		return apperrors.NewValidationError("status", "loans are closed by repayment, not manually")
	}
	return nil
}

// Schedule projects the monthly installments of the loan. The final
// installment absorbs rounding so the installments sum to the total payable.
func (l *Loan) Schedule() ([]Installment, error) {
	if l.TenureMonths <= 0 || l.EMIAmount.IsNegative() {
		return nil, fmt.Errorf("%w: invalid loan terms for schedule generation", apperrors.ErrInvalidArgument)
	}

	schedule := make([]Installment, 0, l.TenureMonths)
	accumulated := decimal.Zero

	for n := 1; n <= l.TenureMonths; n++ {
		remaining := l.TotalPayableAmount.Sub(accumulated)
		amount := decimal.Min(l.EMIAmount, remaining)
		if n == l.TenureMonths {
			amount = remaining
		}
		if amount.IsNegative() {
			amount = decimal.Zero
		}
		schedule = append(schedule, Installment{
			Number:  n,
			DueDate: l.StartDate.AddDate(0, n, 0),
			Amount:  amount,
		})
		accumulated = accumulated.Add(amount)
	}

	if !accumulated.Equal(l.TotalPayableAmount) {
		return nil, fmt.Errorf("%w: schedule total %s != total payable %s",
			apperrors.ErrInternalServer, accumulated.StringFixed(2), l.TotalPayableAmount.StringFixed(2))
	}
	return schedule, nil
}
