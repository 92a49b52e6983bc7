package loan

import (
	"fmt"

	"loan-admin/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

const (
	// MoneyPlaces is the precision of every stored currency amount.
	MoneyPlaces int32 = 2
	// RatePlaces is the precision of a stored annual interest rate.
	RatePlaces int32 = 4

	maxTenureMonths = 1200
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
	monthly = decimal.NewFromInt(1200)
)

// WithinPlaces reports whether d needs no more than places decimal digits.
func WithinPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

type Amortization struct {
	EMI           decimal.Decimal
	TotalPayable  decimal.Decimal
	TotalInterest decimal.Decimal
}

// CalculateAmortization derives the monthly installment and total repayment
// for a loan. rate is an annual percentage. Money outputs are rounded to two
// decimal places. For interest-bearing Reducing loans TotalPayable is exactly
// EMI * tenure; a zero-rate loan repays exactly the principal and its last
// installment absorbs the rounding of EMI.
//
//	Flat:     interest = P * rate * (tenure/12) / 100, emi = (P + interest) / tenure
//	Reducing: r = rate/1200, emi = P * r * (1+r)^n / ((1+r)^n - 1)
func CalculateAmortization(principal, rate decimal.Decimal, tenureMonths int, interestType InterestType) (Amortization, error) {
	if !interestType.Valid() {
		return Amortization{}, apperrors.NewValidationError("interestType", fmt.Sprintf("unsupported interest type %q", interestType))
	}
	if !principal.IsPositive() {
		return Amortization{}, apperrors.NewValidationError("loanAmount", "must be greater than zero")
	}
	if !WithinPlaces(principal, MoneyPlaces) {
		return Amortization{}, apperrors.NewValidationError("loanAmount", "must have at most 2 decimal places")
	}
	if tenureMonths < 1 {
		return Amortization{}, apperrors.NewValidationError("tenureMonths", "must be at least 1")
	}
	if tenureMonths > maxTenureMonths {
		return Amortization{}, apperrors.NewValidationError("tenureMonths", fmt.Sprintf("must be at most %d", maxTenureMonths))
	}
	if rate.IsNegative() {
		return Amortization{}, apperrors.NewValidationError("interestRate", "must not be negative")
	}
	if !WithinPlaces(rate, RatePlaces) {
		return Amortization{}, apperrors.NewValidationError("interestRate", "must have at most 4 decimal places")
	}

	n := decimal.NewFromInt(int64(tenureMonths))

	if interestType == InterestFlat {
		interest := principal.Mul(rate).Mul(n).Div(twelve).Div(hundred).Round(2)
		total := principal.Add(interest)
		return Amortization{
			EMI:           total.Div(n).Round(2),
			TotalPayable:  total,
			TotalInterest: interest,
		}, nil
	}

	if rate.IsZero() {
		return Amortization{
			EMI:           principal.Div(n).Round(2),
			TotalPayable:  principal,
			TotalInterest: decimal.Zero,
		}, nil
	}

	r := rate.Div(monthly)
	factor, err := one.Add(r).PowInt32(int32(tenureMonths))
	if err != nil {
		return Amortization{}, fmt.Errorf("%w: computing annuity factor: %v", apperrors.ErrInvalidArgument, err)
	}
	emi := principal.Mul(r).Mul(factor).Div(factor.Sub(one)).Round(2)

	total := emi.Mul(n)
	return Amortization{
		EMI:           emi,
		TotalPayable:  total,
		TotalInterest: total.Sub(principal),
	}, nil
}
