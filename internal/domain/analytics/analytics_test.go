package analytics

import (
	"testing"

	"loan-admin/internal/domain/loan"
	"loan-admin/internal/domain/payment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fixture() ([]*loan.Loan, []*payment.Payment) {
	loans := []*loan.Loan{
		{ID: 1, LoanAmount: d("12000"), TotalPayableAmount: d("13440"), OutstandingBalance: d("12440"), Status: loan.StatusActive},
		{ID: 2, LoanAmount: d("50000"), TotalPayableAmount: d("55000"), OutstandingBalance: d("0"), Status: loan.StatusClosed},
		{ID: 3, LoanAmount: d("8000"), TotalPayableAmount: d("8800"), OutstandingBalance: d("8800"), Status: loan.StatusOverdue},
	}
	payments := []*payment.Payment{
		{ID: 1, LoanID: 1, AmountPaid: d("1000")},
		{ID: 2, LoanID: 2, AmountPaid: d("55000")},
	}
	return loans, payments
}

func TestAggregate(t *testing.T) {
	loans, payments := fixture()

	got := Aggregate(loans, payments)

	assert.Equal(t, int64(1), got.ActiveLoans)
	assert.Equal(t, int64(1), got.ClosedLoans)
	assert.Equal(t, int64(1), got.OverdueLoans)
	assert.True(t, got.TotalAmountDisbursed.Equal(d("70000")), "disbursed %s", got.TotalAmountDisbursed)
	assert.True(t, got.TotalOutstandingAmount.Equal(d("21240")), "outstanding %s", got.TotalOutstandingAmount)
	assert.True(t, got.TotalRepaymentsReceived.Equal(d("56000")), "repaid %s", got.TotalRepaymentsReceived)
	assert.True(t, got.ExpectedTotalInterestEarnings.Equal(d("7240")), "interest %s", got.ExpectedTotalInterestEarnings)
}

func TestAggregateIsDeterministic(t *testing.T) {
	loans, payments := fixture()

	first := Aggregate(loans, payments)
	reversed := []*loan.Loan{loans[2], loans[1], loans[0]}
	second := Aggregate(reversed, payments)

	assert.True(t, first.TotalAmountDisbursed.Equal(second.TotalAmountDisbursed))
	assert.True(t, first.TotalOutstandingAmount.Equal(second.TotalOutstandingAmount))
	assert.Equal(t, first.ActiveLoans, second.ActiveLoans)
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil, nil)

	assert.Zero(t, got.ActiveLoans)
	assert.True(t, got.TotalAmountDisbursed.IsZero())
	assert.True(t, got.TotalRepaymentsReceived.IsZero())
}
