package payment

import (
	"loan-admin/internal/domain/loan"

	"github.com/shopspring/decimal"
)

// ApplyPayment is the pure ledger step: the new balance is
// balance - amountPaid + lateFee, and the loan closes exactly when that
// reaches zero or below. Any other status is carried over unchanged.
func ApplyPayment(balance, amountPaid, lateFee decimal.Decimal, status loan.Status) (decimal.Decimal, loan.Status) {
	newBalance := balance.Sub(amountPaid).Add(lateFee).Round(2)
	if !newBalance.IsPositive() {
		return newBalance, loan.StatusClosed
	}
	return newBalance, status
}
