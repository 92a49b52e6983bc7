package loan

import (
	"errors"
	"testing"
	"time"

	"loan-admin/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateAmortization_Flat(t *testing.T) {
	a, err := CalculateAmortization(d("12000"), d("12"), 12, InterestFlat)
	require.NoError(t, err)

	assert.True(t, a.TotalInterest.Equal(d("1440")), "interest %s", a.TotalInterest)
	assert.True(t, a.TotalPayable.Equal(d("13440")), "total %s", a.TotalPayable)
	assert.True(t, a.EMI.Equal(d("1120")), "emi %s", a.EMI)
}

func TestCalculateAmortization_FlatEMITimesTenureWithinRounding(t *testing.T) {
	cases := []struct {
		principal string
		rate      string
		tenure    int
	}{
		{"10000", "10", 7},
		{"55555.55", "13.5", 11},
		{"100", "0", 3},
		{"250000", "9.99", 36},
	}
	for _, tc := range cases {
		a, err := CalculateAmortization(d(tc.principal), d(tc.rate), tc.tenure, InterestFlat)
		require.NoError(t, err)

		diff := a.EMI.Mul(decimal.NewFromInt(int64(tc.tenure))).Sub(a.TotalPayable).Abs()
		maxDiff := d("0.005").Mul(decimal.NewFromInt(int64(tc.tenure)))
		assert.True(t, diff.LessThanOrEqual(maxDiff), "principal=%s diff=%s", tc.principal, diff)
	}
}

func TestCalculateAmortization_Reducing(t *testing.T) {
	a, err := CalculateAmortization(d("100000"), d("12"), 12, InterestReducing)
	require.NoError(t, err)

	assert.True(t, a.EMI.Equal(d("8884.88")), "emi %s", a.EMI)
	assert.True(t, a.TotalPayable.Equal(d("106618.56")), "total %s", a.TotalPayable)
	assert.True(t, a.TotalInterest.Equal(d("6618.56")), "interest %s", a.TotalInterest)
}

func TestCalculateAmortization_ReducingTotalIsExactlyEMITimesTenure(t *testing.T) {
	for _, tenure := range []int{1, 6, 13, 60, 240} {
		a, err := CalculateAmortization(d("73210.45"), d("8.75"), tenure, InterestReducing)
		require.NoError(t, err)
		assert.True(t, a.EMI.Mul(decimal.NewFromInt(int64(tenure))).Equal(a.TotalPayable), "tenure %d", tenure)
	}
}

func TestCalculateAmortization_ReducingZeroRate(t *testing.T) {
	a, err := CalculateAmortization(d("12000"), decimal.Zero, 12, InterestReducing)
	require.NoError(t, err)

	assert.True(t, a.EMI.Equal(d("1000")))
	assert.True(t, a.TotalPayable.Equal(d("12000")))
	assert.True(t, a.TotalInterest.IsZero())
}

func TestCalculateAmortization_ReducingZeroRateNonDivisible(t *testing.T) {
	a, err := CalculateAmortization(d("1000"), decimal.Zero, 3, InterestReducing)
	require.NoError(t, err)

	assert.True(t, a.EMI.Equal(d("333.33")), "emi %s", a.EMI)
	assert.True(t, a.TotalPayable.Equal(d("1000")), "total %s", a.TotalPayable)
	assert.True(t, a.TotalInterest.IsZero(), "interest %s", a.TotalInterest)

	l := &Loan{TenureMonths: 3, EMIAmount: a.EMI, TotalPayableAmount: a.TotalPayable, StartDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)}
	schedule, err := l.Schedule()
	require.NoError(t, err)
	require.Len(t, schedule, 3)
	assert.True(t, schedule[2].Amount.Equal(d("333.34")), "last %s", schedule[2].Amount)
}

func TestCalculateAmortization_ReducingLongTenure(t *testing.T) {
	a, err := CalculateAmortization(d("5000000"), d("8.5"), 240, InterestReducing)
	require.NoError(t, err)

	assert.True(t, a.EMI.Equal(d("43391.16")), "emi %s", a.EMI)
	assert.True(t, a.TotalPayable.Equal(a.EMI.Mul(decimal.NewFromInt(240))))
}

func TestCalculateAmortization_RejectsExcessPrecision(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		field     string
	}{
		{"sub-cent principal", "0.001", "10", "loanAmount"},
		{"half-cent principal", "1000.005", "10", "loanAmount"},
		{"rate beyond four places", "1000", "12.34567", "interestRate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateAmortization(d(tt.principal), d(tt.rate), 12, InterestReducing)

			var ve *apperrors.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	_, err := CalculateAmortization(d("1000.50"), d("12.3456"), 12, InterestFlat)
	assert.NoError(t, err)
}

func TestCalculateAmortization_Idempotent(t *testing.T) {
	first, err := CalculateAmortization(d("98765.43"), d("11.25"), 27, InterestReducing)
	require.NoError(t, err)
	second, err := CalculateAmortization(d("98765.43"), d("11.25"), 27, InterestReducing)
	require.NoError(t, err)

	assert.True(t, first.EMI.Equal(second.EMI))
	assert.True(t, first.TotalPayable.Equal(second.TotalPayable))
}

func TestCalculateAmortization_Validation(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		tenure    int
		typ       InterestType
		field     string
	}{
		{"unknown interest type", "1000", "10", 12, InterestType("Compound"), "interestType"},
		{"zero principal", "0", "10", 12, InterestFlat, "loanAmount"},
		{"negative principal", "-5", "10", 12, InterestReducing, "loanAmount"},
		{"zero tenure", "1000", "10", 0, InterestFlat, "tenureMonths"},
		{"negative rate", "1000", "-1", 12, InterestFlat, "interestRate"},
		{"tenure too long", "1000", "10", 1201, InterestReducing, "tenureMonths"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateAmortization(d(tt.principal), d(tt.rate), tt.tenure, tt.typ)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrValidation))

			var ve *apperrors.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}
