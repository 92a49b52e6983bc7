package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"loan-admin/internal/domain/loan"
	"loan-admin/internal/event"
	"loan-admin/internal/pkg/apperrors"
	"loan-admin/internal/pkg/auth"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func setupService() (*MockRepository, *MockLoanRepository, *MockPublisher, PaymentService) {
	repo := new(MockRepository)
	loans := new(MockLoanRepository)
	pub := new(MockPublisher)
	return repo, loans, pub, NewPaymentService(repo, loans, pub, nil, logger)
}

func adminCtx() context.Context {
	return auth.ContextWithPrincipal(context.Background(), auth.Principal{AdminID: 42})
}

func activeLoan(balance string) *loan.Loan {
	return &loan.Loan{
		ID:                 1,
		CustomerID:         3,
		LoanAmount:         d("12000"),
		TotalPayableAmount: d("13440"),
		OutstandingBalance: d(balance),
		Status:             loan.StatusActive,
	}
}

func TestRecordPayment_FullPaymentClosesLoan(t *testing.T) {
	ctx := adminCtx()
	repo, loans, pub, service := setupService()
	tx := &TxMock{}

	loans.On("BeginTx", ctx).Return(tx, nil).Once()
	loans.On("GetForUpdateInTx", ctx, tx, int64(1)).Return(activeLoan("13440"), nil).Once()
	repo.On("CreateInTx", ctx, tx, mock.MatchedBy(func(p *Payment) bool {
		return p.RemainingBalance.IsZero() && p.RecordedBy == 42 && p.PaymentMethod == MethodUPI
	})).Run(func(args mock.Arguments) {
		args.Get(2).(*Payment).ID = 77
	}).Return(nil).Once()
	loans.On("UpdateBalanceInTx", ctx, tx, int64(1), mock.MatchedBy(func(b decimal.Decimal) bool { return b.IsZero() }), loan.StatusClosed).Return(nil).Once()
	loans.On("CommitTx", ctx, tx).Return(nil).Once()
	pub.On("PublishPaymentRecorded", ctx, mock.MatchedBy(func(e event.PaymentRecordedEvent) bool {
		return e.PaymentID == 77 && e.LoanStatus == "Closed"
	})).Return(nil).Once()
	pub.On("PublishLoanClosed", ctx, mock.MatchedBy(func(e event.LoanClosedEvent) bool {
		return e.LoanID == 1 && e.PaymentID == 77
	})).Return(nil).Once()

	p, err := service.RecordPayment(ctx, RecordPaymentParams{
		LoanID:        1,
		AmountPaid:    d("13440"),
		PaymentMethod: MethodUPI,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(77), p.ID)
	assert.Equal(t, loan.StatusClosed, p.LoanStatus)
	assert.False(t, p.PaymentDate.IsZero())
	repo.AssertExpectations(t)
	loans.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestRecordPayment_OverpaymentClosesWithNegativeBalance(t *testing.T) {
	ctx := adminCtx()
	repo, loans, pub := new(MockRepository), new(MockLoanRepository), new(MockPublisher)
	dashboard := new(MockInvalidator)
	service := NewPaymentService(repo, loans, pub, dashboard, logger)
	tx := &TxMock{}

	loans.On("BeginTx", ctx).Return(tx, nil).Once()
	loans.On("GetForUpdateInTx", ctx, tx, int64(1)).Return(activeLoan("13440"), nil).Once()
	repo.On("CreateInTx", ctx, tx, mock.MatchedBy(func(p *Payment) bool {
		return p.RemainingBalance.Equal(d("-560")) && p.AmountPaid.Equal(d("14000"))
	})).Return(nil).Once()
	loans.On("UpdateBalanceInTx", ctx, tx, int64(1), mock.MatchedBy(func(b decimal.Decimal) bool { return b.Equal(d("-560")) }), loan.StatusClosed).Return(nil).Once()
	loans.On("CommitTx", ctx, tx).Return(nil).Once()
	pub.On("PublishPaymentRecorded", ctx, mock.Anything).Return(nil).Once()
	pub.On("PublishLoanClosed", ctx, mock.Anything).Return(nil).Once()
	dashboard.On("Invalidate", ctx).Once()

	p, err := service.RecordPayment(ctx, RecordPaymentParams{
		LoanID:        1,
		AmountPaid:    d("14000"),
		PaymentMethod: MethodBank,
	})

	require.NoError(t, err)
	assert.Equal(t, loan.StatusClosed, p.LoanStatus)
	assert.True(t, p.RemainingBalance.Equal(d("-560")))
	repo.AssertExpectations(t)
	loans.AssertExpectations(t)
	dashboard.AssertExpectations(t)
}

func TestRecordPayment_StoredValuesSatisfyLedgerEquation(t *testing.T) {
	ctx := adminCtx()
	repo, loans, pub, service := setupService()
	tx := &TxMock{}
	old := d("13440")

	var stored *Payment
	loans.On("BeginTx", ctx).Return(tx, nil).Once()
	loans.On("GetForUpdateInTx", ctx, tx, int64(1)).Return(activeLoan("13440"), nil).Once()
	repo.On("CreateInTx", ctx, tx, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(2).(*Payment)
	}).Return(nil).Once()
	loans.On("UpdateBalanceInTx", ctx, tx, int64(1), mock.Anything, loan.StatusActive).Return(nil).Once()
	loans.On("CommitTx", ctx, tx).Return(nil).Once()
	pub.On("PublishPaymentRecorded", ctx, mock.Anything).Return(nil).Once()

	_, err := service.RecordPayment(ctx, RecordPaymentParams{
		LoanID:        1,
		AmountPaid:    d("100.01"),
		LateFee:       d("25.50"),
		PaymentMethod: MethodUPI,
	})

	require.NoError(t, err)
	require.NotNil(t, stored)
	expected := old.Sub(stored.AmountPaid).Add(stored.LateFee)
	assert.True(t, stored.RemainingBalance.Equal(expected), "remaining %s expected %s", stored.RemainingBalance, expected)
	assert.True(t, stored.RemainingBalance.Equal(d("13365.49")))
}

func TestRecordPayment_FailureKeepsDashboardCache(t *testing.T) {
	ctx := adminCtx()
	repo, loans, pub := new(MockRepository), new(MockLoanRepository), new(MockPublisher)
	dashboard := new(MockInvalidator)
	service := NewPaymentService(repo, loans, pub, dashboard, logger)
	tx := &TxMock{}

	loans.On("BeginTx", ctx).Return(tx, nil).Once()
	loans.On("GetForUpdateInTx", ctx, tx, int64(1)).Return(activeLoan("13440"), nil).Once()
	repo.On("CreateInTx", ctx, tx, mock.Anything).Return(nil).Once()
	loans.On("UpdateBalanceInTx", ctx, tx, int64(1), mock.Anything, mock.Anything).Return(nil).Once()
	loans.On("CommitTx", ctx, tx).Return(apperrors.ErrConcurrencyConflict).Once()
	loans.On("RollbackTx", ctx, tx).Return(nil).Once()

	_, err := service.RecordPayment(ctx, RecordPaymentParams{LoanID: 1, AmountPaid: d("1000"), PaymentMethod: MethodCash})

	assert.True(t, errors.Is(err, apperrors.ErrConcurrencyConflict))
	dashboard.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestRecordPayment_PartialPaymentKeepsLoanActive(t *testing.T) {
	ctx := adminCtx()
	repo, loans, pub, service := setupService()
	tx := &TxMock{}

	loans.On("BeginTx", ctx).Return(tx, nil).Once()
	loans.On("GetForUpdateInTx", ctx, tx, int64(1)).Return(activeLoan("13440"), nil).Once()
	repo.On("CreateInTx", ctx, tx, mock.Anything).Return(nil).Once()
	loans.On("UpdateBalanceInTx", ctx, tx, int64(1), mock.MatchedBy(func(b decimal.Decimal) bool { return b.Equal(d("12440")) }), loan.StatusActive).Return(nil).Once()
	loans.On("CommitTx", ctx, tx).Return(nil).Once()
	pub.On("PublishPaymentRecorded", ctx, mock.Anything).Return(nil).Once()

	p, err := service.RecordPayment(ctx, RecordPaymentParams{
		LoanID:        1,
		AmountPaid:    d("1000"),
		PaymentMethod: MethodCash,
	})

	require.NoError(t, err)
	assert.True(t, p.RemainingBalance.Equal(d("12440")))
	assert.Equal(t, loan.StatusActive, p.LoanStatus)
	pub.AssertNotCalled(t, "PublishLoanClosed", mock.Anything, mock.Anything)
	loans.AssertExpectations(t)
}

func TestRecordPayment_RollsBackWhenInsertFails(t *testing.T) {
	ctx := adminCtx()
	repo, loans, pub, service := setupService()
	tx := &TxMock{}

	loans.On("BeginTx", ctx).Return(tx, nil).Once()
	loans.On("GetForUpdateInTx", ctx, tx, int64(1)).Return(activeLoan("13440"), nil).Once()
	repo.On("CreateInTx", ctx, tx, mock.Anything).Return(apperrors.ErrDatabase).Once()
	loans.On("RollbackTx", ctx, tx).Return(nil).Once()

	_, err := service.RecordPayment(ctx, RecordPaymentParams{LoanID: 1, AmountPaid: d("1000"), PaymentMethod: MethodBank})

	assert.True(t, errors.Is(err, apperrors.ErrDatabase))
	loans.AssertNotCalled(t, "UpdateBalanceInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	loans.AssertNotCalled(t, "CommitTx", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishPaymentRecorded", mock.Anything, mock.Anything)
	loans.AssertExpectations(t)
}

func TestRecordPayment_RollsBackWhenBalanceUpdateFails(t *testing.T) {
	ctx := adminCtx()
	repo, loans, _, service := setupService()
	tx := &TxMock{}

	loans.On("BeginTx", ctx).Return(tx, nil).Once()
	loans.On("GetForUpdateInTx", ctx, tx, int64(1)).Return(activeLoan("13440"), nil).Once()
	repo.On("CreateInTx", ctx, tx, mock.Anything).Return(nil).Once()
	loans.On("UpdateBalanceInTx", ctx, tx, int64(1), mock.Anything, mock.Anything).Return(apperrors.ErrConcurrencyConflict).Once()
	loans.On("RollbackTx", ctx, tx).Return(nil).Once()

	_, err := service.RecordPayment(ctx, RecordPaymentParams{LoanID: 1, AmountPaid: d("1000"), PaymentMethod: MethodBank})

	assert.True(t, errors.Is(err, apperrors.ErrConcurrencyConflict))
	loans.AssertExpectations(t)
}

func TestRecordPayment_LoanNotFound(t *testing.T) {
	ctx := adminCtx()
	repo, loans, _, service := setupService()
	tx := &TxMock{}

	loans.On("BeginTx", ctx).Return(tx, nil).Once()
	loans.On("GetForUpdateInTx", ctx, tx, int64(5)).Return(nil, apperrors.ErrNotFound).Once()
	loans.On("RollbackTx", ctx, tx).Return(nil).Once()

	_, err := service.RecordPayment(ctx, RecordPaymentParams{LoanID: 5, AmountPaid: d("10"), PaymentMethod: MethodCash})

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	repo.AssertNotCalled(t, "CreateInTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordPayment_ClosedLoanRejected(t *testing.T) {
	ctx := adminCtx()
	repo, loans, _, service := setupService()
	tx := &TxMock{}
	closed := activeLoan("0")
	closed.Status = loan.StatusClosed

	loans.On("BeginTx", ctx).Return(tx, nil).Once()
	loans.On("GetForUpdateInTx", ctx, tx, int64(1)).Return(closed, nil).Once()
	loans.On("RollbackTx", ctx, tx).Return(nil).Once()

	_, err := service.RecordPayment(ctx, RecordPaymentParams{LoanID: 1, AmountPaid: d("10"), PaymentMethod: MethodCash})

	assert.True(t, errors.Is(err, apperrors.ErrLoanClosed))
	repo.AssertNotCalled(t, "CreateInTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordPayment_ValidationBeforeIO(t *testing.T) {
	ctx := adminCtx()
	tests := []struct {
		name   string
		params RecordPaymentParams
		field  string
	}{
		{"zero amount", RecordPaymentParams{LoanID: 1, AmountPaid: decimal.Zero, PaymentMethod: MethodCash}, "amountPaid"},
		{"negative amount", RecordPaymentParams{LoanID: 1, AmountPaid: d("-1"), PaymentMethod: MethodCash}, "amountPaid"},
		{"unknown method", RecordPaymentParams{LoanID: 1, AmountPaid: d("1"), PaymentMethod: Method("Cheque")}, "paymentMethod"},
		{"negative late fee", RecordPaymentParams{LoanID: 1, AmountPaid: d("1"), PaymentMethod: MethodCash, LateFee: d("-1")}, "lateFee"},
		{"negative interest", RecordPaymentParams{LoanID: 1, AmountPaid: d("1"), PaymentMethod: MethodCash, InterestApplied: d("-1")}, "interestApplied"},
		{"missing loan", RecordPaymentParams{AmountPaid: d("1"), PaymentMethod: MethodCash}, "loanId"},
		{"sub-cent amount", RecordPaymentParams{LoanID: 1, AmountPaid: d("0.001"), PaymentMethod: MethodCash}, "amountPaid"},
		{"half-cent amount", RecordPaymentParams{LoanID: 1, AmountPaid: d("100.005"), PaymentMethod: MethodUPI}, "amountPaid"},
		{"sub-cent late fee", RecordPaymentParams{LoanID: 1, AmountPaid: d("1"), PaymentMethod: MethodCash, LateFee: d("0.125")}, "lateFee"},
		{"sub-cent interest", RecordPaymentParams{LoanID: 1, AmountPaid: d("1"), PaymentMethod: MethodCash, InterestApplied: d("2.001")}, "interestApplied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, loans, _, service := setupService()

			_, err := service.RecordPayment(ctx, tt.params)

			var ve *apperrors.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			loans.AssertNotCalled(t, "BeginTx", mock.Anything)
		})
	}
}

func TestRecordPayment_Unauthenticated(t *testing.T) {
	_, loans, _, service := setupService()

	_, err := service.RecordPayment(context.Background(), RecordPaymentParams{LoanID: 1, AmountPaid: d("1"), PaymentMethod: MethodCash})

	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	loans.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestListPaymentsByLoan(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, loans, _, service := setupService()
		loans.On("GetByID", ctx, int64(1)).Return(activeLoan("100"), nil).Once()
		repo.On("ListByLoan", ctx, int64(1)).Return([]*Payment{{ID: 2}, {ID: 1}}, nil).Once()

		payments, err := service.ListPaymentsByLoan(ctx, 1)

		require.NoError(t, err)
		assert.Len(t, payments, 2)
	})

	t.Run("Unknown loan", func(t *testing.T) {
		repo, loans, _, service := setupService()
		loans.On("GetByID", ctx, int64(9)).Return(nil, apperrors.ErrNotFound).Once()

		_, err := service.ListPaymentsByLoan(ctx, 9)

		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
		repo.AssertNotCalled(t, "ListByLoan", mock.Anything, mock.Anything)
	})
}

func TestListPayments(t *testing.T) {
	ctx := context.Background()
	repo, _, _, service := setupService()
	repo.On("List", ctx).Return([]*Payment{{ID: 1}}, nil).Once()

	payments, err := service.ListPayments(ctx)

	require.NoError(t, err)
	assert.Len(t, payments, 1)
}
