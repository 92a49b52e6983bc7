package payment

import (
	"context"

	"loan-admin/internal/domain/loan"
	"loan-admin/internal/event"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type TxMock struct {
	pgx.Tx
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateInTx(ctx context.Context, tx pgx.Tx, p *Payment) error {
	return m.Called(ctx, tx, p).Error(0)
}

func (m *MockRepository) List(ctx context.Context) ([]*Payment, error) {
	args := m.Called(ctx)
	var ps []*Payment
	if v := args.Get(0); v != nil {
		ps = v.([]*Payment)
	}
	return ps, args.Error(1)
}

func (m *MockRepository) ListByLoan(ctx context.Context, loanID int64) ([]*Payment, error) {
	args := m.Called(ctx, loanID)
	var ps []*Payment
	if v := args.Get(0); v != nil {
		ps = v.([]*Payment)
	}
	return ps, args.Error(1)
}

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, loanID int64) (*loan.Loan, error) {
	args := m.Called(ctx, loanID)
	var l *loan.Loan
	if v := args.Get(0); v != nil {
		l = v.(*loan.Loan)
	}
	return l, args.Error(1)
}

func (m *MockLoanRepository) List(ctx context.Context) ([]*loan.Loan, error) {
	args := m.Called(ctx)
	var ls []*loan.Loan
	if v := args.Get(0); v != nil {
		ls = v.([]*loan.Loan)
	}
	return ls, args.Error(1)
}

func (m *MockLoanRepository) GetForUpdateInTx(ctx context.Context, tx pgx.Tx, loanID int64) (*loan.Loan, error) {
	args := m.Called(ctx, tx, loanID)
	var l *loan.Loan
	if v := args.Get(0); v != nil {
		l = v.(*loan.Loan)
	}
	return l, args.Error(1)
}

func (m *MockLoanRepository) UpdateBalanceInTx(ctx context.Context, tx pgx.Tx, loanID int64, balance decimal.Decimal, status loan.Status) error {
	return m.Called(ctx, tx, loanID, balance, status).Error(0)
}

func (m *MockLoanRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, loanID int64, status loan.Status) error {
	return m.Called(ctx, tx, loanID, status).Error(0)
}

func (m *MockLoanRepository) DeleteInTx(ctx context.Context, tx pgx.Tx, loanID int64) error {
	return m.Called(ctx, tx, loanID).Error(0)
}

func (m *MockLoanRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	var tx pgx.Tx
	if v := args.Get(0); v != nil {
		tx = v.(pgx.Tx)
	}
	return tx, args.Error(1)
}

func (m *MockLoanRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockLoanRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishLoanCreated(ctx context.Context, e event.LoanCreatedEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockPublisher) PublishLoanStatusChanged(ctx context.Context, e event.LoanStatusChangedEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockPublisher) PublishLoanClosed(ctx context.Context, e event.LoanClosedEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockPublisher) PublishPaymentRecorded(ctx context.Context, e event.PaymentRecordedEvent) error {
	return m.Called(ctx, e).Error(0)
}

var (
	_ Repository           = (*MockRepository)(nil)
	_ loan.Repository      = (*MockLoanRepository)(nil)
	_ event.EventPublisher = (*MockPublisher)(nil)
)

type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(ctx context.Context) {
	m.Called(ctx)
}
