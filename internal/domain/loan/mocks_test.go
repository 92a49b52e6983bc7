package loan

import (
	"context"

	"loan-admin/internal/domain/customer"
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

func (m *MockRepository) Create(ctx context.Context, loan *Loan) error {
	return m.Called(ctx, loan).Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, loanID int64) (*Loan, error) {
	args := m.Called(ctx, loanID)
	var l *Loan
	if v := args.Get(0); v != nil {
		l = v.(*Loan)
	}
	return l, args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]*Loan, error) {
	args := m.Called(ctx)
	var ls []*Loan
	if v := args.Get(0); v != nil {
		ls = v.([]*Loan)
	}
	return ls, args.Error(1)
}

func (m *MockRepository) GetForUpdateInTx(ctx context.Context, tx pgx.Tx, loanID int64) (*Loan, error) {
	args := m.Called(ctx, tx, loanID)
	var l *Loan
	if v := args.Get(0); v != nil {
		l = v.(*Loan)
	}
	return l, args.Error(1)
}

func (m *MockRepository) UpdateBalanceInTx(ctx context.Context, tx pgx.Tx, loanID int64, balance decimal.Decimal, status Status) error {
	return m.Called(ctx, tx, loanID, balance, status).Error(0)
}

func (m *MockRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, loanID int64, status Status) error {
	return m.Called(ctx, tx, loanID, status).Error(0)
}

func (m *MockRepository) DeleteInTx(ctx context.Context, tx pgx.Tx, loanID int64) error {
	return m.Called(ctx, tx, loanID).Error(0)
}

func (m *MockRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	var tx pgx.Tx
	if v := args.Get(0); v != nil {
		tx = v.(pgx.Tx)
	}
	return tx, args.Error(1)
}

func (m *MockRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

type MockCustomerFinder struct {
	mock.Mock
}

func (m *MockCustomerFinder) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	var c *customer.Customer
	if v := args.Get(0); v != nil {
		c = v.(*customer.Customer)
	}
	return c, args.Error(1)
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
	_ CustomerFinder       = (*MockCustomerFinder)(nil)
	_ event.EventPublisher = (*MockPublisher)(nil)
)

type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(ctx context.Context) {
	m.Called(ctx)
}
