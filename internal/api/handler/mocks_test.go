package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"loan-admin/internal/domain/admin"
	"loan-admin/internal/domain/analytics"
	"loan-admin/internal/domain/customer"
	"loan-admin/internal/domain/loan"
	"loan-admin/internal/domain/payment"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// newRequest builds a request with chi URL params set, as the router would.
func newRequest(method, target, body string, params map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Register(ctx context.Context, name, email, password string) (*admin.Session, error) {
	args := m.Called(ctx, name, email, password)
	if s, ok := args.Get(0).(*admin.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAdminService) Login(ctx context.Context, email, password string) (*admin.Session, error) {
	args := m.Called(ctx, email, password)
	if s, ok := args.Get(0).(*admin.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, params customer.CreateParams) (*customer.Customer, error) {
	args := m.Called(ctx, params)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) ListCustomers(ctx context.Context, keyword string) ([]*customer.Customer, error) {
	args := m.Called(ctx, keyword)
	if c, ok := args.Get(0).([]*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) UpdateCustomer(ctx context.Context, customerID int64, fields customer.UpdateFields) (*customer.Customer, error) {
	args := m.Called(ctx, customerID, fields)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) CreateLoan(ctx context.Context, params loan.CreateLoanParams) (*loan.Loan, error) {
	args := m.Called(ctx, params)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListLoans(ctx context.Context) ([]*loan.Loan, error) {
	args := m.Called(ctx)
	if l, ok := args.Get(0).([]*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) GetLoan(ctx context.Context, loanID int64) (*loan.Loan, error) {
	args := m.Called(ctx, loanID)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) GetLoanSchedule(ctx context.Context, loanID int64) ([]loan.Installment, error) {
	args := m.Called(ctx, loanID)
	if s, ok := args.Get(0).([]loan.Installment); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) UpdateLoanStatus(ctx context.Context, loanID int64, status loan.Status) (*loan.Loan, error) {
	args := m.Called(ctx, loanID, status)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) DeleteLoan(ctx context.Context, loanID int64) error {
	args := m.Called(ctx, loanID)
	return args.Error(0)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) RecordPayment(ctx context.Context, params payment.RecordPaymentParams) (*payment.Payment, error) {
	args := m.Called(ctx, params)
	if p, ok := args.Get(0).(*payment.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentService) ListPayments(ctx context.Context) ([]*payment.Payment, error) {
	args := m.Called(ctx)
	if p, ok := args.Get(0).([]*payment.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentService) ListPaymentsByLoan(ctx context.Context, loanID int64) ([]*payment.Payment, error) {
	args := m.Called(ctx, loanID)
	if p, ok := args.Get(0).([]*payment.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockDashboardProvider struct {
	mock.Mock
}

func (m *MockDashboardProvider) GetDashboard(ctx context.Context) (*analytics.Dashboard, error) {
	args := m.Called(ctx)
	if d, ok := args.Get(0).(*analytics.Dashboard); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}
