package customer

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, customerID int64) (*Customer, error) {
	args := m.Called(ctx, customerID)
	var c *Customer
	if v := args.Get(0); v != nil {
		c = v.(*Customer)
	}
	return c, args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, keyword string) ([]*Customer, error) {
	args := m.Called(ctx, keyword)
	var cs []*Customer
	if v := args.Get(0); v != nil {
		cs = v.([]*Customer)
	}
	return cs, args.Error(1)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, customerID int64) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

func (m *MockCustomerRepository) CountLoans(ctx context.Context, customerID int64) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

var _ CustomerRepository = (*MockCustomerRepository)(nil)
