package customer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"loan-admin/internal/domain/customer"
	"loan-admin/internal/pkg/apperrors"
	"loan-admin/internal/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTest() (*customer.MockCustomerRepository, customer.CustomerService) {
	mockRepo := new(customer.MockCustomerRepository)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := customer.NewCustomerService(mockRepo, nil, logger)
	return mockRepo, service
}

func adminContext() context.Context {
	return auth.ContextWithPrincipal(context.Background(), auth.Principal{AdminID: 1, Email: "admin@example.com"})
}

func TestCustomerService_CreateCustomer(t *testing.T) {
	ctx := adminContext()

	t.Run("Success", func(t *testing.T) {
		mockRepo, service := setupTest()

		mockRepo.On("Save", ctx, mock.MatchedBy(func(c *customer.Customer) bool {
			return c.ID == 0 && c.FullName == "Asha Rao" && c.MobileNumber == "9876543210" && c.Address == "12 MG Road"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*customer.Customer).ID = 1
		}).Return(nil).Once()

		created, err := service.CreateCustomer(ctx, customer.CreateParams{
			FullName:     " Asha Rao ",
			MobileNumber: "9876543210",
			Address:      "12 MG Road",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), created.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - Missing mobile number", func(t *testing.T) {
		mockRepo, service := setupTest()

		_, err := service.CreateCustomer(ctx, customer.CreateParams{FullName: "Asha Rao", Address: "12 MG Road"})

		require.Error(t, err)
		var ve *apperrors.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "mobileNumber", ve.Field)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Error - Unauthenticated", func(t *testing.T) {
		mockRepo, service := setupTest()

		_, err := service.CreateCustomer(context.Background(), customer.CreateParams{FullName: "A", MobileNumber: "1", Address: "B"})

		assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Error - Repository failure", func(t *testing.T) {
		mockRepo, service := setupTest()
		mockRepo.On("Save", ctx, mock.Anything).Return(apperrors.ErrDatabase).Once()

		_, err := service.CreateCustomer(ctx, customer.CreateParams{FullName: "A", MobileNumber: "1", Address: "B"})

		assert.True(t, errors.Is(err, apperrors.ErrDatabase))
	})
}

func TestCustomerService_GetCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo, service := setupTest()
		expected := &customer.Customer{ID: 5, FullName: "Asha Rao"}
		mockRepo.On("FindByID", ctx, int64(5)).Return(expected, nil).Once()

		c, err := service.GetCustomer(ctx, 5)

		require.NoError(t, err)
		assert.Equal(t, expected, c)
	})

	t.Run("Not found", func(t *testing.T) {
		mockRepo, service := setupTest()
		mockRepo.On("FindByID", ctx, int64(9)).Return(nil, apperrors.ErrNotFound).Once()

		_, err := service.GetCustomer(ctx, 9)

		assert.True(t, errors.Is(err, customer.ErrNotFound))
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})
}

func TestCustomerService_ListCustomers(t *testing.T) {
	ctx := context.Background()
	mockRepo, service := setupTest()
	list := []*customer.Customer{{ID: 2}, {ID: 1}}
	mockRepo.On("FindAll", ctx, "asha").Return(list, nil).Once()

	got, err := service.ListCustomers(ctx, "  asha ")

	require.NoError(t, err)
	assert.Len(t, got, 2)
	mockRepo.AssertExpectations(t)
}

func TestCustomerService_UpdateCustomer(t *testing.T) {
	ctx := adminContext()

	t.Run("Partial update saves merged customer", func(t *testing.T) {
		mockRepo, service := setupTest()
		existing := &customer.Customer{ID: 3, FullName: "Asha Rao", MobileNumber: "111", Address: "Old"}
		mockRepo.On("FindByID", ctx, int64(3)).Return(existing, nil).Once()
		mockRepo.On("Save", ctx, mock.MatchedBy(func(c *customer.Customer) bool {
			return c.Address == "New" && c.FullName == "Asha Rao" && c.MobileNumber == "111"
		})).Return(nil).Once()

		updated, err := service.UpdateCustomer(ctx, 3, customer.UpdateFields{Address: "New"})

		require.NoError(t, err)
		assert.Equal(t, "New", updated.Address)
		mockRepo.AssertExpectations(t)
	})

	t.Run("No change skips save", func(t *testing.T) {
		mockRepo, service := setupTest()
		existing := &customer.Customer{ID: 3, FullName: "Asha Rao"}
		mockRepo.On("FindByID", ctx, int64(3)).Return(existing, nil).Once()

		_, err := service.UpdateCustomer(ctx, 3, customer.UpdateFields{})

		require.NoError(t, err)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Not found", func(t *testing.T) {
		mockRepo, service := setupTest()
		mockRepo.On("FindByID", ctx, int64(3)).Return(nil, apperrors.ErrNotFound).Once()

		_, err := service.UpdateCustomer(ctx, 3, customer.UpdateFields{Address: "New"})

		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})
}

func TestCustomerService_DeleteCustomer(t *testing.T) {
	ctx := adminContext()

	t.Run("Success", func(t *testing.T) {
		mockRepo, service := setupTest()
		mockRepo.On("FindByID", ctx, int64(4)).Return(&customer.Customer{ID: 4}, nil).Once()
		mockRepo.On("CountLoans", ctx, int64(4)).Return(int64(0), nil).Once()
		mockRepo.On("Delete", ctx, int64(4)).Return(nil).Once()

		require.NoError(t, service.DeleteCustomer(ctx, 4))
		mockRepo.AssertExpectations(t)
	})

	t.Run("Conflict when loans exist", func(t *testing.T) {
		mockRepo, service := setupTest()
		mockRepo.On("FindByID", ctx, int64(4)).Return(&customer.Customer{ID: 4}, nil).Once()
		mockRepo.On("CountLoans", ctx, int64(4)).Return(int64(2), nil).Once()

		err := service.DeleteCustomer(ctx, 4)

		assert.True(t, errors.Is(err, apperrors.ErrConflict))
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Not found", func(t *testing.T) {
		mockRepo, service := setupTest()
		mockRepo.On("FindByID", ctx, int64(4)).Return(nil, apperrors.ErrNotFound).Once()

		err := service.DeleteCustomer(ctx, 4)

		assert.True(t, errors.Is(err, customer.ErrNotFound))
	})
}

type mockInvalidator struct {
	mock.Mock
}

func (m *mockInvalidator) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

func TestCustomerService_InvalidatesDashboardOnCountChange(t *testing.T) {
	ctx := adminContext()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Create", func(t *testing.T) {
		mockRepo, dashboard := new(customer.MockCustomerRepository), new(mockInvalidator)
		service := customer.NewCustomerService(mockRepo, dashboard, logger)
		mockRepo.On("Save", ctx, mock.Anything).Return(nil).Once()
		dashboard.On("Invalidate", ctx).Once()

		_, err := service.CreateCustomer(ctx, customer.CreateParams{FullName: "Asha Rao", MobileNumber: "9876543210", Address: "12 MG Road"})

		require.NoError(t, err)
		dashboard.AssertExpectations(t)
	})

	t.Run("Delete", func(t *testing.T) {
		mockRepo, dashboard := new(customer.MockCustomerRepository), new(mockInvalidator)
		service := customer.NewCustomerService(mockRepo, dashboard, logger)
		mockRepo.On("FindByID", ctx, int64(4)).Return(&customer.Customer{ID: 4}, nil).Once()
		mockRepo.On("CountLoans", ctx, int64(4)).Return(int64(0), nil).Once()
		mockRepo.On("Delete", ctx, int64(4)).Return(nil).Once()
		dashboard.On("Invalidate", ctx).Once()

		require.NoError(t, service.DeleteCustomer(ctx, 4))
		dashboard.AssertExpectations(t)
	})

	t.Run("Rejected delete keeps cache", func(t *testing.T) {
		mockRepo, dashboard := new(customer.MockCustomerRepository), new(mockInvalidator)
		service := customer.NewCustomerService(mockRepo, dashboard, logger)
		mockRepo.On("FindByID", ctx, int64(4)).Return(&customer.Customer{ID: 4}, nil).Once()
		mockRepo.On("CountLoans", ctx, int64(4)).Return(int64(2), nil).Once()

		assert.ErrorIs(t, service.DeleteCustomer(ctx, 4), customer.ErrHasLoans)
		dashboard.AssertNotCalled(t, "Invalidate", mock.Anything)
	})
}
