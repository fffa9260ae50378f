package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"insadmin/internal/auth"
	"insadmin/internal/model"
	"insadmin/internal/service"
)

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) Create(ctx context.Context, in service.CustomerMutationInput) (*service.CustomerView, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CustomerView), args.Error(1)
}

func (m *MockCustomerService) Get(ctx context.Context, id string) (*service.CustomerView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CustomerView), args.Error(1)
}

func (m *MockCustomerService) List(ctx context.Context, in service.ListCustomersInput) (*service.CustomerListResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CustomerListResult), args.Error(1)
}

func (m *MockCustomerService) ListDeleted(ctx context.Context, actor *auth.Claims, in service.ListCustomersInput) (*service.CustomerListResult, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CustomerListResult), args.Error(1)
}

func (m *MockCustomerService) Update(ctx context.Context, id string, in service.CustomerMutationInput) (*service.CustomerView, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CustomerView), args.Error(1)
}

func (m *MockCustomerService) SetActive(ctx context.Context, id string, active bool, actorID string) (*service.CustomerView, error) {
	args := m.Called(ctx, id, active, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CustomerView), args.Error(1)
}

func (m *MockCustomerService) DeleteDocument(ctx context.Context, customerID, slotName, documentID, actorID string) (*service.CustomerView, error) {
	args := m.Called(ctx, customerID, slotName, documentID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CustomerView), args.Error(1)
}

func (m *MockCustomerService) HardDelete(ctx context.Context, actor *auth.Claims, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockCustomerService) Stats(ctx context.Context) (*model.CustomerStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerStats), args.Error(1)
}

func (m *MockCustomerService) ExportCSV(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
