package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"insadmin/internal/model"
	"insadmin/internal/repository"
)

type MockPolicyRepository struct {
	mock.Mock
}

func (m *MockPolicyRepository) Create(ctx context.Context, p *model.Policy) (*model.Policy, error) {
	args := m.Called(ctx, p)
	if f, ok := args.Get(0).(func(context.Context, *model.Policy) *model.Policy); ok {
		return f(ctx, p), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Policy), args.Error(1)
}

func (m *MockPolicyRepository) FindByID(ctx context.Context, kind model.PolicyKind, id string) (*model.Policy, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Policy), args.Error(1)
}

func (m *MockPolicyRepository) List(ctx context.Context, q repository.PolicyQuery) (*repository.PageResult[model.Policy], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Policy]), args.Error(1)
}

func (m *MockPolicyRepository) Update(ctx context.Context, p *model.Policy) (*model.Policy, error) {
	args := m.Called(ctx, p)
	if f, ok := args.Get(0).(func(context.Context, *model.Policy) *model.Policy); ok {
		return f(ctx, p), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Policy), args.Error(1)
}

func (m *MockPolicyRepository) HardDelete(ctx context.Context, kind model.PolicyKind, id string) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

func (m *MockPolicyRepository) Stats(ctx context.Context, kind model.PolicyKind) (*model.PolicyStats, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PolicyStats), args.Error(1)
}
