package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"insadmin/internal/auth"
	"insadmin/internal/model"
	"insadmin/internal/service"
)

type MockPolicyService struct {
	mock.Mock
}

func (m *MockPolicyService) Create(ctx context.Context, kind model.PolicyKind, in service.PolicyMutationInput) (*service.PolicyView, error) {
	args := m.Called(ctx, kind, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PolicyView), args.Error(1)
}

func (m *MockPolicyService) Get(ctx context.Context, kind model.PolicyKind, id string) (*service.PolicyView, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PolicyView), args.Error(1)
}

func (m *MockPolicyService) List(ctx context.Context, kind model.PolicyKind, in service.ListPoliciesInput) (*service.PolicyListResult, error) {
	args := m.Called(ctx, kind, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PolicyListResult), args.Error(1)
}

func (m *MockPolicyService) Update(ctx context.Context, kind model.PolicyKind, id string, in service.PolicyMutationInput) (*service.PolicyView, error) {
	args := m.Called(ctx, kind, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PolicyView), args.Error(1)
}

func (m *MockPolicyService) SetActive(ctx context.Context, kind model.PolicyKind, id string, active bool, actorID string) (*service.PolicyView, error) {
	args := m.Called(ctx, kind, id, active, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PolicyView), args.Error(1)
}

func (m *MockPolicyService) DeleteDocument(ctx context.Context, kind model.PolicyKind, policyID, documentID, actorID string) (*service.PolicyView, error) {
	args := m.Called(ctx, kind, policyID, documentID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PolicyView), args.Error(1)
}

func (m *MockPolicyService) HardDelete(ctx context.Context, actor *auth.Claims, kind model.PolicyKind, id string) error {
	args := m.Called(ctx, actor, kind, id)
	return args.Error(0)
}

func (m *MockPolicyService) Stats(ctx context.Context, kind model.PolicyKind) (*model.PolicyStats, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PolicyStats), args.Error(1)
}
