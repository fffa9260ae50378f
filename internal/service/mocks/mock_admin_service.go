package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"insadmin/internal/auth"
	"insadmin/internal/model"
	"insadmin/internal/service"
)

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Create(ctx context.Context, actor *auth.Claims, in service.CreateAdminInput) (*model.Admin, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Admin), args.Error(1)
}

func (m *MockAdminService) Get(ctx context.Context, actor *auth.Claims, id string) (*model.Admin, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Admin), args.Error(1)
}

func (m *MockAdminService) List(ctx context.Context, actor *auth.Claims, limit, offset int) (*service.AdminListResult, error) {
	args := m.Called(ctx, actor, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AdminListResult), args.Error(1)
}

func (m *MockAdminService) SetActive(ctx context.Context, actor *auth.Claims, id string, active bool) (*model.Admin, error) {
	args := m.Called(ctx, actor, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Admin), args.Error(1)
}

func (m *MockAdminService) Update(ctx context.Context, actor *auth.Claims, id string, in service.UpdateAdminInput) (*model.Admin, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Admin), args.Error(1)
}

func (m *MockAdminService) ResetPassword(ctx context.Context, actor *auth.Claims, id, newPassword string) error {
	args := m.Called(ctx, actor, id, newPassword)
	return args.Error(0)
}

func (m *MockAdminService) Delete(ctx context.Context, actor *auth.Claims, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockAdminService) Stats(ctx context.Context, actor *auth.Claims) (*model.AdminStats, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminStats), args.Error(1)
}
