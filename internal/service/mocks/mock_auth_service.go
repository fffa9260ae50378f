package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"insadmin/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, adminID, currentPassword, newPassword string) error {
	args := m.Called(ctx, adminID, currentPassword, newPassword)
	return args.Error(0)
}
