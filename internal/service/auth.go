package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"insadmin/internal/auth"
	"insadmin/internal/model"
	"insadmin/internal/repository"
)

// LoginResult carries the signed token together with the authenticated account.
type LoginResult struct {
	Token string       `json:"token"`
	Admin *model.Admin `json:"admin"`
}

// AuthService defines the session use cases.
type AuthService interface {
	// Login verifies credentials and issues an access token. Disabled
	// accounts cannot log in even with the correct password.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// ChangePassword rotates the caller's own password after verifying the
	// current one.
	ChangePassword(ctx context.Context, adminID, currentPassword, newPassword string) error
}

type authService struct {
	repo   repository.AdminRepository
	tokens *auth.Tokens
}

// NewAuthService constructs a new AuthService.
func NewAuthService(repo repository.AdminRepository, tokens *auth.Tokens) AuthService {
	return &authService{repo: repo, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}
	admin, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(admin.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !admin.IsActive {
		return nil, ErrAccountDisabled
	}
	token, err := s.tokens.Issue(admin)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Admin: admin}, nil
}

func (s *authService) ChangePassword(ctx context.Context, adminID, currentPassword, newPassword string) error {
	if adminID == "" {
		return ErrIDRequired
	}
	if len(newPassword) < 8 {
		return ErrInvalidInput
	}
	admin, err := s.repo.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !auth.CheckPassword(admin.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	admin.PasswordHash = hash
	admin.UpdatedAt = time.Now().UTC()
	_, err = s.repo.Update(ctx, admin)
	return err
}
