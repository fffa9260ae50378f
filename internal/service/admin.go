package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"insadmin/internal/auth"
	"insadmin/internal/model"
	"insadmin/internal/repository"
)

// CreateAdminInput is the request to provision a new admin account.
type CreateAdminInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
	// ActorID is the super admin performing the operation.
	ActorID string
}

// UpdateAdminInput carries the mutable profile fields of an admin account.
// Nil pointers leave the stored value unchanged.
type UpdateAdminInput struct {
	Name  *string
	Email *string
}

// AdminListResult is the service-level DTO for paginated admin accounts.
type AdminListResult struct {
	Items []model.Admin `json:"data"`
	Total int           `json:"total"`
}

// AdminService defines account management use cases. All operations are
// restricted to super admins; the role check lives here rather than in the
// transport layer so it cannot be bypassed.
type AdminService interface {
	Create(ctx context.Context, actor *auth.Claims, in CreateAdminInput) (*model.Admin, error)

	Get(ctx context.Context, actor *auth.Claims, id string) (*model.Admin, error)

	List(ctx context.Context, actor *auth.Claims, limit, offset int) (*AdminListResult, error)

	// SetActive enables or disables an account. A super admin cannot disable
	// itself.
	SetActive(ctx context.Context, actor *auth.Claims, id string, active bool) (*model.Admin, error)

	// Update changes the profile fields of a regular admin account. Super
	// admin accounts cannot be updated through this operation.
	Update(ctx context.Context, actor *auth.Claims, id string, in UpdateAdminInput) (*model.Admin, error)

	// ResetPassword replaces the password of a regular admin account.
	ResetPassword(ctx context.Context, actor *auth.Claims, id, newPassword string) error

	// Delete removes a regular admin account permanently. Super admin
	// accounts cannot be deleted, which also covers self-deletion.
	Delete(ctx context.Context, actor *auth.Claims, id string) error

	// Stats returns aggregate counts over regular admin accounts.
	Stats(ctx context.Context, actor *auth.Claims) (*model.AdminStats, error)
}

type adminService struct {
	repo repository.AdminRepository
}

// NewAdminService constructs a new AdminService.
func NewAdminService(repo repository.AdminRepository) AdminService {
	return &adminService{repo: repo}
}

func requireSuperAdmin(actor *auth.Claims) error {
	if actor == nil || actor.Role != model.RoleSuperAdmin {
		return ErrForbidden
	}
	return nil
}

func (s *adminService) Create(ctx context.Context, actor *auth.Claims, in CreateAdminInput) (*model.Admin, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" || len(in.Password) < 8 {
		return nil, ErrInvalidInput
	}
	if in.Role == "" {
		in.Role = model.RoleAdmin
	}
	if in.Role != model.RoleAdmin && in.Role != model.RoleSuperAdmin {
		return nil, ErrInvalidInput
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	admin := &model.Admin{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     true,
		CreatedBy:    actor.AdminID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	stored, err := s.repo.Create(ctx, admin)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return stored, nil
}

func (s *adminService) Get(ctx context.Context, actor *auth.Claims, id string) (*model.Admin, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return admin, nil
}

func (s *adminService) List(ctx context.Context, actor *auth.Claims, limit, offset int) (*AdminListResult, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &AdminListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *adminService) SetActive(ctx context.Context, actor *auth.Claims, id string, active bool) (*model.Admin, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	if !active && id == actor.AdminID {
		return nil, ErrInvalidInput
	}
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	admin.IsActive = active
	admin.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, admin)
}

// findRegularAdmin loads the target account and rejects super admin targets,
// so privileged accounts cannot be altered by account management operations.
func (s *adminService) findRegularAdmin(ctx context.Context, id string) (*model.Admin, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if admin.IsSuperAdmin() {
		return nil, ErrForbidden
	}
	return admin, nil
}

func (s *adminService) Update(ctx context.Context, actor *auth.Claims, id string, in UpdateAdminInput) (*model.Admin, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	admin, err := s.findRegularAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, ErrInvalidInput
		}
		admin.Name = *in.Name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" {
			return nil, ErrInvalidInput
		}
		admin.Email = email
	}
	admin.UpdatedAt = time.Now().UTC()
	stored, err := s.repo.Update(ctx, admin)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return stored, nil
}

func (s *adminService) ResetPassword(ctx context.Context, actor *auth.Claims, id, newPassword string) error {
	if err := requireSuperAdmin(actor); err != nil {
		return err
	}
	if len(newPassword) < 8 {
		return ErrInvalidInput
	}
	admin, err := s.findRegularAdmin(ctx, id)
	if err != nil {
		return err
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

func (s *adminService) Delete(ctx context.Context, actor *auth.Claims, id string) error {
	if err := requireSuperAdmin(actor); err != nil {
		return err
	}
	admin, err := s.findRegularAdmin(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, admin.ID)
}

func (s *adminService) Stats(ctx context.Context, actor *auth.Claims) (*model.AdminStats, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	return s.repo.Stats(ctx)
}
