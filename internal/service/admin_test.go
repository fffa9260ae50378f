package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"insadmin/internal/auth"
	"insadmin/internal/model"
	"insadmin/internal/repository"
	repoMocks "insadmin/internal/repository/mocks"
)

func superActor() *auth.Claims {
	return &auth.Claims{AdminID: "super-1", Role: model.RoleSuperAdmin}
}

func regularActor() *auth.Claims {
	return &auth.Claims{AdminID: "admin-1", Role: model.RoleAdmin}
}

func TestAdminService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		actor      *auth.Claims
		in         CreateAdminInput
		setupMocks func(mRepo *repoMocks.MockAdminRepository)
		wantErr    error
	}{
		{
			name:  "happy path",
			actor: superActor(),
			in:    CreateAdminInput{Name: "Ops", Email: "Ops@Example.com", Password: "long-enough"},
			setupMocks: func(mRepo *repoMocks.MockAdminRepository) {
				mRepo.On("Create", ctx, mock.MatchedBy(func(a *model.Admin) bool {
					return a.ID != "" &&
						a.Email == "ops@example.com" &&
						a.Role == model.RoleAdmin &&
						a.IsActive &&
						a.CreatedBy == "super-1" &&
						auth.CheckPassword(a.PasswordHash, "long-enough")
				})).Return(&model.Admin{ID: "admin-2", Email: "ops@example.com"}, nil)
			},
		},
		{
			name:       "regular admin is forbidden",
			actor:      regularActor(),
			in:         CreateAdminInput{Name: "Ops", Email: "ops@example.com", Password: "long-enough"},
			setupMocks: func(mRepo *repoMocks.MockAdminRepository) {},
			wantErr:    ErrForbidden,
		},
		{
			name:       "short password rejected",
			actor:      superActor(),
			in:         CreateAdminInput{Name: "Ops", Email: "ops@example.com", Password: "short"},
			setupMocks: func(mRepo *repoMocks.MockAdminRepository) {},
			wantErr:    ErrInvalidInput,
		},
		{
			name:       "unknown role rejected",
			actor:      superActor(),
			in:         CreateAdminInput{Name: "Ops", Email: "ops@example.com", Password: "long-enough", Role: "owner"},
			setupMocks: func(mRepo *repoMocks.MockAdminRepository) {},
			wantErr:    ErrInvalidInput,
		},
		{
			name:  "duplicate email maps to ErrEmailTaken",
			actor: superActor(),
			in:    CreateAdminInput{Name: "Ops", Email: "ops@example.com", Password: "long-enough"},
			setupMocks: func(mRepo *repoMocks.MockAdminRepository) {
				mRepo.On("Create", ctx, mock.Anything).
					Return(nil, &pgconn.PgError{Code: "23505"})
			},
			wantErr: ErrEmailTaken,
		},
		{
			name:  "generic repository error",
			actor: superActor(),
			in:    CreateAdminInput{Name: "Ops", Email: "ops@example.com", Password: "long-enough"},
			setupMocks: func(mRepo *repoMocks.MockAdminRepository) {
				mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockAdminRepository)
			svc := NewAdminService(mRepo)

			tt.setupMocks(mRepo)

			admin, err := svc.Create(ctx, tt.actor, tt.in)

			if tt.wantErr != nil {
				assert.Error(t, err)
				if errors.Is(tt.wantErr, ErrForbidden) || errors.Is(tt.wantErr, ErrInvalidInput) || errors.Is(tt.wantErr, ErrEmailTaken) {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				assert.Nil(t, admin)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, admin)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestAdminService_SetActive(t *testing.T) {
	ctx := context.Background()

	t.Run("disable another account", func(t *testing.T) {
		mRepo := new(repoMocks.MockAdminRepository)
		svc := NewAdminService(mRepo)

		mRepo.On("FindByID", ctx, "admin-2").Return(&model.Admin{ID: "admin-2", IsActive: true}, nil)
		mRepo.On("Update", ctx, mock.MatchedBy(func(a *model.Admin) bool {
			return a.ID == "admin-2" && !a.IsActive
		})).Return(&model.Admin{ID: "admin-2", IsActive: false}, nil)

		admin, err := svc.SetActive(ctx, superActor(), "admin-2", false)

		assert.NoError(t, err)
		assert.False(t, admin.IsActive)
		mRepo.AssertExpectations(t)
	})

	t.Run("cannot disable own account", func(t *testing.T) {
		mRepo := new(repoMocks.MockAdminRepository)
		svc := NewAdminService(mRepo)

		admin, err := svc.SetActive(ctx, superActor(), "super-1", false)

		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Nil(t, admin)
		mRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("regular admin is forbidden", func(t *testing.T) {
		mRepo := new(repoMocks.MockAdminRepository)
		svc := NewAdminService(mRepo)

		admin, err := svc.SetActive(ctx, regularActor(), "admin-2", false)

		assert.ErrorIs(t, err, ErrForbidden)
		assert.Nil(t, admin)
	})
}

func TestAdminService_Update(t *testing.T) {
	ctx := context.Background()
	strPtr := func(s string) *string { return &s }

	t.Run("changes name and email", func(t *testing.T) {
		mRepo := new(repoMocks.MockAdminRepository)
		svc := NewAdminService(mRepo)

		mRepo.On("FindByID", ctx, "admin-2").
			Return(&model.Admin{ID: "admin-2", Name: "Old", Email: "old@example.com", Role: model.RoleAdmin}, nil)
		mRepo.On("Update", ctx, mock.MatchedBy(func(a *model.Admin) bool {
			return a.ID == "admin-2" && a.Name == "New Name" && a.Email == "new@example.com"
		})).Return(&model.Admin{ID: "admin-2", Name: "New Name", Email: "new@example.com"}, nil)

		admin, err := svc.Update(ctx, superActor(), "admin-2", UpdateAdminInput{
			Name:  strPtr("New Name"),
			Email: strPtr(" New@Example.com "),
		})

		assert.NoError(t, err)
		assert.Equal(t, "New Name", admin.Name)
		mRepo.AssertExpectations(t)
	})

	t.Run("super admin target is rejected", func(t *testing.T) {
		mRepo := new(repoMocks.MockAdminRepository)
		svc := NewAdminService(mRepo)

		mRepo.On("FindByID", ctx, "super-2").
			Return(&model.Admin{ID: "super-2", Role: model.RoleSuperAdmin}, nil)

		admin, err := svc.Update(ctx, superActor(), "super-2", UpdateAdminInput{Name: strPtr("X")})

		assert.ErrorIs(t, err, ErrForbidden)
		assert.Nil(t, admin)
		mRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email maps to ErrEmailTaken", func(t *testing.T) {
		mRepo := new(repoMocks.MockAdminRepository)
		svc := NewAdminService(mRepo)

		mRepo.On("FindByID", ctx, "admin-2").
			Return(&model.Admin{ID: "admin-2", Role: model.RoleAdmin}, nil)
		mRepo.On("Update", ctx, mock.Anything).
			Return(nil, &pgconn.PgError{Code: "23505"})

		admin, err := svc.Update(ctx, superActor(), "admin-2", UpdateAdminInput{Email: strPtr("taken@example.com")})

		assert.ErrorIs(t, err, ErrEmailTaken)
		assert.Nil(t, admin)
	})

	t.Run("regular admin is forbidden", func(t *testing.T) {
		mRepo := new(repoMocks.MockAdminRepository)
		svc := NewAdminService(mRepo)

		admin, err := svc.Update(ctx, regularActor(), "admin-2", UpdateAdminInput{Name: strPtr("X")})

		assert.ErrorIs(t, err, ErrForbidden)
		assert.Nil(t, admin)
	})
}

func TestAdminService_ResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("rehashes the password", func(t *testing.T) {
		mRepo := new(repoMocks.MockAdminRepository)
		svc := NewAdminService(mRepo)

		mRepo.On("FindByID", ctx, "admin-2").
			Return(&model.Admin{ID: "admin-2", Role: model.RoleAdmin, PasswordHash: "old-hash"}, nil)
		mRepo.On("Update", ctx, mock.MatchedBy(func(a *model.Admin) bool {
			return a.ID == "admin-2" && auth.CheckPassword(a.PasswordHash, "fresh-secret")
		})).Return(&model.Admin{ID: "admin-2"}, nil)

		err := svc.ResetPassword(ctx, superActor(), "admin-2", "fresh-secret")

		assert.NoError(t, err)
		mRepo.AssertExpectations(t)
	})

	t.Run("short password rejected", func(t *testing.T) {
		mRepo := new(repoMocks.MockAdminRepository)
		svc := NewAdminService(mRepo)

		err := svc.ResetPassword(ctx, superActor(), "admin-2", "short")

		assert.ErrorIs(t, err, ErrInvalidInput)
		mRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("super admin target is rejected", func(t *testing.T) {
		mRepo := new(repoMocks.MockAdminRepository)
		svc := NewAdminService(mRepo)

		mRepo.On("FindByID", ctx, "super-2").
			Return(&model.Admin{ID: "super-2", Role: model.RoleSuperAdmin}, nil)

		err := svc.ResetPassword(ctx, superActor(), "super-2", "fresh-secret")

		assert.ErrorIs(t, err, ErrForbidden)
		mRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestAdminService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes a regular admin", func(t *testing.T) {
		mRepo := new(repoMocks.MockAdminRepository)
		svc := NewAdminService(mRepo)

		mRepo.On("FindByID", ctx, "admin-2").
			Return(&model.Admin{ID: "admin-2", Role: model.RoleAdmin}, nil)
		mRepo.On("Delete", ctx, "admin-2").Return(nil)

		err := svc.Delete(ctx, superActor(), "admin-2")

		assert.NoError(t, err)
		mRepo.AssertExpectations(t)
	})

	t.Run("super admin target is rejected", func(t *testing.T) {
		mRepo := new(repoMocks.MockAdminRepository)
		svc := NewAdminService(mRepo)

		mRepo.On("FindByID", ctx, "super-1").
			Return(&model.Admin{ID: "super-1", Role: model.RoleSuperAdmin}, nil)

		err := svc.Delete(ctx, superActor(), "super-1")

		assert.ErrorIs(t, err, ErrForbidden)
		mRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("unknown id maps to ErrNotFound", func(t *testing.T) {
		mRepo := new(repoMocks.MockAdminRepository)
		svc := NewAdminService(mRepo)

		mRepo.On("FindByID", ctx, "ghost").Return(nil, sql.ErrNoRows)

		err := svc.Delete(ctx, superActor(), "ghost")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("regular admin is forbidden", func(t *testing.T) {
		mRepo := new(repoMocks.MockAdminRepository)
		svc := NewAdminService(mRepo)

		err := svc.Delete(ctx, regularActor(), "admin-2")

		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestAdminService_Stats(t *testing.T) {
	ctx := context.Background()

	t.Run("returns counters", func(t *testing.T) {
		mRepo := new(repoMocks.MockAdminRepository)
		svc := NewAdminService(mRepo)

		mRepo.On("Stats", ctx).
			Return(&model.AdminStats{Total: 5, Active: 4, Inactive: 1, Recent: 2}, nil)

		stats, err := svc.Stats(ctx, superActor())

		assert.NoError(t, err)
		assert.Equal(t, 5, stats.Total)
		assert.Equal(t, 2, stats.Recent)
	})

	t.Run("regular admin is forbidden", func(t *testing.T) {
		mRepo := new(repoMocks.MockAdminRepository)
		svc := NewAdminService(mRepo)

		stats, err := svc.Stats(ctx, regularActor())

		assert.ErrorIs(t, err, ErrForbidden)
		assert.Nil(t, stats)
		mRepo.AssertNotCalled(t, "Stats", mock.Anything)
	})
}

func TestAdminService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults applied to paging", func(t *testing.T) {
		mRepo := new(repoMocks.MockAdminRepository)
		svc := NewAdminService(mRepo)

		mRepo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
			Return(&repository.PageResult[model.Admin]{
				Items: []model.Admin{{ID: "admin-1"}, {ID: "admin-2"}},
				Total: 2,
			}, nil)

		res, err := svc.List(ctx, superActor(), 0, -5)

		assert.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		assert.Len(t, res.Items, 2)
		mRepo.AssertExpectations(t)
	})

	t.Run("regular admin is forbidden", func(t *testing.T) {
		mRepo := new(repoMocks.MockAdminRepository)
		svc := NewAdminService(mRepo)

		res, err := svc.List(ctx, regularActor(), 10, 0)

		assert.ErrorIs(t, err, ErrForbidden)
		assert.Nil(t, res)
	})
}
