package repository

import (
	"context"

	"insadmin/internal/model"
)

// AdminRepository defines data access for admin accounts.
// No business logic here — strictly persistence operations.
type AdminRepository interface {
	// Create inserts a new admin row and returns the stored record.
	Create(ctx context.Context, a *model.Admin) (*model.Admin, error)

	// FindByID returns an admin by id.
	FindByID(ctx context.Context, id string) (*model.Admin, error)

	// FindByEmail returns an admin by email, active or not.
	FindByEmail(ctx context.Context, email string) (*model.Admin, error)

	// List returns a paginated list of admin accounts.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Admin], error)

	// Update overwrites the mutable fields of an admin row.
	Update(ctx context.Context, a *model.Admin) (*model.Admin, error)

	// Delete removes an admin row permanently.
	Delete(ctx context.Context, id string) error

	// Stats returns aggregate counts over regular admin accounts.
	Stats(ctx context.Context) (*model.AdminStats, error)
}
