package postgres

import (
	"context"
	"database/sql"

	"insadmin/internal/model"
	"insadmin/internal/repository"
)

// AdminPostgres is a PostgreSQL implementation of repository.AdminRepository.
type AdminPostgres struct {
	db *sql.DB
}

// NewAdminPostgres creates a new AdminPostgres repository.
func NewAdminPostgres(db *sql.DB) *AdminPostgres {
	return &AdminPostgres{db: db}
}

var _ repository.AdminRepository = (*AdminPostgres)(nil)

const adminColumns = `id, name, email, password_hash, role, is_active, created_by, created_at, updated_at`

func scanAdmin(row interface{ Scan(dest ...any) error }) (*model.Admin, error) {
	var (
		a         model.Admin
		createdBy sql.NullString
	)
	if err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&a.PasswordHash,
		&a.Role,
		&a.IsActive,
		&createdBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.CreatedBy = fromNullString(createdBy)
	return &a, nil
}

// Create inserts a new admin row and returns the stored record.
func (r *AdminPostgres) Create(ctx context.Context, a *model.Admin) (*model.Admin, error) {
	const q = `
		INSERT INTO admins (id, name, email, password_hash, role, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + adminColumns
	row := r.db.QueryRowContext(ctx, q,
		a.ID,
		a.Name,
		a.Email,
		a.PasswordHash,
		a.Role,
		a.IsActive,
		nullableString(a.CreatedBy),
		a.CreatedAt,
		a.UpdatedAt,
	)
	return scanAdmin(row)
}

// FindByID fetches a single admin by its ID.
func (r *AdminPostgres) FindByID(ctx context.Context, id string) (*model.Admin, error) {
	const q = `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`
	return scanAdmin(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches a single admin by email, active or not.
func (r *AdminPostgres) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	const q = `SELECT ` + adminColumns + ` FROM admins WHERE email = $1`
	return scanAdmin(r.db.QueryRowContext(ctx, q, email))
}

// List returns admins using LIMIT/OFFSET pagination and a total count.
func (r *AdminPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Admin], error) {
	const qCount = `SELECT COUNT(*) FROM admins`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + adminColumns + `
		FROM admins
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Admin, 0)
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Admin]{
		Items: items,
		Total: total,
	}, nil
}

// Update overwrites the mutable fields of an admin row.
func (r *AdminPostgres) Update(ctx context.Context, a *model.Admin) (*model.Admin, error) {
	const q = `
		UPDATE admins
		SET name = $2, email = $3, password_hash = $4, role = $5, is_active = $6, updated_at = $7
		WHERE id = $1
		RETURNING ` + adminColumns
	row := r.db.QueryRowContext(ctx, q,
		a.ID,
		a.Name,
		a.Email,
		a.PasswordHash,
		a.Role,
		a.IsActive,
		a.UpdatedAt,
	)
	return scanAdmin(row)
}

// Delete removes the admin row permanently. It does not return an error if the
// row does not exist.
func (r *AdminPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM admins WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// Stats aggregates counts over regular admin accounts in a single query.
// Super admin accounts are excluded.
func (r *AdminPostgres) Stats(ctx context.Context) (*model.AdminStats, error) {
	const q = `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE NOT is_active),
			COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '30 days')
		FROM admins
		WHERE role = 'admin'
	`
	var s model.AdminStats
	if err := r.db.QueryRowContext(ctx, q).Scan(
		&s.Total,
		&s.Active,
		&s.Inactive,
		&s.Recent,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
