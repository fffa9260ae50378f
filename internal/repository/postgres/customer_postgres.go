package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"insadmin/internal/model"
	"insadmin/internal/repository"
)

// CustomerPostgres is a PostgreSQL implementation of repository.CustomerRepository.
// Document slots live in JSONB columns on the customer row; ids are assigned to
// new records before every write so the stored state is always addressable.
type CustomerPostgres struct {
	db *sql.DB
}

// NewCustomerPostgres creates a new CustomerPostgres repository.
func NewCustomerPostgres(db *sql.DB) *CustomerPostgres {
	return &CustomerPostgres{db: db}
}

var _ repository.CustomerRepository = (*CustomerPostgres)(nil)

const customerColumns = `id, customer_code, customer_type,
		personal_details, corporate_details, family_details,
		profile_photo, documents, additional_documents,
		is_active, created_by, last_updated_by, created_at, updated_at`

// customerSortColumns whitelists sortable columns; anything else falls back to
// created_at.
var customerSortColumns = map[string]string{
	"created_at":    "created_at",
	"updated_at":    "updated_at",
	"customer_code": "customer_code",
}

func scanCustomer(row interface{ Scan(dest ...any) error }) (*model.Customer, error) {
	var (
		c                          model.Customer
		personal, corporate        []byte
		family                     []byte
		photo, docs, extraDocs     []byte
		createdBy, lastUpdatedBy   sql.NullString
	)
	if err := row.Scan(
		&c.ID,
		&c.CustomerCode,
		&c.CustomerType,
		&personal,
		&corporate,
		&family,
		&photo,
		&docs,
		&extraDocs,
		&c.IsActive,
		&createdBy,
		&lastUpdatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.PersonalDetails = personal
	c.CorporateDetails = corporate
	c.FamilyDetails = family
	c.CreatedBy = fromNullString(createdBy)
	c.LastUpdatedBy = fromNullString(lastUpdatedBy)

	var err error
	if c.ProfilePhoto, err = scanDoc(photo); err != nil {
		return nil, err
	}
	if c.Documents, err = scanDocs(docs); err != nil {
		return nil, err
	}
	if c.AdditionalDocuments, err = scanDocs(extraDocs); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new customer row and returns the stored record.
func (r *CustomerPostgres) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	photo, err := marshalDoc(c.ProfilePhoto)
	if err != nil {
		return nil, err
	}
	docs, err := marshalDocs(c.Documents)
	if err != nil {
		return nil, err
	}
	extraDocs, err := marshalDocs(c.AdditionalDocuments)
	if err != nil {
		return nil, err
	}

	const q = `
		INSERT INTO customers (id, customer_code, customer_type,
			personal_details, corporate_details, family_details,
			profile_photo, documents, additional_documents,
			is_active, created_by, last_updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + customerColumns
	row := r.db.QueryRowContext(ctx, q,
		c.ID,
		c.CustomerCode,
		c.CustomerType,
		rawOrNil(c.PersonalDetails),
		rawOrNil(c.CorporateDetails),
		rawOrNil(c.FamilyDetails),
		photo,
		docs,
		extraDocs,
		c.IsActive,
		nullableString(c.CreatedBy),
		nullableString(c.LastUpdatedBy),
		c.CreatedAt,
		c.UpdatedAt,
	)
	return scanCustomer(row)
}

// FindByID fetches a single customer by its ID.
func (r *CustomerPostgres) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return scanCustomer(r.db.QueryRowContext(ctx, q, id))
}

// List returns customers matching the query with a total count.
func (r *CustomerPostgres) List(ctx context.Context, cq repository.CustomerQuery) (*repository.PageResult[model.Customer], error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 4)

	switch {
	case cq.OnlyInactive:
		where = append(where, "is_active = FALSE")
	case !cq.IncludeInactive:
		where = append(where, "is_active = TRUE")
	}
	if cq.CustomerType != "" && cq.CustomerType != "all" {
		args = append(args, cq.CustomerType)
		where = append(where, fmt.Sprintf("customer_type = $%d", len(args)))
	}
	if cq.Search != "" {
		args = append(args, "%"+cq.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(`(customer_code ILIKE $%d
			OR personal_details->>'firstName' ILIKE $%d
			OR personal_details->>'lastName' ILIKE $%d
			OR personal_details->>'email' ILIKE $%d
			OR personal_details->>'mobileNumber' ILIKE $%d)`, n, n, n, n, n))
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	qCount := `SELECT COUNT(*) FROM customers` + cond
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, err
	}

	sortCol, ok := customerSortColumns[cq.SortBy]
	if !ok {
		sortCol = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(cq.SortOrder, "asc") {
		dir = "ASC"
	}

	args = append(args, cq.Limit, cq.Offset)
	qList := fmt.Sprintf(`SELECT `+customerColumns+`
		FROM customers%s
		ORDER BY %s %s, id DESC
		LIMIT $%d OFFSET $%d`, cond, sortCol, dir, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, qList, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Customer]{
		Items: items,
		Total: total,
	}, nil
}

// Update overwrites the customer row, document slots included.
func (r *CustomerPostgres) Update(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	photo, err := marshalDoc(c.ProfilePhoto)
	if err != nil {
		return nil, err
	}
	docs, err := marshalDocs(c.Documents)
	if err != nil {
		return nil, err
	}
	extraDocs, err := marshalDocs(c.AdditionalDocuments)
	if err != nil {
		return nil, err
	}

	const q = `
		UPDATE customers
		SET customer_type = $2,
			personal_details = $3, corporate_details = $4, family_details = $5,
			profile_photo = $6, documents = $7, additional_documents = $8,
			is_active = $9, last_updated_by = $10, updated_at = $11
		WHERE id = $1
		RETURNING ` + customerColumns
	row := r.db.QueryRowContext(ctx, q,
		c.ID,
		c.CustomerType,
		rawOrNil(c.PersonalDetails),
		rawOrNil(c.CorporateDetails),
		rawOrNil(c.FamilyDetails),
		photo,
		docs,
		extraDocs,
		c.IsActive,
		nullableString(c.LastUpdatedBy),
		c.UpdatedAt,
	)
	return scanCustomer(row)
}

// HardDelete removes the customer row permanently. It does not return an error
// if the row does not exist.
func (r *CustomerPostgres) HardDelete(ctx context.Context, id string) error {
	const q = `DELETE FROM customers WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// Stats aggregates the dashboard counters in a single query.
func (r *CustomerPostgres) Stats(ctx context.Context) (*model.CustomerStats, error) {
	const q = `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE NOT is_active),
			COUNT(*) FILTER (WHERE customer_type = 'individual'),
			COUNT(*) FILTER (WHERE customer_type = 'corporate')
		FROM customers
	`
	var s model.CustomerStats
	if err := r.db.QueryRowContext(ctx, q).Scan(
		&s.Total,
		&s.Active,
		&s.Inactive,
		&s.Individual,
		&s.Corporate,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
