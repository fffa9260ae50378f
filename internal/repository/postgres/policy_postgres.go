package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"insadmin/internal/model"
	"insadmin/internal/repository"
)

// PolicyPostgres is a PostgreSQL implementation of repository.PolicyRepository.
// All policy lines share one table discriminated by the kind column.
type PolicyPostgres struct {
	db *sql.DB
}

// NewPolicyPostgres creates a new PolicyPostgres repository.
func NewPolicyPostgres(db *sql.DB) *PolicyPostgres {
	return &PolicyPostgres{db: db}
}

var _ repository.PolicyRepository = (*PolicyPostgres)(nil)

const policyColumns = `id, kind, policy_number, customer_id,
		client_details, insurance_details, commission_details, extra_details, notes,
		documents, policy_file,
		is_active, created_by, last_updated_by, created_at, updated_at`

var policySortColumns = map[string]string{
	"created_at":    "created_at",
	"updated_at":    "updated_at",
	"policy_number": "policy_number",
}

func scanPolicy(row interface{ Scan(dest ...any) error }) (*model.Policy, error) {
	var (
		p                        model.Policy
		client, insurance        []byte
		commission, extra, notes []byte
		docs, policyFile         []byte
		createdBy, lastUpdatedBy sql.NullString
	)
	if err := row.Scan(
		&p.ID,
		&p.Kind,
		&p.PolicyNumber,
		&p.CustomerID,
		&client,
		&insurance,
		&commission,
		&extra,
		&notes,
		&docs,
		&policyFile,
		&p.IsActive,
		&createdBy,
		&lastUpdatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.ClientDetails = client
	p.InsuranceDetails = insurance
	p.CommissionDetails = commission
	p.ExtraDetails = extra
	p.Notes = notes
	p.CreatedBy = fromNullString(createdBy)
	p.LastUpdatedBy = fromNullString(lastUpdatedBy)

	var err error
	if p.Documents, err = scanDocs(docs); err != nil {
		return nil, err
	}
	if p.PolicyFile, err = scanDoc(policyFile); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new policy row and returns the stored record.
func (r *PolicyPostgres) Create(ctx context.Context, p *model.Policy) (*model.Policy, error) {
	docs, err := marshalDocs(p.Documents)
	if err != nil {
		return nil, err
	}
	policyFile, err := marshalDoc(p.PolicyFile)
	if err != nil {
		return nil, err
	}

	const q = `
		INSERT INTO policies (id, kind, policy_number, customer_id,
			client_details, insurance_details, commission_details, extra_details, notes,
			documents, policy_file,
			is_active, created_by, last_updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + policyColumns
	row := r.db.QueryRowContext(ctx, q,
		p.ID,
		p.Kind,
		p.PolicyNumber,
		p.CustomerID,
		rawOrNil(p.ClientDetails),
		rawOrNil(p.InsuranceDetails),
		rawOrNil(p.CommissionDetails),
		rawOrNil(p.ExtraDetails),
		rawOrNil(p.Notes),
		docs,
		policyFile,
		p.IsActive,
		nullableString(p.CreatedBy),
		nullableString(p.LastUpdatedBy),
		p.CreatedAt,
		p.UpdatedAt,
	)
	return scanPolicy(row)
}

// FindByID fetches a single policy by kind and ID.
func (r *PolicyPostgres) FindByID(ctx context.Context, kind model.PolicyKind, id string) (*model.Policy, error) {
	const q = `SELECT ` + policyColumns + ` FROM policies WHERE kind = $1 AND id = $2`
	return scanPolicy(r.db.QueryRowContext(ctx, q, kind, id))
}

// List returns policies of one kind matching the query with a total count.
func (r *PolicyPostgres) List(ctx context.Context, pq repository.PolicyQuery) (*repository.PageResult[model.Policy], error) {
	where := []string{"kind = $1"}
	args := []any{pq.Kind}

	if !pq.IncludeInactive {
		where = append(where, "is_active = TRUE")
	}
	if pq.Company != "" && pq.Company != "all" {
		args = append(args, pq.Company)
		where = append(where, fmt.Sprintf("insurance_details->>'insuranceCompany' = $%d", len(args)))
	}
	if pq.PolicyType != "" && pq.PolicyType != "all" {
		args = append(args, pq.PolicyType)
		where = append(where, fmt.Sprintf("insurance_details->>'policyType' = $%d", len(args)))
	}
	if pq.Search != "" {
		args = append(args, "%"+pq.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(`(policy_number ILIKE $%d
			OR client_details->>'clientName' ILIKE $%d
			OR insurance_details->>'insuranceCompany' ILIKE $%d)`, n, n, n))
	}

	cond := " WHERE " + strings.Join(where, " AND ")

	qCount := `SELECT COUNT(*) FROM policies` + cond
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, err
	}

	sortCol, ok := policySortColumns[pq.SortBy]
	if !ok {
		sortCol = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(pq.SortOrder, "asc") {
		dir = "ASC"
	}

	args = append(args, pq.Limit, pq.Offset)
	qList := fmt.Sprintf(`SELECT `+policyColumns+`
		FROM policies%s
		ORDER BY %s %s, id DESC
		LIMIT $%d OFFSET $%d`, cond, sortCol, dir, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, qList, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Policy, 0)
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Policy]{
		Items: items,
		Total: total,
	}, nil
}

// Update overwrites the policy row, document slots included.
func (r *PolicyPostgres) Update(ctx context.Context, p *model.Policy) (*model.Policy, error) {
	docs, err := marshalDocs(p.Documents)
	if err != nil {
		return nil, err
	}
	policyFile, err := marshalDoc(p.PolicyFile)
	if err != nil {
		return nil, err
	}

	const q = `
		UPDATE policies
		SET policy_number = $3, customer_id = $4,
			client_details = $5, insurance_details = $6, commission_details = $7,
			extra_details = $8, notes = $9,
			documents = $10, policy_file = $11,
			is_active = $12, last_updated_by = $13, updated_at = $14
		WHERE kind = $1 AND id = $2
		RETURNING ` + policyColumns
	row := r.db.QueryRowContext(ctx, q,
		p.Kind,
		p.ID,
		p.PolicyNumber,
		p.CustomerID,
		rawOrNil(p.ClientDetails),
		rawOrNil(p.InsuranceDetails),
		rawOrNil(p.CommissionDetails),
		rawOrNil(p.ExtraDetails),
		rawOrNil(p.Notes),
		docs,
		policyFile,
		p.IsActive,
		nullableString(p.LastUpdatedBy),
		p.UpdatedAt,
	)
	return scanPolicy(row)
}

// HardDelete removes the policy row permanently. It does not return an error
// if the row does not exist.
func (r *PolicyPostgres) HardDelete(ctx context.Context, kind model.PolicyKind, id string) error {
	const q = `DELETE FROM policies WHERE kind = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, kind, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// Stats aggregates the counters for one policy line in a single query.
func (r *PolicyPostgres) Stats(ctx context.Context, kind model.PolicyKind) (*model.PolicyStats, error) {
	const q = `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE NOT is_active),
			COUNT(*) FILTER (WHERE insurance_details->>'policyType' = 'New'),
			COUNT(*) FILTER (WHERE insurance_details->>'policyType' = 'Renewal')
		FROM policies
		WHERE kind = $1
	`
	var s model.PolicyStats
	if err := r.db.QueryRowContext(ctx, q, kind).Scan(
		&s.Total,
		&s.Active,
		&s.Inactive,
		&s.New,
		&s.Renewal,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
