package repository

import (
	"context"

	"insadmin/internal/model"
)

// PolicyQuery extends paging with the policy list filters.
type PolicyQuery struct {
	PageQuery
	Kind model.PolicyKind
	// Search matches the policy number and searchable detail fields.
	Search string
	// Company filters by insurance company; "all" or empty disables it.
	Company string
	// PolicyType filters New/Renewal/...; "all" or empty disables it.
	PolicyType string
	// IncludeInactive lists soft-deleted policies too.
	IncludeInactive bool
}

// PolicyRepository defines data access for all three policy lines; rows are
// discriminated by kind. Document slots are embedded in the policy row.
type PolicyRepository interface {
	Create(ctx context.Context, p *model.Policy) (*model.Policy, error)

	FindByID(ctx context.Context, kind model.PolicyKind, id string) (*model.Policy, error)

	List(ctx context.Context, q PolicyQuery) (*PageResult[model.Policy], error)

	Update(ctx context.Context, p *model.Policy) (*model.Policy, error)

	HardDelete(ctx context.Context, kind model.PolicyKind, id string) error

	Stats(ctx context.Context, kind model.PolicyKind) (*model.PolicyStats, error)
}
