package repository

import (
	"context"

	"insadmin/internal/model"
)

// CustomerQuery extends paging with the customer list filters.
type CustomerQuery struct {
	PageQuery
	// Search matches against the customer code and the name/email/mobile
	// fields of the personal details block.
	Search string
	// CustomerType filters by type; "all" or empty disables the filter.
	CustomerType string
	// IncludeInactive lists soft-deleted customers too.
	IncludeInactive bool
	// OnlyInactive restricts the list to soft-deleted customers. Takes
	// precedence over IncludeInactive.
	OnlyInactive bool
}

// CustomerRepository defines data access for customers. Document collections
// are embedded in the customer row; the repository assigns ids to records that
// are new in the given state before writing it.
type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) (*model.Customer, error)

	FindByID(ctx context.Context, id string) (*model.Customer, error)

	List(ctx context.Context, q CustomerQuery) (*PageResult[model.Customer], error)

	// Update overwrites the customer row, document slots included.
	Update(ctx context.Context, c *model.Customer) (*model.Customer, error)

	// HardDelete removes the row permanently. Soft deletion is an Update
	// with IsActive=false.
	HardDelete(ctx context.Context, id string) error

	Stats(ctx context.Context) (*model.CustomerStats, error)
}
