package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"insadmin/internal/auth"
	"insadmin/internal/document"
	"insadmin/internal/model"
	"insadmin/internal/repository"
	"insadmin/internal/storage"
)

// policyDocumentsSlot is the named upload slot shared by all policy lines;
// records are discriminated by a free-text document name.
func policyDocumentsSlot(kind model.PolicyKind) document.Slot {
	return document.Slot{Prefix: fmt.Sprintf("policies/%s/documents", kind), Mode: document.ByName}
}

// policyFileSlot holds the single policy document issued by the insurer.
func policyFileSlot(kind model.PolicyKind) document.Slot {
	return document.Slot{Prefix: fmt.Sprintf("policies/%s/policy-files", kind), Mode: document.ByName}
}

// PolicyView is the read shape of a policy: storage keys are replaced by
// signed URLs, regenerated on every read.
type PolicyView struct {
	ID           string           `json:"id"`
	Kind         model.PolicyKind `json:"kind"`
	PolicyNumber string           `json:"policy_number"`
	CustomerID   string           `json:"customer_id"`

	ClientDetails     json.RawMessage `json:"client_details,omitempty"`
	InsuranceDetails  json.RawMessage `json:"insurance_details,omitempty"`
	CommissionDetails json.RawMessage `json:"commission_details,omitempty"`
	ExtraDetails      json.RawMessage `json:"extra_details,omitempty"`
	Notes             json.RawMessage `json:"notes,omitempty"`

	Documents     []document.RecordView `json:"documents"`
	PolicyFileURL string                `json:"policy_file_url,omitempty"`

	IsActive      bool      `json:"is_active"`
	CreatedBy     string    `json:"created_by,omitempty"`
	LastUpdatedBy string    `json:"last_updated_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PolicyMutationInput carries the writable fields of a policy together with
// the document slot mutations. On update, a nil detail block means "unchanged".
type PolicyMutationInput struct {
	PolicyNumber string
	CustomerID   string

	ClientDetails     json.RawMessage
	InsuranceDetails  json.RawMessage
	CommissionDetails json.RawMessage
	ExtraDetails      json.RawMessage
	Notes             json.RawMessage

	Documents  document.Mutation
	PolicyFile document.SingleMutation

	ActorID string
}

// ListPoliciesInput are the policy list filters.
type ListPoliciesInput struct {
	Limit           int
	Offset          int
	SortBy          string
	SortOrder       string
	Search          string
	Company         string
	PolicyType      string
	IncludeInactive bool
}

// PolicyListResult is the service-level DTO for paginated policies.
type PolicyListResult struct {
	Items []PolicyView `json:"data"`
	Total int          `json:"total"`
}

// PolicyService defines the policy use cases. Every operation is scoped by
// kind; a policy created as one line is invisible to the others.
type PolicyService interface {
	Create(ctx context.Context, kind model.PolicyKind, in PolicyMutationInput) (*PolicyView, error)

	Get(ctx context.Context, kind model.PolicyKind, id string) (*PolicyView, error)

	List(ctx context.Context, kind model.PolicyKind, in ListPoliciesInput) (*PolicyListResult, error)

	// Update applies field changes and document slot mutations. The database
	// write commits first; orphaned blobs are deleted afterwards, best effort.
	Update(ctx context.Context, kind model.PolicyKind, id string, in PolicyMutationInput) (*PolicyView, error)

	// SetActive soft-deletes or restores a policy. Blobs are untouched.
	SetActive(ctx context.Context, kind model.PolicyKind, id string, active bool, actorID string) (*PolicyView, error)

	// DeleteDocument removes a single record from the named documents slot
	// and deletes its blob.
	DeleteDocument(ctx context.Context, kind model.PolicyKind, policyID, documentID, actorID string) (*PolicyView, error)

	// HardDelete permanently removes the policy row and every blob it
	// references. Restricted to super admins; the policy must be
	// soft-deleted first.
	HardDelete(ctx context.Context, actor *auth.Claims, kind model.PolicyKind, id string) error

	Stats(ctx context.Context, kind model.PolicyKind) (*model.PolicyStats, error)
}

type policyService struct {
	repo       repository.PolicyRepository
	store      storage.Storage
	reconciler *document.Reconciler
	cleaner    *document.Cleaner
	views      *document.ViewBuilder
}

// NewPolicyService constructs a new PolicyService.
func NewPolicyService(repo repository.PolicyRepository, store storage.Storage, views *document.ViewBuilder) PolicyService {
	return &policyService{
		repo:       repo,
		store:      store,
		reconciler: document.NewReconciler(store),
		cleaner:    document.NewCleaner(store),
		views:      views,
	}
}

func (s *policyService) Create(ctx context.Context, kind model.PolicyKind, in PolicyMutationInput) (*PolicyView, error) {
	if !model.ValidPolicyKind(string(kind)) {
		return nil, ErrInvalidInput
	}
	if in.PolicyNumber == "" || in.CustomerID == "" {
		return nil, ErrInvalidInput
	}

	docs, err := s.reconciler.Reconcile(ctx, policyDocumentsSlot(kind), nil, in.Documents)
	if err != nil {
		return nil, err
	}
	file, err := s.reconciler.ReconcileSingle(ctx, policyFileSlot(kind), nil, in.PolicyFile)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	pol := &model.Policy{
		ID:                uuid.NewString(),
		Kind:              kind,
		PolicyNumber:      in.PolicyNumber,
		CustomerID:        in.CustomerID,
		ClientDetails:     in.ClientDetails,
		InsuranceDetails:  in.InsuranceDetails,
		CommissionDetails: in.CommissionDetails,
		ExtraDetails:      in.ExtraDetails,
		Notes:             in.Notes,
		Documents:         docs.Collection,
		PolicyFile:        file.Record,
		IsActive:          true,
		CreatedBy:         in.ActorID,
		LastUpdatedBy:     in.ActorID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	stored, err := s.repo.Create(ctx, pol)
	if err != nil {
		// The row never landed, so the fresh uploads are already orphans.
		if keys := append(pol.Documents.Keys(), singleKey(pol.PolicyFile)...); len(keys) > 0 {
			s.store.DeleteMany(ctx, keys)
		}
		return nil, err
	}
	return s.view(ctx, stored), nil
}

func (s *policyService) Get(ctx context.Context, kind model.PolicyKind, id string) (*PolicyView, error) {
	pol, err := s.find(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, pol), nil
}

func (s *policyService) List(ctx context.Context, kind model.PolicyKind, in ListPoliciesInput) (*PolicyListResult, error) {
	if !model.ValidPolicyKind(string(kind)) {
		return nil, ErrInvalidInput
	}
	if in.Limit <= 0 {
		in.Limit = 10
	}
	if in.Offset < 0 {
		in.Offset = 0
	}
	res, err := s.repo.List(ctx, repository.PolicyQuery{
		PageQuery: repository.PageQuery{
			Limit:     in.Limit,
			Offset:    in.Offset,
			SortBy:    in.SortBy,
			SortOrder: in.SortOrder,
		},
		Kind:            kind,
		Search:          in.Search,
		Company:         in.Company,
		PolicyType:      in.PolicyType,
		IncludeInactive: in.IncludeInactive,
	})
	if err != nil {
		return nil, err
	}
	items := make([]PolicyView, 0, len(res.Items))
	for i := range res.Items {
		items = append(items, *s.view(ctx, &res.Items[i]))
	}
	return &PolicyListResult{Items: items, Total: res.Total}, nil
}

func (s *policyService) Update(ctx context.Context, kind model.PolicyKind, id string, in PolicyMutationInput) (*PolicyView, error) {
	pol, err := s.find(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	docs, err := s.reconciler.Reconcile(ctx, policyDocumentsSlot(kind), pol.Documents, in.Documents)
	if err != nil {
		return nil, err
	}
	file, err := s.reconciler.ReconcileSingle(ctx, policyFileSlot(kind), pol.PolicyFile, in.PolicyFile)
	if err != nil {
		return nil, err
	}

	if in.PolicyNumber != "" {
		pol.PolicyNumber = in.PolicyNumber
	}
	if in.CustomerID != "" {
		pol.CustomerID = in.CustomerID
	}
	if in.ClientDetails != nil {
		pol.ClientDetails = in.ClientDetails
	}
	if in.InsuranceDetails != nil {
		pol.InsuranceDetails = in.InsuranceDetails
	}
	if in.CommissionDetails != nil {
		pol.CommissionDetails = in.CommissionDetails
	}
	if in.ExtraDetails != nil {
		pol.ExtraDetails = in.ExtraDetails
	}
	if in.Notes != nil {
		pol.Notes = in.Notes
	}
	pol.Documents = docs.Collection
	pol.PolicyFile = file.Record
	pol.LastUpdatedBy = in.ActorID
	pol.UpdatedAt = time.Now().UTC()

	keys := append(docs.KeysToDelete, file.KeysToDelete...)
	stored, err := document.Apply(ctx, s.cleaner, pol.ID, func(ctx context.Context) (*model.Policy, error) {
		return s.repo.Update(ctx, pol)
	}, keys)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, stored), nil
}

func (s *policyService) SetActive(ctx context.Context, kind model.PolicyKind, id string, active bool, actorID string) (*PolicyView, error) {
	pol, err := s.find(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	pol.IsActive = active
	pol.LastUpdatedBy = actorID
	pol.UpdatedAt = time.Now().UTC()
	stored, err := s.repo.Update(ctx, pol)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, stored), nil
}

func (s *policyService) DeleteDocument(ctx context.Context, kind model.PolicyKind, policyID, documentID, actorID string) (*PolicyView, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	pol, err := s.find(ctx, kind, policyID)
	if err != nil {
		return nil, err
	}

	i := pol.Documents.FindByID(documentID)
	if i < 0 {
		return nil, ErrNotFound
	}
	key := pol.Documents[i].StorageKey
	pol.Documents = append(pol.Documents[:i], pol.Documents[i+1:]...)
	pol.LastUpdatedBy = actorID
	pol.UpdatedAt = time.Now().UTC()

	stored, err := document.Apply(ctx, s.cleaner, pol.ID, func(ctx context.Context) (*model.Policy, error) {
		return s.repo.Update(ctx, pol)
	}, []string{key})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, stored), nil
}

func (s *policyService) HardDelete(ctx context.Context, actor *auth.Claims, kind model.PolicyKind, id string) error {
	if err := requireSuperAdmin(actor); err != nil {
		return err
	}
	pol, err := s.find(ctx, kind, id)
	if err != nil {
		return err
	}
	if pol.IsActive {
		return ErrMustBeInactive
	}
	keys := append(pol.Documents.Keys(), singleKey(pol.PolicyFile)...)
	_, err = document.Apply(ctx, s.cleaner, pol.ID, func(ctx context.Context) (*model.Policy, error) {
		if err := s.repo.HardDelete(ctx, kind, id); err != nil {
			return nil, err
		}
		return pol, nil
	}, keys)
	return err
}

func (s *policyService) Stats(ctx context.Context, kind model.PolicyKind) (*model.PolicyStats, error) {
	if !model.ValidPolicyKind(string(kind)) {
		return nil, ErrInvalidInput
	}
	return s.repo.Stats(ctx, kind)
}

func (s *policyService) find(ctx context.Context, kind model.PolicyKind, id string) (*model.Policy, error) {
	if !model.ValidPolicyKind(string(kind)) {
		return nil, ErrInvalidInput
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	pol, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return pol, nil
}

func (s *policyService) view(ctx context.Context, p *model.Policy) *PolicyView {
	return &PolicyView{
		ID:                p.ID,
		Kind:              p.Kind,
		PolicyNumber:      p.PolicyNumber,
		CustomerID:        p.CustomerID,
		ClientDetails:     p.ClientDetails,
		InsuranceDetails:  p.InsuranceDetails,
		CommissionDetails: p.CommissionDetails,
		ExtraDetails:      p.ExtraDetails,
		Notes:             p.Notes,
		Documents:         s.views.BuildView(ctx, p.Documents),
		PolicyFileURL:     s.views.BuildSingle(ctx, p.PolicyFile),
		IsActive:          p.IsActive,
		CreatedBy:         p.CreatedBy,
		LastUpdatedBy:     p.LastUpdatedBy,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
