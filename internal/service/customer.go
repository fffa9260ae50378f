package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"

	"insadmin/internal/auth"
	"insadmin/internal/document"
	"insadmin/internal/model"
	"insadmin/internal/repository"
	"insadmin/internal/storage"
)

// Document slots owned by the customer entity. The fixed-kind slot matches on
// the category tag; the additional slot matches on a free-text name.
var (
	customerDocumentsSlot  = document.Slot{Prefix: "customers/documents", Mode: document.ByKind}
	customerAdditionalSlot = document.Slot{Prefix: "customers/additional-documents", Mode: document.ByName}
	customerProfileSlot    = document.Slot{Prefix: "customers/profile-photos", Mode: document.ByKind}
)

const customerCodeAttempts = 5

// CustomerView is the read shape of a customer: storage keys are replaced by
// signed URLs, regenerated on every read.
type CustomerView struct {
	ID           string             `json:"id"`
	CustomerCode string             `json:"customer_code"`
	CustomerType model.CustomerType `json:"customer_type"`

	PersonalDetails  json.RawMessage `json:"personal_details,omitempty"`
	CorporateDetails json.RawMessage `json:"corporate_details,omitempty"`
	FamilyDetails    json.RawMessage `json:"family_details,omitempty"`

	ProfilePhotoURL     string                `json:"profile_photo_url,omitempty"`
	Documents           []document.RecordView `json:"documents"`
	AdditionalDocuments []document.RecordView `json:"additional_documents"`

	IsActive      bool      `json:"is_active"`
	CreatedBy     string    `json:"created_by,omitempty"`
	LastUpdatedBy string    `json:"last_updated_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CustomerMutationInput carries the writable fields of a customer together
// with the document slot mutations. On update, a nil detail block means
// "unchanged".
type CustomerMutationInput struct {
	CustomerType     string
	PersonalDetails  json.RawMessage
	CorporateDetails json.RawMessage
	FamilyDetails    json.RawMessage

	Documents           document.Mutation
	AdditionalDocuments document.Mutation
	ProfilePhoto        document.SingleMutation

	ActorID string
}

// ListCustomersInput are the customer list filters.
type ListCustomersInput struct {
	Limit           int
	Offset          int
	SortBy          string
	SortOrder       string
	Search          string
	CustomerType    string
	IncludeInactive bool
}

// CustomerListResult is the service-level DTO for paginated customers.
type CustomerListResult struct {
	Items []CustomerView `json:"data"`
	Total int            `json:"total"`
}

// CustomerService defines the customer use cases.
type CustomerService interface {
	Create(ctx context.Context, in CustomerMutationInput) (*CustomerView, error)

	Get(ctx context.Context, id string) (*CustomerView, error)

	List(ctx context.Context, in ListCustomersInput) (*CustomerListResult, error)

	// ListDeleted returns soft-deleted customers only. Restricted to super
	// admins, the audience that can restore or permanently delete them.
	ListDeleted(ctx context.Context, actor *auth.Claims, in ListCustomersInput) (*CustomerListResult, error)

	// Update applies field changes and document slot mutations. The database
	// write commits first; orphaned blobs are deleted afterwards, best effort.
	Update(ctx context.Context, id string, in CustomerMutationInput) (*CustomerView, error)

	// SetActive soft-deletes or restores a customer. Blobs are untouched.
	SetActive(ctx context.Context, id string, active bool, actorID string) (*CustomerView, error)

	// DeleteDocument removes a single record from the named slot
	// ("documents" or "additional_documents") and deletes its blob.
	DeleteDocument(ctx context.Context, customerID, slotName, documentID, actorID string) (*CustomerView, error)

	// HardDelete permanently removes the customer row and every blob it
	// references. Restricted to super admins; the customer must be
	// soft-deleted first, and its policies hard-deleted.
	HardDelete(ctx context.Context, actor *auth.Claims, id string) error

	Stats(ctx context.Context) (*model.CustomerStats, error)

	// ExportCSV renders all customers, inactive included, as a CSV report.
	ExportCSV(ctx context.Context) ([]byte, error)
}

type customerService struct {
	repo       repository.CustomerRepository
	store      storage.Storage
	reconciler *document.Reconciler
	cleaner    *document.Cleaner
	views      *document.ViewBuilder
}

// NewCustomerService constructs a new CustomerService.
func NewCustomerService(repo repository.CustomerRepository, store storage.Storage, views *document.ViewBuilder) CustomerService {
	return &customerService{
		repo:       repo,
		store:      store,
		reconciler: document.NewReconciler(store),
		cleaner:    document.NewCleaner(store),
		views:      views,
	}
}

func (s *customerService) Create(ctx context.Context, in CustomerMutationInput) (*CustomerView, error) {
	ctype := model.CustomerType(in.CustomerType)
	if ctype != model.CustomerIndividual && ctype != model.CustomerCorporate {
		return nil, ErrInvalidInput
	}

	docs, err := s.reconciler.Reconcile(ctx, customerDocumentsSlot, nil, normalizeKinds(in.Documents))
	if err != nil {
		return nil, err
	}
	extra, err := s.reconciler.Reconcile(ctx, customerAdditionalSlot, nil, in.AdditionalDocuments)
	if err != nil {
		return nil, err
	}
	photo, err := s.reconciler.ReconcileSingle(ctx, customerProfileSlot, nil, in.ProfilePhoto)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cust := &model.Customer{
		ID:                  uuid.NewString(),
		CustomerType:        ctype,
		PersonalDetails:     in.PersonalDetails,
		CorporateDetails:    in.CorporateDetails,
		FamilyDetails:       in.FamilyDetails,
		ProfilePhoto:        photo.Record,
		Documents:           docs.Collection,
		AdditionalDocuments: extra.Collection,
		IsActive:            true,
		CreatedBy:           in.ActorID,
		LastUpdatedBy:       in.ActorID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	// The generated code carries a unique constraint; collisions retry with
	// a fresh code.
	var stored *model.Customer
	for attempt := 0; attempt < customerCodeAttempts; attempt++ {
		cust.CustomerCode = generateCustomerCode()
		stored, err = s.repo.Create(ctx, cust)
		if err == nil {
			break
		}
		if !isUniqueViolation(err) {
			break
		}
	}
	if err != nil {
		// The row never landed, so the fresh uploads are already orphans.
		if keys := append(append(cust.Documents.Keys(), cust.AdditionalDocuments.Keys()...), singleKey(cust.ProfilePhoto)...); len(keys) > 0 {
			s.store.DeleteMany(ctx, keys)
		}
		return nil, err
	}

	return s.view(ctx, stored), nil
}

func (s *customerService) Get(ctx context.Context, id string) (*CustomerView, error) {
	cust, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cust), nil
}

func (s *customerService) List(ctx context.Context, in ListCustomersInput) (*CustomerListResult, error) {
	return s.list(ctx, in, false)
}

func (s *customerService) ListDeleted(ctx context.Context, actor *auth.Claims, in ListCustomersInput) (*CustomerListResult, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	return s.list(ctx, in, true)
}

func (s *customerService) list(ctx context.Context, in ListCustomersInput, onlyInactive bool) (*CustomerListResult, error) {
	if in.Limit <= 0 {
		in.Limit = 10
	}
	if in.Offset < 0 {
		in.Offset = 0
	}
	res, err := s.repo.List(ctx, repository.CustomerQuery{
		PageQuery: repository.PageQuery{
			Limit:     in.Limit,
			Offset:    in.Offset,
			SortBy:    in.SortBy,
			SortOrder: in.SortOrder,
		},
		Search:          in.Search,
		CustomerType:    in.CustomerType,
		IncludeInactive: in.IncludeInactive,
		OnlyInactive:    onlyInactive,
	})
	if err != nil {
		return nil, err
	}
	items := make([]CustomerView, 0, len(res.Items))
	for i := range res.Items {
		items = append(items, *s.view(ctx, &res.Items[i]))
	}
	return &CustomerListResult{Items: items, Total: res.Total}, nil
}

func (s *customerService) Update(ctx context.Context, id string, in CustomerMutationInput) (*CustomerView, error) {
	cust, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	docs, err := s.reconciler.Reconcile(ctx, customerDocumentsSlot, cust.Documents, normalizeKinds(in.Documents))
	if err != nil {
		return nil, err
	}
	extra, err := s.reconciler.Reconcile(ctx, customerAdditionalSlot, cust.AdditionalDocuments, in.AdditionalDocuments)
	if err != nil {
		return nil, err
	}
	photo, err := s.reconciler.ReconcileSingle(ctx, customerProfileSlot, cust.ProfilePhoto, in.ProfilePhoto)
	if err != nil {
		return nil, err
	}

	if in.CustomerType != "" {
		ctype := model.CustomerType(in.CustomerType)
		if ctype != model.CustomerIndividual && ctype != model.CustomerCorporate {
			return nil, ErrInvalidInput
		}
		cust.CustomerType = ctype
	}
	if in.PersonalDetails != nil {
		cust.PersonalDetails = in.PersonalDetails
	}
	if in.CorporateDetails != nil {
		cust.CorporateDetails = in.CorporateDetails
	}
	if in.FamilyDetails != nil {
		cust.FamilyDetails = in.FamilyDetails
	}
	cust.Documents = docs.Collection
	cust.AdditionalDocuments = extra.Collection
	cust.ProfilePhoto = photo.Record
	cust.LastUpdatedBy = in.ActorID
	cust.UpdatedAt = time.Now().UTC()

	keys := append(append(docs.KeysToDelete, extra.KeysToDelete...), photo.KeysToDelete...)
	stored, err := document.Apply(ctx, s.cleaner, cust.ID, func(ctx context.Context) (*model.Customer, error) {
		return s.repo.Update(ctx, cust)
	}, keys)
	if err != nil {
		return nil, err
	}

	return s.view(ctx, stored), nil
}

func (s *customerService) SetActive(ctx context.Context, id string, active bool, actorID string) (*CustomerView, error) {
	cust, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	cust.IsActive = active
	cust.LastUpdatedBy = actorID
	cust.UpdatedAt = time.Now().UTC()
	stored, err := s.repo.Update(ctx, cust)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, stored), nil
}

func (s *customerService) DeleteDocument(ctx context.Context, customerID, slotName, documentID, actorID string) (*CustomerView, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	cust, err := s.find(ctx, customerID)
	if err != nil {
		return nil, err
	}

	var coll *document.Collection
	switch slotName {
	case "documents":
		coll = &cust.Documents
	case "additional_documents":
		coll = &cust.AdditionalDocuments
	default:
		return nil, ErrInvalidInput
	}

	i := coll.FindByID(documentID)
	if i < 0 {
		return nil, ErrNotFound
	}
	key := (*coll)[i].StorageKey
	*coll = append((*coll)[:i], (*coll)[i+1:]...)
	cust.LastUpdatedBy = actorID
	cust.UpdatedAt = time.Now().UTC()

	stored, err := document.Apply(ctx, s.cleaner, cust.ID, func(ctx context.Context) (*model.Customer, error) {
		return s.repo.Update(ctx, cust)
	}, []string{key})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, stored), nil
}

func (s *customerService) HardDelete(ctx context.Context, actor *auth.Claims, id string) error {
	if err := requireSuperAdmin(actor); err != nil {
		return err
	}
	cust, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if cust.IsActive {
		return ErrMustBeInactive
	}
	keys := append(append(cust.Documents.Keys(), cust.AdditionalDocuments.Keys()...), singleKey(cust.ProfilePhoto)...)
	_, err = document.Apply(ctx, s.cleaner, cust.ID, func(ctx context.Context) (*model.Customer, error) {
		if err := s.repo.HardDelete(ctx, id); err != nil {
			return nil, err
		}
		return cust, nil
	}, keys)
	if isForeignKeyViolation(err) {
		// Policies still reference this customer; they must be hard-deleted
		// first.
		return ErrInUse
	}
	return err
}

func (s *customerService) Stats(ctx context.Context) (*model.CustomerStats, error) {
	return s.repo.Stats(ctx)
}

func (s *customerService) ExportCSV(ctx context.Context) ([]byte, error) {
	const exportPageSize = 500

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"customer_code", "customer_type", "name", "email", "mobile", "active", "created_at"}); err != nil {
		return nil, err
	}

	for offset := 0; ; offset += exportPageSize {
		res, err := s.repo.List(ctx, repository.CustomerQuery{
			PageQuery:       repository.PageQuery{Limit: exportPageSize, Offset: offset},
			IncludeInactive: true,
		})
		if err != nil {
			return nil, err
		}
		for i := range res.Items {
			c := &res.Items[i]
			var personal struct {
				FirstName    string `json:"firstName"`
				LastName     string `json:"lastName"`
				Email        string `json:"email"`
				MobileNumber string `json:"mobileNumber"`
			}
			if len(c.PersonalDetails) > 0 {
				// Export tolerates malformed detail blocks; the row still lands.
				_ = json.Unmarshal(c.PersonalDetails, &personal)
			}
			name := personal.FirstName
			if personal.LastName != "" {
				name += " " + personal.LastName
			}
			row := []string{
				c.CustomerCode,
				string(c.CustomerType),
				name,
				personal.Email,
				personal.MobileNumber,
				strconv.FormatBool(c.IsActive),
				c.CreatedAt.UTC().Format(time.RFC3339),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
		if len(res.Items) < exportPageSize {
			break
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *customerService) find(ctx context.Context, id string) (*model.Customer, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	cust, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return cust, nil
}

func (s *customerService) view(ctx context.Context, c *model.Customer) *CustomerView {
	return &CustomerView{
		ID:                  c.ID,
		CustomerCode:        c.CustomerCode,
		CustomerType:        c.CustomerType,
		PersonalDetails:     c.PersonalDetails,
		CorporateDetails:    c.CorporateDetails,
		FamilyDetails:       c.FamilyDetails,
		ProfilePhotoURL:     s.views.BuildSingle(ctx, c.ProfilePhoto),
		Documents:           s.views.BuildView(ctx, c.Documents),
		AdditionalDocuments: s.views.BuildView(ctx, c.AdditionalDocuments),
		IsActive:            c.IsActive,
		CreatedBy:           c.CreatedBy,
		LastUpdatedBy:       c.LastUpdatedBy,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

// normalizeKinds coerces unknown category tags on new uploads to "other".
func normalizeKinds(m document.Mutation) document.Mutation {
	for i := range m.Incoming {
		if m.Incoming[i].Discriminator != "" && !model.DocumentKinds[m.Incoming[i].Discriminator] {
			m.Incoming[i].Discriminator = "other"
		}
	}
	return m
}

func singleKey(r *document.Record) []string {
	if r == nil || r.StorageKey == "" {
		return nil
	}
	return []string{r.StorageKey}
}

// generateCustomerCode builds a display code like "SEVA-483920".
func generateCustomerCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		// crypto/rand only fails when the platform source is broken.
		return fmt.Sprintf("SEVA-%06d", time.Now().UnixNano()%1_000_000)
	}
	return fmt.Sprintf("SEVA-%06d", n.Int64())
}
