package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"insadmin/internal/document"
	"insadmin/internal/model"
	"insadmin/internal/repository"
)

var customerTestColumns = []string{
	"id", "customer_code", "customer_type",
	"personal_details", "corporate_details", "family_details",
	"profile_photo", "documents", "additional_documents",
	"is_active", "created_by", "last_updated_by", "created_at", "updated_at",
}

func customerRow(t *testing.T, c *model.Customer) *sqlmock.Rows {
	t.Helper()
	docs, err := json.Marshal(c.Documents)
	assert.NoError(t, err)
	extra, err := json.Marshal(c.AdditionalDocuments)
	assert.NoError(t, err)
	var photo []byte
	if c.ProfilePhoto != nil {
		photo, err = json.Marshal(c.ProfilePhoto)
		assert.NoError(t, err)
	}
	return sqlmock.NewRows(customerTestColumns).AddRow(
		c.ID, c.CustomerCode, string(c.CustomerType),
		[]byte(c.PersonalDetails), []byte(c.CorporateDetails), []byte(c.FamilyDetails),
		photo, docs, extra,
		c.IsActive, c.CreatedBy, c.LastUpdatedBy, c.CreatedAt, c.UpdatedAt,
	)
}

func TestCustomerPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCustomerPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	cust := &model.Customer{
		ID:              "cust-1",
		CustomerCode:    "SEVA-123456",
		CustomerType:    model.CustomerIndividual,
		PersonalDetails: json.RawMessage(`{"firstName":"Asha"}`),
		Documents: document.Collection{
			{ID: "doc-1", Kind: "pan_card", StorageKey: "customers/documents/1_ab_pan.pdf"},
		},
		AdditionalDocuments: document.Collection{},
		IsActive:            true,
		CreatedBy:           "admin-1",
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	mock.ExpectQuery("INSERT INTO customers").
		WillReturnRows(customerRow(t, cust))

	result, err := repo.Create(ctx, cust)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "SEVA-123456", result.CustomerCode)
	assert.Len(t, result.Documents, 1)
	assert.Equal(t, "pan_card", result.Documents[0].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCustomerPostgres(db)
	ctx := context.Background()

	t.Run("found with document slots", func(t *testing.T) {
		cust := &model.Customer{
			ID:           "cust-1",
			CustomerCode: "SEVA-654321",
			CustomerType: model.CustomerCorporate,
			ProfilePhoto: &document.Record{ID: "photo-1", StorageKey: "customers/profile/1_cd_me.jpg"},
			Documents: document.Collection{
				{ID: "doc-1", Kind: "aadhaar_card", StorageKey: "customers/documents/1_ef_a.pdf"},
				{ID: "doc-2", Kind: "other", StorageKey: "customers/documents/1_gh_b.pdf"},
			},
			AdditionalDocuments: document.Collection{
				{ID: "doc-3", Name: "Board Resolution", StorageKey: "customers/additional/1_ij_c.pdf"},
			},
			IsActive: true,
		}

		mock.ExpectQuery("SELECT (.+) FROM customers WHERE id = ?").
			WithArgs("cust-1").
			WillReturnRows(customerRow(t, cust))

		got, err := repo.FindByID(ctx, "cust-1")

		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.NotNil(t, got.ProfilePhoto)
		assert.Equal(t, "photo-1", got.ProfilePhoto.ID)
		assert.Len(t, got.Documents, 2)
		assert.Equal(t, "Board Resolution", got.AdditionalDocuments[0].Name)
	})

	t.Run("null document columns scan as empty", func(t *testing.T) {
		rows := sqlmock.NewRows(customerTestColumns).AddRow(
			"cust-2", "SEVA-000001", "individual",
			nil, nil, nil,
			nil, nil, nil,
			true, nil, nil, time.Now(), time.Now(),
		)
		mock.ExpectQuery("SELECT (.+) FROM customers WHERE id = ?").
			WithArgs("cust-2").
			WillReturnRows(rows)

		got, err := repo.FindByID(ctx, "cust-2")

		assert.NoError(t, err)
		assert.Nil(t, got.ProfilePhoto)
		assert.Empty(t, got.Documents)
		assert.Empty(t, got.AdditionalDocuments)
		assert.Empty(t, got.CreatedBy)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM customers WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.FindByID(ctx, "missing")

		assert.Error(t, err)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, got)
	})
}

func TestCustomerPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCustomerPostgres(db)
	ctx := context.Background()

	t.Run("active only by default", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM customers WHERE is_active = TRUE").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		cust := &model.Customer{ID: "cust-1", CustomerCode: "SEVA-111111", CustomerType: model.CustomerIndividual, IsActive: true}
		mock.ExpectQuery("SELECT (.+) FROM customers WHERE is_active = TRUE ORDER BY created_at DESC").
			WithArgs(10, 0).
			WillReturnRows(customerRow(t, cust))

		res, err := repo.List(ctx, repository.CustomerQuery{PageQuery: repository.PageQuery{Limit: 10, Offset: 0}})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
	})

	t.Run("search and type filter", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM customers WHERE").
			WithArgs("individual", "%asha%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		mock.ExpectQuery("SELECT (.+) FROM customers WHERE").
			WithArgs("individual", "%asha%", 10, 0).
			WillReturnRows(sqlmock.NewRows(customerTestColumns))

		res, err := repo.List(ctx, repository.CustomerQuery{
			PageQuery:    repository.PageQuery{Limit: 10, Offset: 0},
			Search:       "asha",
			CustomerType: "individual",
		})

		assert.NoError(t, err)
		assert.Equal(t, 0, res.Total)
		assert.Empty(t, res.Items)
	})

	t.Run("only inactive", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM customers WHERE is_active = FALSE").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		cust := &model.Customer{ID: "cust-2", CustomerCode: "SEVA-222222", CustomerType: model.CustomerIndividual, IsActive: false}
		mock.ExpectQuery("SELECT (.+) FROM customers WHERE is_active = FALSE ORDER BY created_at DESC").
			WithArgs(10, 0).
			WillReturnRows(customerRow(t, cust))

		res, err := repo.List(ctx, repository.CustomerQuery{
			PageQuery:    repository.PageQuery{Limit: 10, Offset: 0},
			OnlyInactive: true,
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.False(t, res.Items[0].IsActive)
	})
}

func TestCustomerPostgres_Stats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCustomerPostgres(db)

	rows := sqlmock.NewRows([]string{"total", "active", "inactive", "individual", "corporate"}).
		AddRow(10, 8, 2, 7, 3)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").WillReturnRows(rows)

	s, err := repo.Stats(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 10, s.Total)
	assert.Equal(t, 8, s.Active)
	assert.Equal(t, 2, s.Inactive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerPostgres_HardDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCustomerPostgres(db)

	mock.ExpectExec("DELETE FROM customers WHERE id = ?").
		WithArgs("cust-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.HardDelete(context.Background(), "cust-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
