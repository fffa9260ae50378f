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

var policyTestColumns = []string{
	"id", "kind", "policy_number", "customer_id",
	"client_details", "insurance_details", "commission_details", "extra_details", "notes",
	"documents", "policy_file",
	"is_active", "created_by", "last_updated_by", "created_at", "updated_at",
}

func policyRow(t *testing.T, p *model.Policy) *sqlmock.Rows {
	t.Helper()
	docs, err := json.Marshal(p.Documents)
	assert.NoError(t, err)
	var file []byte
	if p.PolicyFile != nil {
		file, err = json.Marshal(p.PolicyFile)
		assert.NoError(t, err)
	}
	return sqlmock.NewRows(policyTestColumns).AddRow(
		p.ID, string(p.Kind), p.PolicyNumber, p.CustomerID,
		[]byte(p.ClientDetails), []byte(p.InsuranceDetails), []byte(p.CommissionDetails),
		[]byte(p.ExtraDetails), []byte(p.Notes),
		docs, file,
		p.IsActive, p.CreatedBy, p.LastUpdatedBy, p.CreatedAt, p.UpdatedAt,
	)
}

func TestPolicyPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewPolicyPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	pol := &model.Policy{
		ID:               "pol-1",
		Kind:             model.PolicyVehicle,
		PolicyNumber:     "VEH-2026-001",
		CustomerID:       "cust-1",
		InsuranceDetails: json.RawMessage(`{"insuranceCompany":"Acme General","policyType":"New"}`),
		Documents: document.Collection{
			{ID: "doc-1", Name: "RC Book", StorageKey: "policies/vehicle/documents/1_ab_rc.pdf"},
		},
		PolicyFile: &document.Record{ID: "file-1", StorageKey: "policies/vehicle/policy/1_cd_p.pdf"},
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	mock.ExpectQuery("INSERT INTO policies").
		WillReturnRows(policyRow(t, pol))

	result, err := repo.Create(ctx, pol)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, model.PolicyVehicle, result.Kind)
	assert.NotNil(t, result.PolicyFile)
	assert.Equal(t, "RC Book", result.Documents[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPolicyPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewPolicyPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		pol := &model.Policy{ID: "pol-1", Kind: model.PolicyLife, PolicyNumber: "LIFE-1", CustomerID: "cust-1", IsActive: true}
		mock.ExpectQuery("SELECT (.+) FROM policies WHERE kind = (.+) AND id = ?").
			WithArgs("life", "pol-1").
			WillReturnRows(policyRow(t, pol))

		got, err := repo.FindByID(ctx, model.PolicyLife, "pol-1")

		assert.NoError(t, err)
		assert.Equal(t, "LIFE-1", got.PolicyNumber)
		assert.Nil(t, got.PolicyFile)
	})

	t.Run("wrong kind is not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM policies WHERE kind = (.+) AND id = ?").
			WithArgs("health", "pol-1").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.FindByID(ctx, model.PolicyHealth, "pol-1")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, got)
	})
}

func TestPolicyPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewPolicyPostgres(db)
	ctx := context.Background()

	t.Run("kind scoped", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM policies WHERE kind = ").
			WithArgs("health").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		pol := &model.Policy{ID: "pol-1", Kind: model.PolicyHealth, PolicyNumber: "H-1", CustomerID: "cust-1", IsActive: true}
		mock.ExpectQuery("SELECT (.+) FROM policies WHERE kind = (.+) ORDER BY created_at DESC").
			WithArgs("health", 20, 0).
			WillReturnRows(policyRow(t, pol))

		res, err := repo.List(ctx, repository.PolicyQuery{
			PageQuery: repository.PageQuery{Limit: 20, Offset: 0},
			Kind:      model.PolicyHealth,
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
		assert.Equal(t, model.PolicyHealth, res.Items[0].Kind)
	})

	t.Run("company and type filters", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM policies WHERE").
			WithArgs("vehicle", "Acme General", "Renewal").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		mock.ExpectQuery("SELECT (.+) FROM policies WHERE").
			WithArgs("vehicle", "Acme General", "Renewal", 20, 0).
			WillReturnRows(sqlmock.NewRows(policyTestColumns))

		res, err := repo.List(ctx, repository.PolicyQuery{
			PageQuery:  repository.PageQuery{Limit: 20, Offset: 0},
			Kind:       model.PolicyVehicle,
			Company:    "Acme General",
			PolicyType: "Renewal",
		})

		assert.NoError(t, err)
		assert.Equal(t, 0, res.Total)
	})
}

func TestPolicyPostgres_Stats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewPolicyPostgres(db)

	rows := sqlmock.NewRows([]string{"total", "active", "inactive", "new", "renewal"}).
		AddRow(5, 4, 1, 3, 2)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WithArgs("life").
		WillReturnRows(rows)

	s, err := repo.Stats(context.Background(), model.PolicyLife)

	assert.NoError(t, err)
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 3, s.New)
	assert.Equal(t, 2, s.Renewal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPolicyPostgres_HardDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewPolicyPostgres(db)

	mock.ExpectExec("DELETE FROM policies WHERE kind = (.+) AND id = ?").
		WithArgs("vehicle", "pol-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.HardDelete(context.Background(), model.PolicyVehicle, "pol-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
