package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_admins",
		SQL: `CREATE TABLE IF NOT EXISTS admins (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name          TEXT        NOT NULL,
  email         TEXT        NOT NULL UNIQUE,
  password_hash TEXT        NOT NULL,
  role          TEXT        NOT NULL DEFAULT 'admin',
  is_active     BOOLEAN     NOT NULL DEFAULT TRUE,
  created_by    TEXT,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_customers",
		SQL: `CREATE TABLE IF NOT EXISTS customers (
  id                   UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  customer_code        TEXT        NOT NULL UNIQUE,
  customer_type        TEXT        NOT NULL,
  personal_details     JSONB,
  corporate_details    JSONB,
  family_details       JSONB,
  profile_photo        JSONB,
  documents            JSONB       NOT NULL DEFAULT '[]',
  additional_documents JSONB       NOT NULL DEFAULT '[]',
  is_active            BOOLEAN     NOT NULL DEFAULT TRUE,
  created_by           TEXT,
  last_updated_by      TEXT,
  created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_customers_customer_type",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_customers_customer_type ON customers (customer_type);`,
	},
	{
		Name: "create_index_customers_is_active",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_customers_is_active ON customers (is_active);`,
	},
	{
		Name: "create_index_customers_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_customers_created_at ON customers (created_at);`,
	},
	{
		Name: "create_table_policies",
		SQL: `CREATE TABLE IF NOT EXISTS policies (
  id                 UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  kind               TEXT        NOT NULL,
  policy_number      TEXT        NOT NULL,
  customer_id        UUID        NOT NULL REFERENCES customers (id),
  client_details     JSONB,
  insurance_details  JSONB,
  commission_details JSONB,
  extra_details      JSONB,
  notes              JSONB,
  documents          JSONB       NOT NULL DEFAULT '[]',
  policy_file        JSONB,
  is_active          BOOLEAN     NOT NULL DEFAULT TRUE,
  created_by         TEXT,
  last_updated_by    TEXT,
  created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_policies_kind",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_policies_kind ON policies (kind);`,
	},
	{
		Name: "create_index_policies_customer_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_policies_customer_id ON policies (customer_id);`,
	},
	{
		Name: "create_index_policies_policy_number",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_policies_policy_number ON policies (policy_number);`,
	},
	{
		Name: "create_index_policies_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_policies_created_at ON policies (created_at);`,
	},
}

// EnsureMigrated checks if the 'admins' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.admins') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
