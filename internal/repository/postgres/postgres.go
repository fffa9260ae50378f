package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"insadmin/internal/document"
)

// Package postgres holds the SQL implementations of the repository
// interfaces. Document slots are stored as JSONB columns on the owning row.

// marshalDocs serializes a document collection for a JSONB column, assigning
// ids to records that are new in this state.
func marshalDocs(c document.Collection) ([]byte, error) {
	document.EnsureIDs(c)
	if c == nil {
		c = document.Collection{}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal documents: %w", err)
	}
	return b, nil
}

// marshalDoc serializes a cardinality-one slot; nil maps to SQL NULL.
func marshalDoc(r *document.Record) (any, error) {
	if r == nil {
		return nil, nil
	}
	document.EnsureID(r)
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return b, nil
}

func scanDocs(b []byte) (document.Collection, error) {
	if len(b) == 0 {
		return document.Collection{}, nil
	}
	var c document.Collection
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("unmarshal documents: %w", err)
	}
	return c, nil
}

func scanDoc(b []byte) (*document.Record, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var r document.Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return &r, nil
}

// rawOrNil passes free-form JSON detail blocks through to JSONB columns.
func rawOrNil(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func fromNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
