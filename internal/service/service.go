package service

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Package service implements the use cases of the back office. Services
// orchestrate repositories, the document reconciliation engine, and object
// storage; they contain all business rules and no transport concerns.

var (
	ErrIDRequired         = errors.New("id is required")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrForbidden          = errors.New("forbidden")
	ErrEmailTaken         = errors.New("email is already registered")
	// ErrMustBeInactive rejects permanent deletion of an entity that has not
	// been soft-deleted first.
	ErrMustBeInactive = errors.New("entity must be inactive")
	// ErrInUse rejects permanent deletion of an entity other rows still
	// reference.
	ErrInUse = errors.New("entity is referenced by other records")
)

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation reports whether err is a PostgreSQL foreign key
// constraint violation (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
