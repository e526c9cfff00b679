package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

const dropSQL = `
	DROP TABLE IF EXISTS transactions;
	DROP TABLE IF EXISTS accounts;
	DROP TABLE IF EXISTS users;
	DROP SEQUENCE IF EXISTS transaction_code_seq;
	DROP SEQUENCE IF EXISTS account_code_seq;
`

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate creates any missing tables, sequences and indexes.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Reset drops every table and sequence and recreates the empty schema.
func Reset(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, dropSQL); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return Migrate(ctx, db)
}

// Ping is used by the health check.
func Ping(ctx context.Context, db *sql.DB) error {
	return db.PingContext(ctx)
}

// WithTx runs fn inside a READ COMMITTED transaction. The transaction is
// committed when fn returns nil and rolled back otherwise, including on panic.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// customerOIDConstraint is the name PostgreSQL gives the UNIQUE on users.customer_oid.
const customerOIDConstraint = "users_customer_oid_key"

// ErrCustomerOIDTaken means the bank customer id already belongs to another user.
var ErrCustomerOIDTaken = apperrors.New(apperrors.ErrConflict, "Customer id is already linked to another user")

// conflict maps a unique violation to ErrConflict with message, except a clash on
// users.customer_oid, which is always ErrCustomerOIDTaken.
func conflict(err error, message string) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return err
	}
	if pqErr.Constraint == customerOIDConstraint {
		return ErrCustomerOIDTaken
	}
	return apperrors.New(apperrors.ErrConflict, message)
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
