package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/eaglebank/mcp-banking/shared/models"
)

// SeedUser is a user to insert together with its accounts.
type SeedUser struct {
	User     *models.User
	Accounts []*models.Account
}

// Seeder loads fixed demo data.
type Seeder struct {
	db *sql.DB
}

func NewSeeder(db *sql.DB) *Seeder {
	return &Seeder{db: db}
}

// Seed inserts users, accounts and transactions with their given ids in one
// transaction and moves both code sequences past the highest seeded code.
func (s *Seeder) Seed(ctx context.Context, users []SeedUser, transactions []*models.Transaction) error {
	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, su := range users {
			u := su.User
			err := tx.QueryRowContext(ctx, `
				INSERT INTO users (username, email, password_hash, full_name, customer_oid, is_active)
				VALUES ($1, $2, $3, $4, $5, TRUE)
				RETURNING id, is_active, created_at`,
				u.Username, u.Email, u.PasswordHash, nullString(u.FullName), nullString(u.CustomerOID),
			).Scan(&u.ID, &u.IsActive, &u.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to seed user %s: %w", u.Username, conflict(err, "Demo user already exists"))
			}

			for _, account := range su.Accounts {
				account.UserID = u.ID
				if err := insertAccount(ctx, tx, account); err != nil {
					return err
				}
			}
		}

		for _, txn := range transactions {
			if err := insertTransaction(ctx, tx, txn); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `
			SELECT setval('account_code_seq',
				(SELECT COALESCE(MAX(SUBSTRING(id FROM 4)::BIGINT), 0) + 1 FROM accounts), false)`); err != nil {
			return fmt.Errorf("failed to advance account sequence: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			SELECT setval('transaction_code_seq',
				(SELECT COALESCE(MAX(SUBSTRING(id FROM 4)::BIGINT), 0) + 1 FROM transactions), false)`); err != nil {
			return fmt.Errorf("failed to advance transaction sequence: %w", err)
		}
		return nil
	})
}
