package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/eaglebank/mcp-banking/shared/models"
)

// TransactionReadRepository serves transaction history from PostgreSQL.
type TransactionReadRepository struct {
	db *sql.DB
}

func NewTransactionReadRepository(db *sql.DB) *TransactionReadRepository {
	return &TransactionReadRepository{db: db}
}

// ListByAccount returns up to limit transactions where the account is either
// side, newest first.
func (r *TransactionReadRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]models.TransactionView, error) {
	query := `
		SELECT id, from_account_id, to_account_id, amount, currency, description,
			transaction_type, status, created_at
		FROM transactions
		WHERE from_account_id = $1 OR to_account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	views := []models.TransactionView{}
	for rows.Next() {
		var view models.TransactionView
		var from, to, description sql.NullString
		if err := rows.Scan(
			&view.ID, &from, &to, &view.Amount, &view.Currency, &description,
			&view.TransactionType, &view.Status, &view.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		view.FromAccountID = stringPtr(from)
		view.ToAccountID = stringPtr(to)
		view.Description = stringPtr(description)
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return views, nil
}
