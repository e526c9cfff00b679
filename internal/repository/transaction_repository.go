package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/eaglebank/mcp-banking/internal/ledger"
	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/eaglebank/mcp-banking/shared/models"
	"github.com/eaglebank/mcp-banking/shared/utils"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// TransferParams describes a validated transfer request.
type TransferParams struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Currency      string
	Description   *string
}

// TransactionWriteRepository applies transfers against PostgreSQL.
type TransactionWriteRepository struct {
	db *sql.DB
}

func NewTransactionWriteRepository(db *sql.DB) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db}
}

// Transfer moves money between two accounts and records a completed transaction,
// all in one database transaction. Rows are locked in id order so two transfers
// over the same pair of accounts cannot deadlock.
func (r *TransactionWriteRepository) Transfer(ctx context.Context, p TransferParams) (*models.Transaction, error) {
	if p.FromAccountID == p.ToAccountID {
		return nil, apperrors.New(apperrors.ErrInvalidRequest, "Cannot transfer to the same account")
	}

	var txn *models.Transaction
	err := WithTx(ctx, r.db, func(tx *sql.Tx) error {
		balances, err := lockBalances(ctx, tx, p.FromAccountID, p.ToAccountID)
		if err != nil {
			return err
		}
		from, ok := balances[p.FromAccountID]
		if !ok {
			return apperrors.New(apperrors.ErrNotFound, "Source account not found")
		}
		to, ok := balances[p.ToAccountID]
		if !ok {
			return apperrors.New(apperrors.ErrNotFound, "Destination account not found")
		}

		newFrom, newTo, err := ledger.Apply(from, to, p.Amount)
		if err != nil {
			return err
		}

		if err := updateBalance(ctx, tx, p.FromAccountID, newFrom); err != nil {
			return err
		}
		if err := updateBalance(ctx, tx, p.ToAccountID, newTo); err != nil {
			return err
		}

		txn = &models.Transaction{
			FromAccountID:   &p.FromAccountID,
			ToAccountID:     &p.ToAccountID,
			Amount:          p.Amount,
			Currency:        p.Currency,
			Description:     p.Description,
			TransactionType: models.TransactionTypeTransfer,
			Status:          models.TransactionStatusCompleted,
		}
		return insertTransaction(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func lockBalances(ctx context.Context, tx *sql.Tx, ids ...string) (map[string]decimal.Decimal, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	rows, err := tx.QueryContext(ctx, `
		SELECT id, balance FROM accounts
		WHERE id = ANY($1) AND is_active = TRUE
		ORDER BY id
		FOR UPDATE`, pq.Array(sorted))
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	defer rows.Close()

	balances := make(map[string]decimal.Decimal, len(ids))
	for rows.Next() {
		var id string
		var balance decimal.Decimal
		if err := rows.Scan(&id, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances[id] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	return balances, nil
}

func updateBalance(ctx context.Context, tx *sql.Tx, id string, balance decimal.Decimal) error {
	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET balance = $2 WHERE id = $1`, id, balance); err != nil {
		return fmt.Errorf("failed to update balance of %s: %w", id, err)
	}
	return nil
}

// insertTransaction allocates a code when txn.ID is empty and fills in CreatedAt.
func insertTransaction(ctx context.Context, tx *sql.Tx, txn *models.Transaction) error {
	if txn.ID == "" {
		var seq int64
		if err := tx.QueryRowContext(ctx, `SELECT nextval('transaction_code_seq')`).Scan(&seq); err != nil {
			return fmt.Errorf("failed to allocate transaction id: %w", err)
		}
		txn.ID = utils.FormatCode(utils.TransactionCodePrefix, seq)
	}
	if txn.Currency == "" {
		txn.Currency = models.DefaultCurrency
	}

	err := tx.QueryRowContext(ctx, `
		INSERT INTO transactions (id, from_account_id, to_account_id, amount, currency,
			description, transaction_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		txn.ID, nullString(txn.FromAccountID), nullString(txn.ToAccountID), txn.Amount,
		txn.Currency, nullString(txn.Description), txn.TransactionType, txn.Status,
	).Scan(&txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}
