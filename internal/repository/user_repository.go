package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/eaglebank/mcp-banking/shared/models"
	"github.com/eaglebank/mcp-banking/shared/utils"
)

const userColumns = `id, username, email, password_hash, full_name, customer_oid, is_active, created_at`

// UserRepository reads and writes users. PostgreSQL is the only store.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var fullName, customerOID sql.NullString
	if err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&fullName, &customerOID, &user.IsActive, &user.CreatedAt,
	); err != nil {
		return nil, err
	}
	user.FullName = stringPtr(fullName)
	user.CustomerOID = stringPtr(customerOID)
	return &user, nil
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)`,
		username, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// CreateWithAccounts inserts user and its accounts in one transaction and fills in
// the generated ids and timestamps.
func (r *UserRepository) CreateWithAccounts(ctx context.Context, user *models.User, accounts []*models.Account) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO users (username, email, password_hash, full_name, customer_oid, is_active)
			VALUES ($1, $2, $3, $4, $5, TRUE)
			RETURNING id, is_active, created_at`,
			user.Username, user.Email, user.PasswordHash,
			nullString(user.FullName), nullString(user.CustomerOID),
		).Scan(&user.ID, &user.IsActive, &user.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create user: %w",
				conflict(err, "Username or email already registered"))
		}

		for _, account := range accounts {
			account.UserID = user.ID
			if err := insertAccount(ctx, tx, account); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertAccount(ctx context.Context, tx *sql.Tx, account *models.Account) error {
	if account.ID == "" {
		var seq int64
		if err := tx.QueryRowContext(ctx, `SELECT nextval('account_code_seq')`).Scan(&seq); err != nil {
			return fmt.Errorf("failed to allocate account id: %w", err)
		}
		account.ID = utils.FormatCode(utils.AccountCodePrefix, seq)
	}
	if account.Currency == "" {
		account.Currency = models.DefaultCurrency
	}

	err := tx.QueryRowContext(ctx, `
		INSERT INTO accounts (id, account_name, account_type, balance, currency, is_active, user_id)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		RETURNING is_active, created_at`,
		account.ID, account.AccountName, account.AccountType,
		account.Balance, account.Currency, account.UserID,
	).Scan(&account.IsActive, &account.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account %s: %w", account.ID, err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// SetCustomerOID links a user to its external bank customer record.
func (r *UserRepository) SetCustomerOID(ctx context.Context, userID int64, customerOID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET customer_oid = $2 WHERE id = $1`, userID, customerOID)
	if err != nil {
		return fmt.Errorf("failed to link customer: %w", conflict(err, ErrCustomerOIDTaken.Message))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.New(apperrors.ErrNotFound, "User not found")
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
