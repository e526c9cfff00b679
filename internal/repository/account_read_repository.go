package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/eaglebank/mcp-banking/shared/models"
	sharedredis "github.com/eaglebank/mcp-banking/shared/redis"
	goredis "github.com/redis/go-redis/v9"
)

const (
	accountViewKeyPrefix = "account:view:"
	accountViewTTL       = 5 * time.Minute
	accountViewRedelete  = 500 * time.Millisecond
)

const accountColumns = `id, account_name, account_type, balance, currency, is_active, user_id, created_at`

// AccountReadRepository serves account reads. Redis is a cache-aside layer in
// front of PostgreSQL; with a nil Redis client every read goes to PostgreSQL.
type AccountReadRepository struct {
	db            *sql.DB
	cache         *sharedredis.ViewCache[models.AccountView]
	redeleteAfter time.Duration
}

func NewAccountReadRepository(db *sql.DB, redisClient *goredis.Client) *AccountReadRepository {
	return &AccountReadRepository{
		db:            db,
		cache:         sharedredis.NewViewCache[models.AccountView](redisClient, accountViewKeyPrefix, accountViewTTL),
		redeleteAfter: accountViewRedelete,
	}
}

func scanAccountView(row rowScanner) (*models.AccountView, error) {
	var view models.AccountView
	if err := row.Scan(
		&view.ID, &view.AccountName, &view.AccountType, &view.Balance,
		&view.Currency, &view.IsActive, &view.UserID, &view.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &view, nil
}

// GetByID returns an active account, trying Redis first.
func (r *AccountReadRepository) GetByID(ctx context.Context, id string) (*models.AccountView, error) {
	if view, ok := r.cache.Get(ctx, id); ok && view.IsActive {
		return view, nil
	}

	view, err := r.GetFresh(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cache.Set(ctx, view.ID, view)
	return view, nil
}

// GetFresh reads an active account from PostgreSQL, bypassing Redis.
// Balance reads use it so a just-committed transfer is always visible.
func (r *AccountReadRepository) GetFresh(ctx context.Context, id string) (*models.AccountView, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND is_active = TRUE`, id)
	view, err := scanAccountView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.ErrNotFound, "Account not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return view, nil
}

// ListByUserID returns the user's active accounts ordered by id.
func (r *AccountReadRepository) ListByUserID(ctx context.Context, userID int64) ([]models.AccountView, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 AND is_active = TRUE ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	views := []models.AccountView{}
	for rows.Next() {
		view, err := scanAccountView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		views = append(views, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return views, nil
}

// Invalidate drops cached views after their balances change, then drops them
// again shortly after so a concurrent read cannot leave a pre-commit view behind.
func (r *AccountReadRepository) Invalidate(ctx context.Context, ids ...string) {
	r.cache.Delete(ctx, ids...)
	r.cache.DeleteAfter(ctx, r.redeleteAfter, ids...)
}

// Purge drops every cached account view. Used when the database is reset.
func (r *AccountReadRepository) Purge(ctx context.Context) error {
	return r.cache.Purge(ctx)
}
