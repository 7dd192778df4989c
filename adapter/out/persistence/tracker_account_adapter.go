package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tracker_server/core/domain"
	"tracker_server/core/port/out"

	"github.com/jmoiron/sqlx"
)

type accountRow struct {
	UserID            string         `db:"user_id"`
	Provider          string         `db:"provider"`
	ProviderAccountID string         `db:"provider_account_id"`
	Email             string         `db:"email"`
	AccessToken       sql.NullString `db:"access_token"`
	RefreshToken      sql.NullString `db:"refresh_token"`
	ExpiresAt         sql.NullTime   `db:"expires_at"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func (r *accountRow) toDomain() *domain.LinkedAccount {
	acct := &domain.LinkedAccount{
		UserID:            r.UserID,
		Provider:          r.Provider,
		ProviderAccountID: r.ProviderAccountID,
		Email:             r.Email,
		AccessToken:       r.AccessToken.String,
		RefreshToken:      r.RefreshToken.String,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if r.ExpiresAt.Valid {
		acct.ExpiresAt = r.ExpiresAt.Time
	}
	return acct
}

// AccountAdapter implements out.AccountRepository using PostgreSQL.
type AccountAdapter struct {
	db *sqlx.DB
}

// NewAccountAdapter creates a new AccountAdapter.
func NewAccountAdapter(db *sqlx.DB) *AccountAdapter {
	return &AccountAdapter{db: db}
}

// GetByUserAndProvider returns the linked account for a user and provider.
func (a *AccountAdapter) GetByUserAndProvider(ctx context.Context, userID, provider string) (*domain.LinkedAccount, error) {
	var row accountRow
	query := `
		SELECT user_id, provider, provider_account_id, email,
		       access_token, refresh_token, expires_at, created_at, updated_at
		FROM linked_accounts
		WHERE user_id = $1 AND provider = $2
		LIMIT 1`

	if err := a.db.GetContext(ctx, &row, query, userID, provider); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// UpdateTokens persists a refreshed access token and its expiry.
func (a *AccountAdapter) UpdateTokens(ctx context.Context, userID, provider, providerAccountID, accessToken string, expiresAt time.Time) error {
	query := `
		UPDATE linked_accounts
		SET access_token = $1, expires_at = $2, updated_at = $3
		WHERE user_id = $4 AND provider = $5 AND provider_account_id = $6`

	res, err := a.db.ExecContext(ctx, query,
		accessToken, expiresAt, time.Now(), userID, provider, providerAccountID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Upsert creates or replaces a linked account's credential set.
func (a *AccountAdapter) Upsert(ctx context.Context, account *domain.LinkedAccount) error {
	query := `
		INSERT INTO linked_accounts (user_id, provider, provider_account_id, email,
		                             access_token, refresh_token, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (user_id, provider, provider_account_id) DO UPDATE
		SET email = EXCLUDED.email,
		    access_token = EXCLUDED.access_token,
		    refresh_token = EXCLUDED.refresh_token,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = now()`

	_, err := a.db.ExecContext(ctx, query,
		account.UserID, account.Provider, account.ProviderAccountID, account.Email,
		account.AccessToken, account.RefreshToken, account.ExpiresAt)
	return err
}

// Ensure AccountAdapter implements out.AccountRepository
var _ out.AccountRepository = (*AccountAdapter)(nil)
