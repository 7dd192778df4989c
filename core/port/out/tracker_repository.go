package out

import (
	"context"
	"time"

	"tracker_server/core/domain"
)

// ApplicationRepository persists tracked applications.
type ApplicationRepository interface {
	// InsertIfAbsent inserts the record unless one with the same
	// source_message_id already exists. Returns whether a row was created;
	// a conflict is a silent skip, not an error.
	InsertIfAbsent(ctx context.Context, app *domain.Application) (bool, error)

	// Create inserts a manually added record (no source message).
	Create(ctx context.Context, app *domain.Application) error

	ListByUser(ctx context.Context, userID string) ([]*domain.Application, error)
	UpdateStatus(ctx context.Context, userID string, id int64, status domain.ApplicationStatus) error
	Delete(ctx context.Context, userID string, id int64) error
}

// AccountRepository persists linked mailbox accounts.
type AccountRepository interface {
	GetByUserAndProvider(ctx context.Context, userID, provider string) (*domain.LinkedAccount, error)

	// UpdateTokens persists a refreshed credential, keyed by
	// (user_id, provider, provider_account_id).
	UpdateTokens(ctx context.Context, userID, provider, providerAccountID, accessToken string, expiresAt time.Time) error

	Upsert(ctx context.Context, account *domain.LinkedAccount) error
}

// SyncLocker serializes sync runs per user. Acquire returns false when
// another run holds the lock.
type SyncLocker interface {
	Acquire(ctx context.Context, userID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, userID string) error
}
