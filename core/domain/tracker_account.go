package domain

import "time"

// Provider identifiers for linked mailbox accounts.
const (
	ProviderGoogle = "google"
)

// LinkedAccount holds the OAuth credential set tying a user to a mailbox
// provider. AccessToken is short-lived; RefreshToken may be absent when the
// user authorized without offline access.
type LinkedAccount struct {
	UserID            string    `json:"user_id"`
	Provider          string    `json:"provider"`
	ProviderAccountID string    `json:"provider_account_id"`
	Email             string    `json:"email"`
	AccessToken       string    `json:"-"`
	RefreshToken      string    `json:"-"`
	ExpiresAt         time.Time `json:"expires_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
