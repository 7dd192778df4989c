// Package auth provides the mailbox credential lifecycle.
package auth

import (
	"context"
	"errors"
	"time"

	"tracker_server/core/domain"
	"tracker_server/core/port/out"
	"tracker_server/pkg/apperr"
	"tracker_server/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// refreshMargin is the safety window before expiry within which a token is
// refreshed instead of reused.
const refreshMargin = 60 * time.Second

// defaultTokenLifetime applies when the provider reports no expiry.
const defaultTokenLifetime = 3600 * time.Second

// TokenService ensures a valid access token for a linked account, refreshing
// and persisting it when needed.
type TokenService struct {
	accounts out.AccountRepository
	config   *oauth2.Config
}

// NewTokenService creates a TokenService against Google's token endpoint.
func NewTokenService(clientID, clientSecret string, accounts out.AccountRepository) *TokenService {
	return NewTokenServiceWithConfig(&oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
	}, accounts)
}

// NewTokenServiceWithConfig creates a TokenService with an explicit oauth2
// config. Used directly by tests to point at a fake token endpoint.
func NewTokenServiceWithConfig(config *oauth2.Config, accounts out.AccountRepository) *TokenService {
	return &TokenService{
		accounts: accounts,
		config:   config,
	}
}

// EnsureAccessToken returns a usable access token for the account. A token
// expiring more than 60 seconds from now is reused unchanged; otherwise the
// refresh token is exchanged and the new credential is persisted before
// returning. The account struct is updated in place on refresh.
func (s *TokenService) EnsureAccessToken(ctx context.Context, account *domain.LinkedAccount) (string, error) {
	if account.AccessToken != "" && account.ExpiresAt.After(time.Now().Add(refreshMargin)) {
		return account.AccessToken, nil
	}

	if account.RefreshToken == "" {
		return "", apperr.MissingCredential(account.Provider)
	}

	source := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: account.RefreshToken})
	token, err := source.Token()
	if err != nil {
		return "", apperr.TokenRefreshFailed(account.Provider, refreshErrorDetail(err))
	}
	if token.AccessToken == "" {
		return "", apperr.TokenRefreshFailed(account.Provider, errors.New("no access token in refresh response"))
	}

	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(defaultTokenLifetime)
	}

	if err := s.accounts.UpdateTokens(ctx, account.UserID, account.Provider,
		account.ProviderAccountID, token.AccessToken, expiresAt); err != nil {
		return "", apperr.DatabaseError("persist refreshed token", err)
	}

	account.AccessToken = token.AccessToken
	account.ExpiresAt = expiresAt

	logger.WithField("provider", account.Provider).
		Debug("Access token refreshed for user %s", account.UserID)

	return token.AccessToken, nil
}

// refreshErrorDetail surfaces the provider's error body when the refresh
// exchange itself responded with a non-success payload.
func refreshErrorDetail(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.ErrorDescription != "" {
			return errors.New(retrieveErr.ErrorDescription)
		}
		if retrieveErr.ErrorCode != "" {
			return errors.New(retrieveErr.ErrorCode)
		}
		if len(retrieveErr.Body) > 0 {
			return errors.New(string(retrieveErr.Body))
		}
	}
	return err
}
