// Package sync implements the mailbox ingestion pipeline.
package sync

import (
	"context"
	"errors"
	"time"

	"tracker_server/adapter/out/persistence"
	"tracker_server/core/domain"
	"tracker_server/core/port/out"
	"tracker_server/core/service/auth"
	"tracker_server/core/service/classification"
	"tracker_server/pkg/apperr"
	"tracker_server/pkg/logger"
)

// Result summarizes one sync run.
type Result struct {
	Created int `json:"created"`
	Checked int `json:"checked"`
}

// Service orchestrates one sync pass: resolve account, ensure token, list
// candidates, then extract/classify/merge each message sequentially.
type Service struct {
	accounts out.AccountRepository
	apps     out.ApplicationRepository
	provider out.MailProvider
	tokens   *auth.TokenService
	pipeline *classification.Pipeline
	locks    out.SyncLocker
	lockTTL  time.Duration
}

// NewService creates a sync Service.
func NewService(
	accounts out.AccountRepository,
	apps out.ApplicationRepository,
	provider out.MailProvider,
	tokens *auth.TokenService,
	pipeline *classification.Pipeline,
	locks out.SyncLocker,
	lockTTL time.Duration,
) *Service {
	if locks == nil {
		locks = persistence.NoopSyncLock{}
	}
	if lockTTL == 0 {
		lockTTL = 5 * time.Minute
	}
	return &Service{
		accounts: accounts,
		apps:     apps,
		provider: provider,
		tokens:   tokens,
		pipeline: pipeline,
		locks:    locks,
		lockTTL:  lockTTL,
	}
}

// Run executes one sync pass for the user. Failures before the per-message
// loop abort the run; a single message's failure is logged, counted as
// checked and skipped.
func (s *Service) Run(ctx context.Context, userID string) (*Result, error) {
	acquired, err := s.locks.Acquire(ctx, userID, s.lockTTL)
	if err != nil {
		return nil, apperr.Internal("sync lock unavailable").WithError(err)
	}
	if !acquired {
		return nil, apperr.SyncInProgress()
	}
	defer func() {
		if err := s.locks.Release(context.WithoutCancel(ctx), userID); err != nil {
			logger.WithError(err).Warn("Failed to release sync lock for user %s", userID)
		}
	}()

	account, err := s.accounts.GetByUserAndProvider(ctx, userID, domain.ProviderGoogle)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, apperr.AccountNotLinked(domain.ProviderGoogle)
		}
		return nil, apperr.DatabaseError("load linked account", err)
	}

	accessToken, err := s.tokens.EnsureAccessToken(ctx, account)
	if err != nil {
		return nil, err
	}

	ids, err := s.provider.ListCandidates(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, id := range ids {
		result.Checked++
		created, err := s.processMessage(ctx, userID, accessToken, id)
		if err != nil {
			logger.WithError(err).
				WithField("message_id", id).
				Warn("Skipping message after pipeline failure")
			continue
		}
		if created {
			result.Created++
		}
	}

	logger.WithFields(map[string]any{
		"user_id": userID,
		"checked": result.Checked,
		"created": result.Created,
	}).Info("Sync run completed")

	return result, nil
}

// processMessage runs extract → classify → merge for one candidate. Returns
// whether a new record was inserted.
func (s *Service) processMessage(ctx context.Context, userID, accessToken, messageID string) (bool, error) {
	msg, err := s.provider.GetMessage(ctx, accessToken, messageID)
	if err != nil {
		return false, err
	}

	input := &classification.Input{
		Subject: msg.Header("Subject"),
		From:    msg.Header("From"),
		Snippet: msg.Snippet,
		Body:    msg.Payload.ExtractText(),
	}

	cls, tier, err := s.pipeline.Classify(ctx, input)
	if err != nil {
		return false, err
	}
	if !cls.IsJob {
		logger.Debug("Message %s discarded by %s tier", messageID, tier)
		return false, nil
	}

	app := mergeRecord(userID, msg, cls)
	created, err := s.apps.InsertIfAbsent(ctx, app)
	if err != nil {
		return false, err
	}
	return created, nil
}
