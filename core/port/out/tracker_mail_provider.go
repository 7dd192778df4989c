package out

import (
	"context"

	"tracker_server/core/domain"
)

// MailProvider queries the mailbox API for candidate messages.
type MailProvider interface {
	// ListCandidates returns ids of messages matching the job-application
	// search filter, capped at the configured page size.
	ListCandidates(ctx context.Context, accessToken string) ([]string, error)

	// GetMessage fetches the full representation (headers + body tree) of
	// one message.
	GetMessage(ctx context.Context, accessToken, messageID string) (*domain.RawMessage, error)
}
