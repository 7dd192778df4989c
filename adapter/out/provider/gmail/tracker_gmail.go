// Package gmail provides the Gmail API adapter.
package gmail

import (
	"context"
	"errors"

	"tracker_server/core/domain"
	"tracker_server/core/port/out"
	"tracker_server/pkg/apperr"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// searchQuery is the fixed filter for candidate messages: a two-year recency
// bound, job-application keyword disjunction, and category exclusions.
const searchQuery = `newer_than:2y (application OR interview OR offer OR rejection OR "thank you for applying" OR "we received") -category:promotions -category:social`

// DefaultMaxResults caps the candidate list at one page.
const DefaultMaxResults = 25

// Provider implements out.MailProvider for Gmail.
type Provider struct {
	maxResults int64
}

// NewProvider creates a new Gmail provider. maxResults <= 0 selects the
// default page size.
func NewProvider(maxResults int64) *Provider {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Provider{maxResults: maxResults}
}

func (p *Provider) service(ctx context.Context, accessToken string) (*gmail.Service, error) {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	return gmail.NewService(ctx, option.WithTokenSource(source))
}

// ListCandidates returns ids of messages matching the search filter. Only the
// first page is requested.
func (p *Provider) ListCandidates(ctx context.Context, accessToken string) ([]string, error) {
	svc, err := p.service(ctx, accessToken)
	if err != nil {
		return nil, wrapProviderError(err)
	}

	resp, err := svc.Users.Messages.List("me").
		Q(searchQuery).
		MaxResults(p.maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapProviderError(err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// GetMessage fetches a message's full representation.
func (p *Provider) GetMessage(ctx context.Context, accessToken, messageID string) (*domain.RawMessage, error) {
	svc, err := p.service(ctx, accessToken)
	if err != nil {
		return nil, wrapProviderError(err)
	}

	msg, err := svc.Users.Messages.Get("me", messageID).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapProviderError(err)
	}

	return convertMessage(msg), nil
}

func convertMessage(msg *gmail.Message) *domain.RawMessage {
	raw := &domain.RawMessage{
		ID:      msg.Id,
		Snippet: msg.Snippet,
	}

	if msg.Payload != nil {
		raw.Headers = make([]domain.Header, 0, len(msg.Payload.Headers))
		for _, h := range msg.Payload.Headers {
			raw.Headers = append(raw.Headers, domain.Header{Name: h.Name, Value: h.Value})
		}
		raw.Payload = convertPart(msg.Payload)
	}

	return raw
}

func convertPart(part *gmail.MessagePart) *domain.MessagePart {
	if part == nil {
		return nil
	}

	converted := &domain.MessagePart{
		MimeType: part.MimeType,
	}
	if part.Body != nil {
		converted.Data = part.Body.Data
	}
	for _, child := range part.Parts {
		converted.Parts = append(converted.Parts, convertPart(child))
	}
	return converted
}

func wrapProviderError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		body := apiErr.Message
		if body == "" {
			body = apiErr.Body
		}
		return apperr.ProviderAPI(apiErr.Code, body)
	}
	return err
}

// Ensure Provider implements out.MailProvider
var _ out.MailProvider = (*Provider)(nil)
