package gmail

import (
	"errors"
	"testing"

	"tracker_server/pkg/apperr"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

func TestConvertMessage(t *testing.T) {
	msg := &gmail.Message{
		Id:      "msg-1",
		Snippet: "We received your application",
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Application received"},
				{Name: "From", Value: "jobs@acme.io"},
			},
			Parts: []*gmail.MessagePart{
				{
					MimeType: "text/plain",
					Body:     &gmail.MessagePartBody{Data: "aGVsbG8="},
				},
				{
					MimeType: "text/html",
					Body:     &gmail.MessagePartBody{Data: "PGI-aGk8L2I-"},
				},
			},
		},
	}

	raw := convertMessage(msg)

	if raw.ID != "msg-1" {
		t.Errorf("expected id %q, got %q", "msg-1", raw.ID)
	}
	if raw.Snippet != "We received your application" {
		t.Errorf("unexpected snippet %q", raw.Snippet)
	}
	if got := raw.Header("subject"); got != "Application received" {
		t.Errorf("expected subject header, got %q", got)
	}
	if raw.Payload == nil || len(raw.Payload.Parts) != 2 {
		t.Fatalf("expected payload with 2 parts, got %+v", raw.Payload)
	}
	if raw.Payload.Parts[0].Data != "aGVsbG8=" {
		t.Errorf("unexpected part data %q", raw.Payload.Parts[0].Data)
	}
	if got := raw.Payload.ExtractText(); got != "hello" {
		t.Errorf("expected extracted text %q, got %q", "hello", got)
	}
}

func TestConvertMessageNoPayload(t *testing.T) {
	raw := convertMessage(&gmail.Message{Id: "msg-2", Snippet: "snippet"})
	if raw.Payload != nil {
		t.Errorf("expected nil payload, got %+v", raw.Payload)
	}
	if got := raw.Payload.ExtractText(); got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
}

func TestWrapProviderError(t *testing.T) {
	apiErr := &googleapi.Error{Code: 403, Message: "Rate limit exceeded"}

	err := wrapProviderError(apiErr)
	if !apperr.IsCode(err, apperr.CodeProviderAPIError) {
		t.Fatalf("expected %s, got %v", apperr.CodeProviderAPIError, err)
	}

	var appErr *apperr.AppError
	if !errors.As(err, &appErr) {
		t.Fatal("expected *apperr.AppError")
	}
	if appErr.Status != 502 {
		t.Errorf("expected status 502, got %d", appErr.Status)
	}
	if appErr.Details["upstream_status"] != 403 {
		t.Errorf("expected upstream_status 403, got %v", appErr.Details["upstream_status"])
	}

	plain := errors.New("dial timeout")
	if got := wrapProviderError(plain); got != plain {
		t.Errorf("expected non-API error passed through, got %v", got)
	}
}

func TestNewProviderDefaults(t *testing.T) {
	if p := NewProvider(0); p.maxResults != DefaultMaxResults {
		t.Errorf("expected default max results %d, got %d", DefaultMaxResults, p.maxResults)
	}
	if p := NewProvider(50); p.maxResults != 50 {
		t.Errorf("expected max results 50, got %d", p.maxResults)
	}
}
