package domain

import (
	"encoding/base64"
	"testing"
)

func encode(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func encodeNoPad(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestRawMessageHeader(t *testing.T) {
	msg := &RawMessage{
		Headers: []Header{
			{Name: "Subject", Value: "Your application"},
			{Name: "From", Value: "jobs@acme.io"},
			{Name: "subject", Value: "duplicate"},
		},
	}

	tests := []struct {
		name   string
		lookup string
		want   string
	}{
		{"exact match", "Subject", "Your application"},
		{"case insensitive", "SUBJECT", "Your application"},
		{"first match wins", "subject", "Your application"},
		{"from header", "from", "jobs@acme.io"},
		{"missing header", "Date", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := msg.Header(tt.lookup); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"tags removed", "<p>Thank you for <b>applying</b></p>", "Thank you for applying"},
		{"whitespace collapsed", "a   b\n\n c", "a b c"},
		{"adjacent tags become separator", "<div>one</div><div>two</div>", "one two"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.input); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		part *MessagePart
		want string
	}{
		{
			name: "nil part",
			part: nil,
			want: "",
		},
		{
			name: "plain text leaf",
			part: &MessagePart{MimeType: "text/plain", Data: encode("interview scheduled")},
			want: "interview scheduled",
		},
		{
			name: "unpadded base64url",
			part: &MessagePart{MimeType: "text/plain", Data: encodeNoPad("offer letter")},
			want: "offer letter",
		},
		{
			name: "html leaf is stripped",
			part: &MessagePart{MimeType: "text/html", Data: encode("<p>We received your application</p>")},
			want: "We received your application",
		},
		{
			name: "earlier child wins",
			part: &MessagePart{
				MimeType: "multipart/alternative",
				Parts: []*MessagePart{
					{MimeType: "text/plain", Data: encode("plain body")},
					{MimeType: "text/html", Data: encode("<p>html body</p>")},
				},
			},
			want: "plain body",
		},
		{
			name: "empty child skipped",
			part: &MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*MessagePart{
					{MimeType: "text/plain"},
					{MimeType: "text/plain", Data: encode("second part")},
				},
			},
			want: "second part",
		},
		{
			name: "nested recursion",
			part: &MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*MessagePart{
					{
						MimeType: "multipart/alternative",
						Parts: []*MessagePart{
							{MimeType: "text/plain", Data: encode("deep body")},
						},
					},
				},
			},
			want: "deep body",
		},
		{
			name: "invalid base64",
			part: &MessagePart{MimeType: "text/plain", Data: "!!!not-base64!!!"},
			want: "",
		},
		{
			name: "nothing decodes",
			part: &MessagePart{MimeType: "multipart/mixed", Parts: []*MessagePart{{}}},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.part.ExtractText(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
