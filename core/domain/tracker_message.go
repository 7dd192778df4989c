package domain

import (
	"encoding/base64"
	"regexp"
	"strings"
)

// Header is a single message header.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MessagePart is one node of a message's MIME-like body tree. A leaf carries
// base64url-encoded content with a media type; a branch carries ordered
// child parts.
type MessagePart struct {
	MimeType string         `json:"mime_type"`
	Data     string         `json:"data,omitempty"`
	Parts    []*MessagePart `json:"parts,omitempty"`
}

// RawMessage is the provider's transient message representation.
type RawMessage struct {
	ID      string       `json:"id"`
	Snippet string       `json:"snippet"`
	Headers []Header     `json:"headers"`
	Payload *MessagePart `json:"payload"`
}

// Header returns the value of the first header matching name,
// case-insensitively. Missing headers return "".
func (m *RawMessage) Header(name string) string {
	for _, h := range m.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// StripHTML removes markup tags and collapses whitespace.
func StripHTML(html string) string {
	text := htmlTagPattern.ReplaceAllString(html, " ")
	return strings.Join(strings.Fields(text), " ")
}

// ExtractText decodes the part tree into plain text. The immediate body is
// preferred; HTML bodies are stripped of tags. A part without an inline body
// is searched depth-first, earlier children winning. Returns "" when nothing
// decodes.
func (p *MessagePart) ExtractText() string {
	if p == nil {
		return ""
	}

	if p.Data != "" {
		decoded, err := decodeBase64URL(p.Data)
		if err != nil {
			return ""
		}
		if p.MimeType == "text/html" {
			return StripHTML(decoded)
		}
		return decoded
	}

	for _, part := range p.Parts {
		if text := part.ExtractText(); text != "" {
			return text
		}
	}

	return ""
}

func decodeBase64URL(data string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Gmail omits padding
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return "", err
		}
	}
	return string(decoded), nil
}
