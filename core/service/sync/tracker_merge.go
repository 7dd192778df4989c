package sync

import (
	"net/mail"
	"regexp"
	"strings"

	"tracker_server/core/domain"
)

const (
	unknownCompany = "Unknown"
	unknownRole    = "Unknown role"
)

var fromPattern = regexp.MustCompile(`^(.*)<(.+)>`)

// ParseCompany derives a company name from a From header. The display-name
// portion before an angle-bracketed address wins, stripped of surrounding
// quotes; a bare address falls back to its domain label (the segment between
// '@' and the first dot).
func ParseCompany(fromHeader string) string {
	if match := fromPattern.FindStringSubmatch(fromHeader); match != nil {
		displayName := strings.Trim(strings.TrimSpace(match[1]), `"`)
		if displayName != "" {
			return displayName
		}
		return domainLabel(match[2])
	}
	if strings.Contains(fromHeader, "@") {
		return domainLabel(fromHeader)
	}
	if trimmed := strings.TrimSpace(fromHeader); trimmed != "" {
		return trimmed
	}
	return unknownCompany
}

func domainLabel(address string) string {
	_, domain, found := strings.Cut(address, "@")
	if !found || domain == "" {
		return unknownCompany
	}
	label, _, _ := strings.Cut(domain, ".")
	if label == "" {
		return unknownCompany
	}
	return label
}

// mergeRecord maps a classified message onto an application record, applying
// the field-level fallback rules for company, role and creation time.
func mergeRecord(userID string, msg *domain.RawMessage, cls *domain.Classification) *domain.Application {
	subject := msg.Header("Subject")
	from := msg.Header("From")

	company := cls.Company
	if company == "" || strings.EqualFold(company, "unknown") {
		company = ParseCompany(from)
	}
	if company == "" {
		company = unknownCompany
	}

	role := cls.Role
	if role == "" || strings.EqualFold(role, "unknown") {
		role = subject
	}
	if role == "" {
		role = msg.Snippet
	}
	if role == "" {
		role = unknownRole
	}

	app := &domain.Application{
		UserID:          userID,
		Company:         company,
		Role:            role,
		Status:          cls.Status,
		SourceMessageID: msg.ID,
	}

	// A parseable Date header overrides the storage default creation time.
	if parsed, err := mail.ParseDate(msg.Header("Date")); err == nil {
		app.CreatedAt = parsed
	}

	return app
}
