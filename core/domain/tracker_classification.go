package domain

// Classification is the outcome of classifying one mailbox message. Empty
// Company/Role mean "unknown" and defer to field-level fallback when the
// record is merged.
type Classification struct {
	IsJob   bool              `json:"isJob"`
	Company string            `json:"company"`
	Role    string            `json:"role"`
	Status  ApplicationStatus `json:"status"`
}
