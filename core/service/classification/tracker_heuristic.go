package classification

import (
	"context"
	"strings"

	"tracker_server/core/domain"
)

// Keyword tables for the deterministic fallback tier. Matching is substring
// based over the case-folded subject and snippet.
var (
	positiveSignals = []string{
		"application",
		"applied",
		"interview",
		"assessment",
		"offer",
		"rejection",
		"position",
		"role",
		"candidate",
		"resume",
	}

	negativeSignals = []string{
		"sale",
		"discount",
		"promo",
		"order",
		"receipt",
		"newsletter",
		"subscription",
		"shipping",
		"invoice",
		"advert",
		"deal",
	}

	rejectedSignals = []string{"rejected", "not selected", "unfortunately", "declined"}
	acceptedSignals = []string{"offer", "accepted", "congratulations"}
)

// HeuristicTier is the deterministic keyword tier. It is always usable.
type HeuristicTier struct{}

// NewHeuristicTier creates the keyword fallback tier.
func NewHeuristicTier() *HeuristicTier {
	return &HeuristicTier{}
}

func (t *HeuristicTier) Name() string {
	return "heuristic"
}

// Classify gates relevance on the keyword tables and infers status from the
// subject and snippet. Irrelevant messages come back with IsJob false.
func (t *HeuristicTier) Classify(ctx context.Context, input *Input) (*domain.Classification, error) {
	if !IsLikelyJobEmail(input.Subject, input.Snippet) {
		return &domain.Classification{IsJob: false, Status: domain.StatusApplied}, nil
	}
	return &domain.Classification{
		IsJob:  true,
		Status: InferStatus(input.Subject, input.Snippet),
	}, nil
}

// IsLikelyJobEmail reports whether subject+snippet carries at least one
// positive signal and no negative signal.
func IsLikelyJobEmail(subject, snippet string) bool {
	haystack := strings.ToLower(subject + " " + snippet)

	hasPositive := false
	for _, word := range positiveSignals {
		if strings.Contains(haystack, word) {
			hasPositive = true
			break
		}
	}
	if !hasPositive {
		return false
	}

	for _, word := range negativeSignals {
		if strings.Contains(haystack, word) {
			return false
		}
	}
	return true
}

// InferStatus derives a lifecycle status from subject+snippet. Rejection
// keywords are checked before acceptance keywords; the default is applied.
func InferStatus(subject, snippet string) domain.ApplicationStatus {
	haystack := strings.ToLower(subject + " " + snippet)

	for _, word := range rejectedSignals {
		if strings.Contains(haystack, word) {
			return domain.StatusRejected
		}
	}
	for _, word := range acceptedSignals {
		if strings.Contains(haystack, word) {
			return domain.StatusAccepted
		}
	}
	return domain.StatusApplied
}

var _ Tier = (*HeuristicTier)(nil)
