// Package classification implements the tiered message classification chain.
package classification

import (
	"context"
	"errors"
	"strings"

	"tracker_server/core/domain"
	"tracker_server/pkg/logger"

	"github.com/goccy/go-json"
)

// ErrUnusable signals that a tier produced no usable result and the next
// tier should be tried. It is a control signal, not a failure.
var ErrUnusable = errors.New("classification unusable")

// Input carries the message fields a tier classifies on.
type Input struct {
	Subject string `json:"subject"`
	From    string `json:"from"`
	Snippet string `json:"snippet"`
	Body    string `json:"body"`
}

// Tier is one classification strategy. A tier returns ErrUnusable to defer
// to the next tier in the chain.
type Tier interface {
	Name() string
	Classify(ctx context.Context, input *Input) (*domain.Classification, error)
}

// Pipeline tries tiers in order and returns the first usable result along
// with the producing tier's name.
type Pipeline struct {
	tiers []Tier
}

// NewPipeline creates a classification pipeline over the given tiers.
func NewPipeline(tiers ...Tier) *Pipeline {
	return &Pipeline{tiers: tiers}
}

// Classify runs the chain. All-unusable returns ErrUnusable; a chain ending
// in the heuristic tier never does.
func (p *Pipeline) Classify(ctx context.Context, input *Input) (*domain.Classification, string, error) {
	for _, tier := range p.tiers {
		result, err := tier.Classify(ctx, input)
		if err != nil {
			if errors.Is(err, ErrUnusable) {
				logger.Debug("Classification tier %s unusable, falling back", tier.Name())
				continue
			}
			return nil, tier.Name(), err
		}
		return result, tier.Name(), nil
	}
	return nil, "", ErrUnusable
}

// classifyPrompt is the strict-JSON contract sent to inference tiers.
const classifyPrompt = `You classify whether an email is a job application-related message. ` +
	`Respond with strict JSON: ` +
	`{"isJob":true|false,"company":"...","role":"...","status":"applied|accepted|rejected"}. ` +
	`Only set isJob true for actual job application/interview/offer/rejection emails. ` +
	`If isJob is false, keep company/role/status as empty strings.`

func buildPrompt(input *Input) string {
	payload, _ := json.Marshal(input)
	return classifyPrompt + "\n\nEmail:\n" + string(payload)
}

// parseStrictJSON validates an inference reply against the classification
// contract. Malformed JSON, a missing status, or a status outside the
// lifecycle set all yield ErrUnusable. An explicit isJob:false is definitive.
func parseStrictJSON(content string) (*domain.Classification, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var parsed struct {
		IsJob   *bool  `json:"isJob"`
		Company string `json:"company"`
		Role    string `json:"role"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, ErrUnusable
	}

	if parsed.IsJob != nil && !*parsed.IsJob {
		return &domain.Classification{IsJob: false, Status: domain.StatusApplied}, nil
	}

	status := domain.ApplicationStatus(parsed.Status)
	if !status.IsValid() {
		return nil, ErrUnusable
	}

	return &domain.Classification{
		IsJob:   true,
		Company: strings.TrimSpace(parsed.Company),
		Role:    strings.TrimSpace(parsed.Role),
		Status:  status,
	}, nil
}
