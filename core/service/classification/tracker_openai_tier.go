package classification

import (
	"context"
	"time"

	"tracker_server/core/domain"
	"tracker_server/pkg/logger"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

// OpenAITier classifies via a managed chat-completion API with a strict-JSON
// response contract. Any failure mode (transport, open breaker, malformed
// reply) renders the tier unusable rather than failing the run.
type OpenAITier struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
}

// OpenAIConfig holds settings for the managed inference tier.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewOpenAITier creates the managed inference tier. A missing API key yields
// a tier that is permanently unusable, which the chain absorbs.
func NewOpenAITier(cfg OpenAIConfig) *OpenAITier {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var client *openai.Client
	if cfg.APIKey != "" {
		client = openai.NewClient(cfg.APIKey)
	}

	return &OpenAITier{
		client:  client,
		model:   model,
		timeout: timeout,
		cb:      newInferenceBreaker("openai-classify"),
	}
}

func (t *OpenAITier) Name() string {
	return "openai"
}

func (t *OpenAITier) Classify(ctx context.Context, input *Input) (*domain.Classification, error) {
	if t.client == nil {
		return nil, ErrUnusable
	}

	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	content, err := t.cb.Execute(func() (interface{}, error) {
		resp, err := t.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model:       t.model,
			Temperature: 0.2,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: classifyPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: buildPrompt(input),
				},
			},
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return "", nil
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		logger.WithError(err).Warn("OpenAI classification call failed")
		return nil, ErrUnusable
	}

	reply, _ := content.(string)
	if reply == "" {
		return nil, ErrUnusable
	}

	return parseStrictJSON(reply)
}

// newInferenceBreaker builds the circuit breaker shared by inference tiers:
// trips on 5 consecutive failures or a 60% failure ratio over at least 10
// calls, holds open for 30s.
func newInferenceBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker %s: %s -> %s", name, from.String(), to.String())
		},
	})
}

var _ Tier = (*OpenAITier)(nil)
