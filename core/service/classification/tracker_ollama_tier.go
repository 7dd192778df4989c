package classification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tracker_server/core/domain"
	"tracker_server/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"
)

// OllamaTier classifies via a locally-hosted generate API using the same
// strict-JSON contract as the managed tier.
type OllamaTier struct {
	baseURL    string
	model      string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
}

// OllamaConfig holds settings for the local inference tier.
type OllamaConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewOllamaTier creates the local inference tier.
func NewOllamaTier(cfg OllamaConfig) *OllamaTier {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := cfg.Model
	if model == "" {
		model = "llama3.1:8b"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &OllamaTier{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cb: newInferenceBreaker("ollama-classify"),
	}
}

func (t *OllamaTier) Name() string {
	return "ollama"
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (t *OllamaTier) Classify(ctx context.Context, input *Input) (*domain.Classification, error) {
	content, err := t.cb.Execute(func() (interface{}, error) {
		return t.generate(ctx, buildPrompt(input))
	})
	if err != nil {
		logger.WithError(err).Warn("Ollama classification call failed")
		return nil, ErrUnusable
	}

	reply, _ := content.(string)
	if reply == "" {
		return nil, ErrUnusable
	}

	return parseStrictJSON(reply)
}

func (t *OllamaTier) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  t.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("generate API returned %d: %s", resp.StatusCode, string(body))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	return decoded.Response, nil
}

var _ Tier = (*OllamaTier)(nil)
