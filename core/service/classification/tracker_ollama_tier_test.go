package classification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tracker_server/core/domain"

	"github.com/goccy/go-json"
)

func TestOllamaTierClassify(t *testing.T) {
	tests := []struct {
		name         string
		reply        string
		statusCode   int
		want         *domain.Classification
		wantUnusable bool
	}{
		{
			name:       "valid reply",
			reply:      `{"isJob":true,"company":"Acme","role":"Backend Engineer","status":"applied"}`,
			statusCode: http.StatusOK,
			want:       &domain.Classification{IsJob: true, Company: "Acme", Role: "Backend Engineer", Status: domain.StatusApplied},
		},
		{
			name:       "not a job email",
			reply:      `{"isJob":false,"company":"","role":"","status":""}`,
			statusCode: http.StatusOK,
			want:       &domain.Classification{IsJob: false, Status: domain.StatusApplied},
		},
		{
			name:         "prose reply",
			reply:        "I think this is a job email",
			statusCode:   http.StatusOK,
			wantUnusable: true,
		},
		{
			name:         "server error",
			reply:        "internal error",
			statusCode:   http.StatusInternalServerError,
			wantUnusable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/generate" {
					t.Errorf("expected path /api/generate, got %s", r.URL.Path)
				}

				var req generateRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("failed to decode request: %v", err)
				}
				if req.Stream {
					t.Error("expected stream=false")
				}
				if req.Model == "" {
					t.Error("expected model to be set")
				}

				if tt.statusCode != http.StatusOK {
					w.WriteHeader(tt.statusCode)
					w.Write([]byte(tt.reply))
					return
				}
				json.NewEncoder(w).Encode(generateResponse{Response: tt.reply})
			}))
			defer server.Close()

			tier := NewOllamaTier(OllamaConfig{BaseURL: server.URL, Model: "test-model"})

			got, err := tier.Classify(context.Background(), &Input{
				Subject: "Your application",
				From:    "jobs@acme.io",
			})
			if tt.wantUnusable {
				if !errors.Is(err, ErrUnusable) {
					t.Fatalf("expected ErrUnusable, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *got != *tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestOllamaTierDefaults(t *testing.T) {
	tier := NewOllamaTier(OllamaConfig{})
	if tier.baseURL != "http://localhost:11434" {
		t.Errorf("expected default base URL, got %q", tier.baseURL)
	}
	if tier.model != "llama3.1:8b" {
		t.Errorf("expected default model, got %q", tier.model)
	}
	if tier.Name() != "ollama" {
		t.Errorf("expected name %q, got %q", "ollama", tier.Name())
	}
}
