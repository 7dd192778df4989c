package classification

import (
	"context"
	"errors"
	"testing"

	"tracker_server/core/domain"
)

type stubTier struct {
	name   string
	result *domain.Classification
	err    error
}

func (s *stubTier) Name() string { return s.name }

func (s *stubTier) Classify(ctx context.Context, input *Input) (*domain.Classification, error) {
	return s.result, s.err
}

func TestPipelineFallsThroughOnUnusable(t *testing.T) {
	want := &domain.Classification{IsJob: true, Status: domain.StatusApplied}
	pipeline := NewPipeline(
		&stubTier{name: "first", err: ErrUnusable},
		&stubTier{name: "second", result: want},
	)

	got, tierName, err := pipeline.Classify(context.Background(), &Input{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tierName != "second" {
		t.Errorf("expected tier %q, got %q", "second", tierName)
	}
	if got != want {
		t.Errorf("expected fallback result, got %+v", got)
	}
}

func TestPipelineStopsAtFirstUsable(t *testing.T) {
	first := &domain.Classification{IsJob: true, Status: domain.StatusAccepted}
	pipeline := NewPipeline(
		&stubTier{name: "first", result: first},
		&stubTier{name: "second", result: &domain.Classification{IsJob: false}},
	)

	got, tierName, err := pipeline.Classify(context.Background(), &Input{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tierName != "first" {
		t.Errorf("expected tier %q, got %q", "first", tierName)
	}
	if got != first {
		t.Errorf("expected first result, got %+v", got)
	}
}

func TestPipelineHardErrorAborts(t *testing.T) {
	hardErr := errors.New("boom")
	pipeline := NewPipeline(
		&stubTier{name: "first", err: hardErr},
		&stubTier{name: "second", result: &domain.Classification{IsJob: true, Status: domain.StatusApplied}},
	)

	_, _, err := pipeline.Classify(context.Background(), &Input{})
	if !errors.Is(err, hardErr) {
		t.Errorf("expected hard error to propagate, got %v", err)
	}
}

func TestPipelineAllUnusable(t *testing.T) {
	pipeline := NewPipeline(&stubTier{name: "only", err: ErrUnusable})

	_, _, err := pipeline.Classify(context.Background(), &Input{})
	if !errors.Is(err, ErrUnusable) {
		t.Errorf("expected ErrUnusable, got %v", err)
	}
}

func TestParseStrictJSON(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		want         *domain.Classification
		wantUnusable bool
	}{
		{
			name:    "valid job classification",
			content: `{"isJob":true,"company":"Acme","role":"Backend Engineer","status":"applied"}`,
			want:    &domain.Classification{IsJob: true, Company: "Acme", Role: "Backend Engineer", Status: domain.StatusApplied},
		},
		{
			name:    "fenced json",
			content: "```json\n{\"isJob\":true,\"company\":\"Acme\",\"role\":\"SRE\",\"status\":\"rejected\"}\n```",
			want:    &domain.Classification{IsJob: true, Company: "Acme", Role: "SRE", Status: domain.StatusRejected},
		},
		{
			name:    "explicit false is definitive",
			content: `{"isJob":false,"company":"","role":"","status":""}`,
			want:    &domain.Classification{IsJob: false, Status: domain.StatusApplied},
		},
		{
			name:    "fields trimmed",
			content: `{"isJob":true,"company":" Acme ","role":" SWE ","status":"accepted"}`,
			want:    &domain.Classification{IsJob: true, Company: "Acme", Role: "SWE", Status: domain.StatusAccepted},
		},
		{
			name:        "malformed json",
			content:     `{"isJob":true,`,
			wantUnusable: true,
		},
		{
			name:        "prose reply",
			content:     "Sure! This looks like a job email.",
			wantUnusable: true,
		},
		{
			name:        "invalid status",
			content:     `{"isJob":true,"company":"Acme","role":"SWE","status":"pending"}`,
			wantUnusable: true,
		},
		{
			name:        "missing status",
			content:     `{"isJob":true,"company":"Acme","role":"SWE"}`,
			wantUnusable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseStrictJSON(tt.content)
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
