// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestSynthesizeUsesModelOutput(t *testing.T) {
	llm := &fakeLLM{response: "podcast 2025 ai breakthroughs"}
	s := NewSynthesizer(llm, zerolog.Nop())

	got := s.Synthesize(context.Background(), "AI", "English")
	if !strings.HasPrefix(got, "podcast 2025 ai breakthroughs") {
		t.Errorf("Synthesize = %q", got)
	}
	if !strings.Contains(got, "-hindi -india") {
		t.Errorf("English query missing negative terms: %q", got)
	}
	if len(llm.prompts) != 1 {
		t.Fatalf("model called %d times", len(llm.prompts))
	}
	if !strings.Contains(llm.prompts[0], "podcast 2025") {
		t.Errorf("prompt missing seed term: %q", llm.prompts[0])
	}
}

func TestSynthesizeIndonesianSkipsNegativeTerms(t *testing.T) {
	llm := &fakeLLM{response: "podcast 2025 teknologi terbaru"}
	s := NewSynthesizer(llm, zerolog.Nop())

	got := s.Synthesize(context.Background(), "Teknologi", "Indonesian")
	if strings.Contains(got, "-hindi") {
		t.Errorf("Indonesian query must not carry negative terms: %q", got)
	}
}

func TestSynthesizeFallbacks(t *testing.T) {
	tests := []struct {
		name string
		llm  LLM
	}{
		{"nil model", nil},
		{"model error", &fakeLLM{err: errors.New("quota exceeded")}},
		{"empty output", &fakeLLM{response: "   \n  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSynthesizer(tt.llm, zerolog.Nop())
			got := s.Synthesize(context.Background(), "Deep Work", "English")
			want := "podcast 2025 deep work -hindi -india"
			if got != want {
				t.Errorf("Synthesize = %q, want %q", got, want)
			}
		})
	}
}

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "podcast 2025 tech", "podcast 2025 tech"},
		{"quoted", `"podcast 2025 tech"`, "podcast 2025 tech"},
		{"multiline takes first", "podcast 2025 tech\nsecond line", "podcast 2025 tech"},
		{"leading blank lines", "\n\n  podcast 2025 tech  ", "podcast 2025 tech"},
		{"empty", "  \n \n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeQuery(tt.in); got != tt.want {
				t.Errorf("sanitizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAnnotatorFallsBackOnFailure(t *testing.T) {
	a := NewLLMAnnotator(&fakeLLM{err: errors.New("unavailable")}, zerolog.Nop())
	_, err := a.Annotate(context.Background(), VideoSearchResult{ID: "x"}, "tech")
	if err == nil {
		t.Fatal("expected error from failed annotation")
	}
}

func TestAnnotatorTrimsOutput(t *testing.T) {
	a := NewLLMAnnotator(&fakeLLM{response: "\n \"A sharp deep dive.\" \n"}, zerolog.Nop())
	got, err := a.Annotate(context.Background(), VideoSearchResult{ID: "x", Title: "T", Creator: "C"}, "tech")
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if got != "A sharp deep dive." {
		t.Errorf("Annotate = %q", got)
	}
}

func TestFallbackReasoning(t *testing.T) {
	got := FallbackReasoning(VideoSearchResult{
		Creator:         "The Daily Grind",
		DurationMinutes: 42,
		ViewCount:       1_200_000,
	}, "productivity")
	want := "A 42-minute episode from The Daily Grind with 1.2M views, covering productivity."
	if got != want {
		t.Errorf("FallbackReasoning = %q, want %q", got, want)
	}
}

func TestFormatViewCount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{950, "950"},
		{10_000, "10K"},
		{15_500, "15.5K"},
		{1_000_000, "1M"},
		{2_340_000, "2.3M"},
	}
	for _, tt := range tests {
		if got := formatViewCount(tt.in); got != tt.want {
			t.Errorf("formatViewCount(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
