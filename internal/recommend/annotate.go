// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// LLMAnnotator generates per-video recommendation reasoning through the
// language model. It satisfies Annotator.
type LLMAnnotator struct {
	llm    LLM
	logger zerolog.Logger
}

// NewLLMAnnotator creates an annotator over the given model channel.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLLMAnnotator(llm LLM, logger zerolog.Logger) *LLMAnnotator {
	return &LLMAnnotator{
		llm:    llm,
		logger: logger.With().Str("component", "annotate").Logger(),
	}
}

// Annotate asks the model for a one-sentence justification tying the video
// to the topic. Errors propagate to the caller, which substitutes
// FallbackReasoning; annotation never blocks delivery.
func (a *LLMAnnotator) Annotate(ctx context.Context, video VideoSearchResult, topic string) (string, error) {
	if a.llm == nil {
		return "", fmt.Errorf("no language model configured")
	}
	prompt := fmt.Sprintf(
		`In one sentence, explain why the podcast episode "%s" by %s is a good recommendation for someone interested in %s.
Respond with the sentence only.`,
		video.Title, video.Creator, topic)

	out, err := a.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("annotate %s: %w", video.ID, err)
	}
	reasoning := strings.TrimSpace(strings.Trim(strings.TrimSpace(out), "\"'`"))
	if reasoning == "" {
		return "", fmt.Errorf("annotate %s: empty model output", video.ID)
	}
	return reasoning, nil
}

// FallbackReasoning is the deterministic justification used when
// annotation fails or no annotator is configured.
func FallbackReasoning(video VideoSearchResult, topic string) string {
	return fmt.Sprintf("A %d-minute episode from %s with %s views, covering %s.",
		video.DurationMinutes, video.Creator, formatViewCount(video.ViewCount), topic)
}

// formatViewCount renders a view count compactly, e.g. 1.2M or 340K.
func formatViewCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return strings.TrimSuffix(fmt.Sprintf("%.1f", float64(n)/1_000_000), ".0") + "M"
	case n >= 1_000:
		return strings.TrimSuffix(fmt.Sprintf("%.1f", float64(n)/1_000), ".0") + "K"
	default:
		return fmt.Sprintf("%d", n)
	}
}
