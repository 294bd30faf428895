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

// Synthesizer turns a (topic, language) pair into a search query, using
// the language model for phrasing and falling back to a deterministic
// template when the model is unavailable. A synthesizer failure never
// fails a recommendation run.
type Synthesizer struct {
	llm    LLM
	logger zerolog.Logger
}

// NewSynthesizer creates a query synthesizer. llm may be nil, in which
// case every call takes the fallback path.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSynthesizer(llm LLM, logger zerolog.Logger) *Synthesizer {
	return &Synthesizer{
		llm:    llm,
		logger: logger.With().Str("component", "query").Logger(),
	}
}

// Synthesize produces the search query for a topic and language
// preference. The model is asked for a single short query seeded with
// "podcast 2025"; non-Indonesian queries carry negative terms excluding
// deny-listed origins. Any model failure or unusable output falls back to
// the template query.
func (s *Synthesizer) Synthesize(ctx context.Context, topic, language string) string {
	fallback := fallbackQuery(topic, language)
	if s.llm == nil {
		return fallback
	}

	out, err := s.llm.Generate(ctx, synthesisPrompt(topic, language))
	if err != nil {
		s.logger.Warn().Err(err).Str("topic", topic).Msg("query synthesis failed, using fallback")
		return fallback
	}

	query := sanitizeQuery(out)
	if query == "" {
		s.logger.Warn().Str("topic", topic).Msg("query synthesis returned unusable output, using fallback")
		return fallback
	}
	if langCode(language) != "ID" {
		query = withNegativeTerms(query)
	}
	return query
}

func synthesisPrompt(topic, language string) string {
	lang := "English"
	if langCode(language) == "ID" {
		lang = "Indonesian"
	}
	return fmt.Sprintf(
		`Generate one short video search query for finding full-length podcast episodes about "%s" in %s.
Requirements:
- include the words "podcast 2025"
- target long-form episodes, not clips or shorts
- respond with the query only, no quotes, no explanation`,
		topic, lang)
}

// fallbackQuery is the deterministic query used when synthesis fails.
func fallbackQuery(topic, language string) string {
	query := "podcast 2025 " + strings.ToLower(strings.TrimSpace(topic))
	if langCode(language) != "ID" {
		query = withNegativeTerms(query)
	}
	return query
}

// withNegativeTerms appends search-engine negative terms for the
// deny-listed origins, once.
func withNegativeTerms(query string) string {
	if strings.Contains(query, "-hindi") {
		return query
	}
	return query + " -hindi -india"
}

// sanitizeQuery reduces model output to one usable query line: the first
// non-empty line, stripped of wrapping quotes and markup, bounded in
// length.
func sanitizeQuery(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, "\"'`")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > 200 {
			line = line[:200]
		}
		return line
	}
	return ""
}
