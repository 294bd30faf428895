// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package recommend

import (
	"strings"
	"unicode"
)

// OriginFilter excludes candidates whose text strongly indicates a content
// origin the product has chosen not to serve. It combines a keyword
// deny-list with Unicode script detection.
//
// This encodes product policy, not an algorithmic judgment: the keyword
// match is deliberately blunt and carries a known false-positive risk
// (a legitimately relevant episode mentioning a listed word is dropped).
// Both lists are configuration, owned by product, not code.
type OriginFilter struct {
	keywords []string
	scripts  []*unicode.RangeTable
}

// DefaultExcludedKeywords returns the stock deny-list.
func DefaultExcludedKeywords() []string {
	return []string{
		"hindi", "india", "indian", "bollywood",
		"desi", "hindustani", "urdu", "bharat",
	}
}

// DefaultExcludedScripts returns the stock script list.
func DefaultExcludedScripts() []string {
	return []string{"Devanagari"}
}

// NewOriginFilter builds a filter from keyword and script-name lists.
// Unknown script names are ignored; Config.Validate rejects them earlier.
func NewOriginFilter(keywords, scriptNames []string) *OriginFilter {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			lowered = append(lowered, k)
		}
	}

	tables := make([]*unicode.RangeTable, 0, len(scriptNames))
	for _, name := range scriptNames {
		if table, ok := unicode.Scripts[name]; ok {
			tables = append(tables, table)
		}
	}

	return &OriginFilter{keywords: lowered, scripts: tables}
}

// IsLikelyExcludedOrigin reports whether the text matches the deny policy:
// any deny-listed keyword appearing as a whole word, or any rune belonging
// to a deny-listed script.
func (f *OriginFilter) IsLikelyExcludedOrigin(text string) bool {
	if text == "" {
		return false
	}

	lowered := strings.ToLower(text)
	for _, keyword := range f.keywords {
		if containsWord(lowered, keyword) {
			return true
		}
	}

	if len(f.scripts) > 0 {
		for _, r := range text {
			for _, table := range f.scripts {
				if unicode.Is(table, r) {
					return true
				}
			}
		}
	}

	return false
}

// containsWord reports whether word occurs in text bounded by non-letter
// runes, so "india" does not match "indiana" but does match "india's".
func containsWord(text, word string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], word)
		if i < 0 {
			return false
		}
		i += start

		beforeOK := i == 0 || !isWordRune(rune(text[i-1]))
		end := i + len(word)
		afterOK := end >= len(text) || !isWordRune(rune(text[end]))
		if beforeOK && afterOK {
			return true
		}
		start = i + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
