// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

// Package gemini implements the language-model channel against the Gemini
// generateContent API, used for query synthesis and per-video reasoning.
// Failures are expected and recoverable; every caller carries a
// deterministic fallback.
package gemini
