// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

// Package youtube implements the search provider against the YouTube Data
// API v3. One Search call is a search.list round trip for candidate IDs
// followed by a videos.list round trip for detail metadata, wrapped in a
// circuit breaker and a client-side rate limiter.
package youtube
