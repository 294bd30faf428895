// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

// Command server runs the Podrec recommendation service: it wires the
// Badger store, the YouTube and Gemini providers, the recommendation
// pipeline, and the HTTP API under a supervisor tree.
package main
