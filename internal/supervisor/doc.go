// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

// Package supervisor builds the suture service tree: a data layer for
// store maintenance and an api layer for the HTTP server, each restarted
// independently on failure. Supervisor events are logged through slog via
// sutureslog.
package supervisor
