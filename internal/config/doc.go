// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

/*
Package config provides layered application configuration.

Configuration is loaded with koanf in three layers, later layers winning:

 1. Struct defaults (defaultConfig)
 2. An optional YAML file (config.yaml, or CONFIG_PATH)
 3. Environment variables with the PODREC_ prefix

Environment variables map section by section: PODREC_SERVER_PORT sets
server.port, PODREC_YOUTUBE_API_KEY sets youtube.api_key. Slice fields
accept comma-separated values from the environment.

Validation runs once after all layers are merged; a service with an
invalid configuration refuses to start.
*/
package config
