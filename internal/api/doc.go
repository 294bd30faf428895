// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

/*
Package api provides the HTTP surface of the recommendation service.

Routes:

	GET /api/v1/recommendations?userId=&topic=&language=
	    One recommendation run streamed as Server-Sent Events. Event names
	    mirror the pipeline event types (progress, video, error, done);
	    each data payload is the JSON-encoded event.

	GET /api/v1/health
	    Liveness plus key-value store reachability.

	GET /metrics
	    Prometheus scrape endpoint.

The stream handler deliberately keeps draining the pipeline after a client
disconnect: the run's state commits happen server-side regardless of the
connection's fate.
*/
package api
