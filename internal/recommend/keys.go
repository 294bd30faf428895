// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package recommend

import "strings"

// Key construction for every store entity the pipeline owns. The formats
// are pinned by tests: operators inspect these keys by hand, so any change
// is a breaking change for cache tooling.
//
//	pool:{topic3}{langCode}   shared video pool, e.g. pool:TecEN
//	seen:{userID}             per-user seen-video set
//	today:{userID}            per-user day cache
//	refresh:{userID}          per-user daily refresh counter
//	lock:{userID}             per-user recommendation lock

// langCode maps a free-form language preference onto the two pool
// language codes. Anything that does not look Indonesian is English.
func langCode(language string) string {
	l := strings.ToLower(strings.TrimSpace(language))
	if l == "id" || strings.Contains(l, "indonesia") {
		return "ID"
	}
	return "EN"
}

// topicPrefix takes the first three runes of the topic (fewer if the topic
// is shorter), preserving case.
func topicPrefix(topic string) string {
	runes := []rune(strings.TrimSpace(topic))
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return string(runes)
}

// poolKey builds the shared pool key for a (topic, language) pair.
func poolKey(topic, language string) string {
	return "pool:" + topicPrefix(topic) + langCode(language)
}

func seenKey(userID string) string {
	return "seen:" + userID
}

func todayKey(userID string) string {
	return "today:" + userID
}

func refreshKey(userID string) string {
	return "refresh:" + userID
}

func lockKey(userID string) string {
	return "lock:" + userID
}
