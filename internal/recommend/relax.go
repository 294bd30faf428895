// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package recommend

// maxDurationMinutes is fixed across all attempts; only the floor relaxes.
const maxDurationMinutes = 150

// relaxationParamsForAttempt returns the search constraints for relaxation
// attempt k (1-based). Each attempt loosens the duration floor and the
// popularity floor and widens the freshness window:
//
//	k=1: >=25 min, >=10k views, 1 month back
//	k=2: >=20 min, >=10k views, 2 months back
//	k=3: >=20 min, >=10k views, 3 months back
//
// The formulas keep the schedule monotone: minimum duration is
// max(20, 30-5k) and the popularity floor is max(10000, 100000/10^k).
// The emergency search path reuses attempt 3, the loosest setting.
func relaxationParamsForAttempt(k int) SearchOptions {
	if k < 1 {
		k = 1
	}

	minDuration := 30 - 5*k
	if minDuration < 20 {
		minDuration = 20
	}

	pow := int64(1)
	for i := 0; i < k; i++ {
		pow *= 10
	}
	minViews := 100000 / pow
	if minViews < 10000 {
		minViews = 10000
	}

	return SearchOptions{
		MinDurationMinutes: minDuration,
		MaxDurationMinutes: maxDurationMinutes,
		MinViewCount:       minViews,
		MonthsBack:         k,
	}
}

// queryModifiers diversifies successive attempts within one run. Attempt 1
// uses the plain query, attempt 2 "trending", and later attempts rotate
// through the remaining variants.
var queryModifiers = []string{"", "trending", "popular", "best", "viral"}

// modifierForAttempt returns the query modifier for attempt k (1-based).
func modifierForAttempt(k int) string {
	switch {
	case k <= 1:
		return queryModifiers[0]
	case k == 2:
		return queryModifiers[1]
	default:
		return queryModifiers[2+(k-3)%3]
	}
}
