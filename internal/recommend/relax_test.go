// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package recommend

import "testing"

func TestRelaxationSchedule(t *testing.T) {
	tests := []struct {
		attempt     int
		minDuration int
		minViews    int64
		monthsBack  int
	}{
		{1, 25, 10000, 1},
		{2, 20, 10000, 2},
		{3, 20, 10000, 3},
		// Out-of-range attempts clamp rather than tighten.
		{0, 25, 10000, 1},
		{4, 20, 10000, 4},
	}
	for _, tt := range tests {
		got := relaxationParamsForAttempt(tt.attempt)
		if got.MinDurationMinutes != tt.minDuration {
			t.Errorf("attempt %d: MinDurationMinutes = %d, want %d", tt.attempt, got.MinDurationMinutes, tt.minDuration)
		}
		if got.MaxDurationMinutes != maxDurationMinutes {
			t.Errorf("attempt %d: MaxDurationMinutes = %d, want %d", tt.attempt, got.MaxDurationMinutes, maxDurationMinutes)
		}
		if got.MinViewCount != tt.minViews {
			t.Errorf("attempt %d: MinViewCount = %d, want %d", tt.attempt, got.MinViewCount, tt.minViews)
		}
		if got.MonthsBack != tt.monthsBack {
			t.Errorf("attempt %d: MonthsBack = %d, want %d", tt.attempt, got.MonthsBack, tt.monthsBack)
		}
	}
}

func TestRelaxationMonotone(t *testing.T) {
	prev := relaxationParamsForAttempt(1)
	for k := 2; k <= 6; k++ {
		cur := relaxationParamsForAttempt(k)
		if cur.MinDurationMinutes > prev.MinDurationMinutes {
			t.Errorf("attempt %d tightened duration floor: %d > %d", k, cur.MinDurationMinutes, prev.MinDurationMinutes)
		}
		if cur.MinViewCount > prev.MinViewCount {
			t.Errorf("attempt %d tightened popularity floor: %d > %d", k, cur.MinViewCount, prev.MinViewCount)
		}
		if cur.MonthsBack < prev.MonthsBack {
			t.Errorf("attempt %d narrowed freshness window: %d < %d", k, cur.MonthsBack, prev.MonthsBack)
		}
		prev = cur
	}
}

func TestModifierProgression(t *testing.T) {
	tests := []struct {
		attempt int
		want    string
	}{
		{1, ""},
		{2, "trending"},
		{3, "popular"},
		{4, "best"},
		{5, "viral"},
		{6, "popular"},
	}
	for _, tt := range tests {
		if got := modifierForAttempt(tt.attempt); got != tt.want {
			t.Errorf("modifierForAttempt(%d) = %q, want %q", tt.attempt, got, tt.want)
		}
	}
}
