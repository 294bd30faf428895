// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package youtube

import (
	"fmt"
	"strconv"
	"strings"
)

// parseISODurationMinutes converts an ISO-8601 duration as returned by the
// Data API (e.g. "PT1H23M45S") into whole minutes, rounding seconds down.
// Date components (days and larger) are rejected; no video runs that long.
func parseISODurationMinutes(s string) (int, error) {
	if !strings.HasPrefix(s, "PT") {
		return 0, fmt.Errorf("unsupported duration %q", s)
	}

	rest := s[2:]
	if rest == "" {
		return 0, fmt.Errorf("empty duration %q", s)
	}

	total := 0
	num := ""
	for _, r := range rest {
		if r >= '0' && r <= '9' {
			num += string(r)
			continue
		}
		if num == "" {
			return 0, fmt.Errorf("malformed duration %q", s)
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			return 0, fmt.Errorf("malformed duration %q: %w", s, err)
		}
		switch r {
		case 'H':
			total += n * 3600
		case 'M':
			total += n * 60
		case 'S':
			total += n
		default:
			return 0, fmt.Errorf("unsupported duration component %q in %q", r, s)
		}
		num = ""
	}
	if num != "" {
		return 0, fmt.Errorf("trailing number in duration %q", s)
	}
	return total / 60, nil
}
