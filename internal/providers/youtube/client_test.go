// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clipforge/podrec/internal/recommend"
)

func TestParseISODurationMinutes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"PT1H23M45S", 83, false},
		{"PT45M", 45, false},
		{"PT2H", 120, false},
		{"PT59S", 0, false},
		{"PT1H0M0S", 60, false},
		{"P1DT2H", 0, true},
		{"PT", 0, true},
		{"1H30M", 0, true},
		{"PTXM", 0, true},
		{"PT30", 0, true},
	}
	for _, tt := range tests {
		got, err := parseISODurationMinutes(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseISODurationMinutes(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseISODurationMinutes(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseISODurationMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClientSearch(t *testing.T) {
	var searchQuery, detailIDs string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/search"):
			searchQuery = r.URL.Query().Get("q")
			if r.URL.Query().Get("videoDuration") != "long" {
				t.Error("expected long-form duration filter")
			}
			if r.URL.Query().Get("order") != "viewCount" {
				t.Error("expected viewCount ordering")
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"items":[{"id":{"videoId":"abc"}},{"id":{"videoId":"def"}}]}`))
		case strings.HasPrefix(r.URL.Path, "/videos"):
			detailIDs = r.URL.Query().Get("id")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"items":[
				{"id":"abc","snippet":{"title":"Deep Dive","channelTitle":"The Show","publishedAt":"2025-07-01T00:00:00Z",
					"thumbnails":{"high":{"url":"https://img/abc"}}},
				 "contentDetails":{"duration":"PT55M"},"statistics":{"viewCount":"120000"}},
				{"id":"def","snippet":{"title":"Broken","channelTitle":"X","publishedAt":"2025-07-01T00:00:00Z"},
				 "contentDetails":{"duration":"garbage"},"statistics":{"viewCount":"5"}}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := New(Config{APIKey: "k", BaseURL: server.URL, RequestsPerSecond: 1000}, zerolog.Nop())

	results, err := c.Search(context.Background(), "podcast 2025 tech", recommend.SearchOptions{
		MinDurationMinutes: 25,
		MaxDurationMinutes: 150,
		MinViewCount:       10000,
		MonthsBack:         1,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if searchQuery != "podcast 2025 tech" {
		t.Errorf("query sent = %q", searchQuery)
	}
	if detailIDs != "abc,def" {
		t.Errorf("detail ids = %q", detailIDs)
	}

	// The unparsable item is skipped, not fatal.
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.ID != "abc" || r.DurationMinutes != 55 || r.ViewCount != 120000 {
		t.Errorf("result = %+v", r)
	}
	if r.URL != "https://www.youtube.com/watch?v=abc" {
		t.Errorf("URL = %q", r.URL)
	}
	if r.Creator != "The Show" {
		t.Errorf("Creator = %q", r.Creator)
	}
}

func TestClientSearchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"quotaExceeded"}}`))
	}))
	defer server.Close()

	c := New(Config{APIKey: "k", BaseURL: server.URL, RequestsPerSecond: 1000}, zerolog.Nop())
	_, err := c.Search(context.Background(), "q", recommend.SearchOptions{})
	if err == nil {
		t.Fatal("expected error from 403 response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error = %v", err)
	}
}

func TestClientSearchEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	c := New(Config{APIKey: "k", BaseURL: server.URL, RequestsPerSecond: 1000}, zerolog.Nop())
	results, err := c.Search(context.Background(), "q", recommend.SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}
