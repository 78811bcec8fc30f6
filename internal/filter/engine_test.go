package filter

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"noticeboard/internal/model"
)

var now = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func postIDs(ps []model.Post) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func samplePosts() []model.Post {
	return []model.Post{
		{ID: "alert-1", Category: model.CategoryAlert, Title: "Water outage", Message: "Ward 4 pipes", Author: "Municipality", Timestamp: now.Add(-1 * time.Hour)},
		{ID: "event-1", Category: model.CategoryEvent, Title: "Market day", Message: "Saturday stalls", Author: "Thandi", Timestamp: now.Add(-2 * time.Hour)},
		{ID: "job-1", Category: model.CategoryOpportunity, Title: "Plumber needed", Message: "Fix pipes", Author: "Sipho", Timestamp: now.Add(-30 * time.Minute)},
		{ID: "lost-1", Category: model.CategoryLostFound, Title: "Lost wallet", Message: "Brown leather", Author: "Anna", Timestamp: now.Add(-5 * time.Hour)},
		{ID: "ad-1", Category: model.CategoryAd, Title: "Pizza special", Message: "Two for one", Author: "Luigi", Timestamp: now.Add(-10 * time.Minute), Reactions: model.Reactions{Helpful: 50}},
		{ID: "comm-1", Category: model.CategoryCommunity, Title: "Clean-up crew", Message: "Join us", Author: "Ward 4", Timestamp: now.Add(-3 * time.Hour), CommentCount: 10},
	}
}

func TestParseTab(t *testing.T) {
	tests := []struct {
		in      string
		want    Tab
		wantErr bool
	}{
		{in: "", want: TabAll},
		{in: " Trending ", want: TabTrending},
		{in: "lostfound", want: TabLostFound},
		{in: "events", want: TabEvents},
		{in: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTab(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseTab() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{
			name:  "all tab newest first",
			query: Query{Tab: TabAll},
			want:  []string{"ad-1", "job-1", "alert-1", "event-1", "comm-1", "lost-1"},
		},
		{
			name:  "category tab",
			query: Query{Tab: TabOpportunities},
			want:  []string{"job-1"},
		},
		{
			name:  "dismissed alert hidden outside alerts tab",
			query: Query{Tab: TabAll, Dismissed: map[string]bool{"alert-1": true}},
			want:  []string{"ad-1", "job-1", "event-1", "comm-1", "lost-1"},
		},
		{
			name:  "dismissed alert still listed in alerts tab",
			query: Query{Tab: TabAlerts, Dismissed: map[string]bool{"alert-1": true}},
			want:  []string{"alert-1"},
		},
		{
			name:  "search is case insensitive over title, message and author",
			query: Query{Tab: TabAll, Search: "PIPES"},
			want:  []string{"job-1", "alert-1"},
		},
		{
			name:  "search matches author",
			query: Query{Tab: TabAll, Search: "ward 4"},
			want:  []string{"alert-1", "comm-1"},
		},
		{
			name:  "trending excludes alerts and ads",
			query: Query{Tab: TabTrending},
			want:  []string{"comm-1", "job-1", "event-1", "lost-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(samplePosts(), tt.query, now)
			if diff := cmp.Diff(tt.want, postIDs(got)); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTrendingLimit(t *testing.T) {
	var ps []model.Post
	for i := range 8 {
		ps = append(ps, model.Post{ID: string(rune('a' + i)), Category: model.CategoryCommunity, Timestamp: now, Reactions: model.Reactions{Helpful: i}})
	}
	got := Trending(ps, Query{}, now, TrendingLimit)
	if diff := cmp.Diff([]string{"h", "g", "f", "e", "d"}, postIDs(got)); diff != "" {
		t.Errorf("Trending() mismatch (-want +got):\n%s", diff)
	}
}

func TestHotScore(t *testing.T) {
	fresh := model.Post{Timestamp: now.Add(-10 * time.Minute), Reactions: model.Reactions{Helpful: 1}}
	if diff := cmp.Diff(4.0, HotScore(fresh, now)); diff != "" {
		t.Errorf("posts younger than an hour are not decayed (-want +got):\n%s", diff)
	}
	old := fresh
	old.Timestamp = now.Add(-48 * time.Hour)
	if HotScore(old, now) >= HotScore(fresh, now) {
		t.Error("older post should score lower")
	}
}

func TestQueryPlain(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  bool
	}{
		{name: "zero value", query: Query{}, want: true},
		{name: "all tab", query: Query{Tab: TabAll}, want: true},
		{name: "blank search", query: Query{Tab: TabAll, Search: "  "}, want: true},
		{name: "search", query: Query{Tab: TabAll, Search: "x"}, want: false},
		{name: "category", query: Query{Tab: TabEvents}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.query.Plain()); diff != "" {
				t.Errorf("Plain() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	tests := []struct {
		name     string
		page     int
		size     int
		want     []int
		wantMore bool
	}{
		{name: "first page", page: 1, size: 3, want: []int{1, 2, 3}, wantMore: true},
		{name: "second page is a longer prefix", page: 2, size: 3, want: []int{1, 2, 3, 4, 5, 6}, wantMore: true},
		{name: "past the end", page: 5, size: 3, want: items, wantMore: false},
		{name: "page zero treated as first", page: 0, size: 3, want: []int{1, 2, 3}, wantMore: true},
		{name: "zero size", page: 1, size: 0, want: []int{}, wantMore: true},
		{name: "exactly full", page: 7, size: 1, want: items, wantMore: false},
		{name: "huge page does not overflow", page: math.MaxInt / 10, size: 15, want: items, wantMore: false},
		{name: "max page", page: math.MaxInt, size: 3, want: items, wantMore: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Page(items, tt.page, tt.size)); diff != "" {
				t.Errorf("Page() mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantMore, HasMore(items, tt.page, tt.size)); diff != "" {
				t.Errorf("HasMore() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
