// Package filter implements the organic feed matching engine: tab and
// category selection, search, dismissed alerts, trending and paging.
package filter

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"noticeboard/internal/model"
)

// Tab selects which organic posts a feed shows.
type Tab string

// Supported tabs.
const (
	TabAll           Tab = "all"
	TabTrending      Tab = "trending"
	TabAlerts        Tab = "alerts"
	TabOpportunities Tab = "opportunities"
	TabEvents        Tab = "events"
	TabCommunity     Tab = "community"
	TabLostFound     Tab = "lostfound"
)

// TrendingLimit caps the trending tab.
const TrendingLimit = 5

var tabCategory = map[Tab]model.PostCategory{
	TabAlerts:        model.CategoryAlert,
	TabOpportunities: model.CategoryOpportunity,
	TabEvents:        model.CategoryEvent,
	TabCommunity:     model.CategoryCommunity,
	TabLostFound:     model.CategoryLostFound,
}

// ParseTab maps user input to a Tab. Empty input is TabAll.
func ParseTab(s string) (Tab, error) {
	t := Tab(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return TabAll, nil
	}
	if t == TabAll || t == TabTrending {
		return t, nil
	}
	if _, ok := tabCategory[t]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

// Query describes an organic feed request.
type Query struct {
	Tab    Tab
	Search string
	// Dismissed holds alert ids hidden by the reader outside the alerts tab.
	Dismissed map[string]bool
}

// Plain reports whether q is the unfiltered home feed, the only feed that
// carries sponsored entries.
func (q Query) Plain() bool {
	return (q.Tab == "" || q.Tab == TabAll) && strings.TrimSpace(q.Search) == ""
}

// Match checks whether a post belongs to the query's tab and search. The
// trending ranking itself is applied by Apply.
func Match(p model.Post, q Query) bool {
	if want, ok := tabCategory[q.Tab]; ok && p.Category != want {
		return false
	}
	if q.Tab == TabTrending && (p.Category == model.CategoryAlert || p.Category == model.CategoryAd) {
		return false
	}
	if q.Tab != TabAlerts && p.Category == model.CategoryAlert && q.Dismissed[p.ID] {
		return false
	}
	return matchesSearch(p, q.Search)
}

func matchesSearch(p model.Post, search string) bool {
	s := strings.ToLower(strings.TrimSpace(search))
	if s == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), s) ||
		strings.Contains(strings.ToLower(p.Message), s) ||
		strings.Contains(strings.ToLower(p.Author), s)
}

// Apply returns the posts matching q in display order: newest first, or by
// HotScore for the trending tab. The input is not modified.
func Apply(posts []model.Post, q Query, now time.Time) []model.Post {
	if q.Tab == TabTrending {
		return Trending(posts, q, now, TrendingLimit)
	}

	out := lo.Filter(posts, func(p model.Post, _ int) bool { return Match(p, q) })
	slices.SortStableFunc(out, func(a, b model.Post) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}

// Trending returns the limit highest scoring posts matching q.
func Trending(posts []model.Post, q Query, now time.Time, limit int) []model.Post {
	q.Tab = TabTrending

	type scored struct {
		post  model.Post
		score float64
	}
	pool := lo.Map(
		lo.Filter(posts, func(p model.Post, _ int) bool { return Match(p, q) }),
		func(p model.Post, _ int) scored { return scored{post: p, score: HotScore(p, now)} },
	)
	slices.SortStableFunc(pool, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return 0
	})

	top := pool[:max(0, min(limit, len(pool)))]
	return lo.Map(top, func(s scored, _ int) model.Post { return s.post })
}

// HotScore ranks engagement decayed by age in hours (minimum one hour).
func HotScore(p model.Post, now time.Time) float64 {
	hours := math.Max(1, now.Sub(p.Timestamp).Hours())
	engagement := float64(p.CommentCount*2 + p.Reactions.Helpful*3 + 1)
	return engagement / math.Pow(hours, 0.35)
}

// Page returns the first page*size items, the prefix an infinitely
// scrolling list shows after page loads. Pages start at 1. A page past the
// end returns every item.
func Page[T any](items []T, page, size int) []T {
	if size <= 0 {
		return items[:0:0]
	}
	page = max(page, 1)
	n := len(items)
	if page <= n/size {
		n = page * size
	}
	return items[:n:n]
}

// HasMore reports whether items continue past the given page.
func HasMore[T any](items []T, page, size int) bool {
	return len(Page(items, page, size)) < len(items)
}
