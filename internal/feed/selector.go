// Package feed selects sponsored listings and merges them into organic feeds.
package feed

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"noticeboard/internal/model"
	"noticeboard/internal/promotion"
)

// DefaultMaxSponsored is how many sponsors a single feed shows.
const DefaultMaxSponsored = 3

// DefaultSlots are the feed positions sponsored listings are inserted at.
var DefaultSlots = []int{2, 9, 16}

// SeenSet holds listing ids already shown during one browsing session. It is
// owned by the caller and never persisted.
type SeenSet map[string]struct{}

// Add records ids as seen.
func (s SeenSet) Add(ids ...string) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Has reports whether id was seen.
func (s SeenSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// SelectOptions parameterise PickSponsored.
type SelectOptions struct {
	Now  time.Time
	Max  int
	Seen SeenSet
}

// PickSponsored returns up to opts.Max listings with a running sponsorship
// that were not seen yet, newest first. The result depends only on its
// inputs, so repeated calls with the same arguments agree.
func PickSponsored(listings []model.Listing, opts SelectOptions) []model.Listing {
	if opts.Max <= 0 {
		return nil
	}

	pool := lo.Filter(listings, func(l model.Listing, _ int) bool {
		return promotion.IsActiveSponsor(l, opts.Now) && !opts.Seen.Has(l.ID)
	})
	slices.SortStableFunc(pool, func(a, b model.Listing) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	if len(pool) > opts.Max {
		pool = pool[:opts.Max]
	}
	return pool
}
