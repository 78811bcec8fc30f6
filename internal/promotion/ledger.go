package promotion

import (
	"time"

	"github.com/samber/lo"

	"noticeboard/internal/model"
)

// ActionKind selects what ExtendOrClear does to a placement.
type ActionKind string

// Supported actions.
const (
	ActionExtend ActionKind = "extend"
	ActionClear  ActionKind = "clear"
)

// Action is a placement mutation request.
type Action struct {
	Kind ActionKind
	Days int
}

// Extend returns an action that adds days to a placement.
func Extend(days int) Action {
	return Action{Kind: ActionExtend, Days: days}
}

// Clear returns an action that ends a placement immediately.
func Clear() Action {
	return Action{Kind: ActionClear}
}

// ExtendOrClear applies a to placement p of the listing with the given id and
// returns the new collection. Other listings pass through unchanged; an
// unknown id is a no-op.
//
// Extending a running placement adds the days on top of its current expiry,
// so time already paid for is never lost. An absent or expired placement
// starts fresh from now. Clearing is idempotent; extending is not, as every
// call represents a purchase.
func ExtendOrClear(listings []model.Listing, listingID string, p model.Placement, a Action, now time.Time) []model.Listing {
	return lo.Map(listings, func(l model.Listing, _ int) model.Listing {
		if l.ID != listingID {
			return l
		}
		return apply(l, p, a, now)
	})
}

func apply(l model.Listing, p model.Placement, a Action, now time.Time) model.Listing {
	if a.Kind == ActionClear {
		return l.WithUntil(p, nil)
	}
	return l.WithUntil(p, extended(l.Until(p), a.Days, now))
}

func extended(current *time.Time, days int, now time.Time) *time.Time {
	var add time.Duration
	if days > 0 {
		add = time.Duration(days) * Day
	}
	start := now
	if isActive(current, now) {
		start = *current
	}
	until := start.Add(add)
	return &until
}

// Purchase extends placement p of l by the receipt's days and records the
// receipt as the most recent one. The extension and the receipt are always
// applied together.
func Purchase(l model.Listing, p model.Placement, r model.Receipt, now time.Time) model.Listing {
	l = apply(l, p, Extend(r.Days), now)

	receipts := make([]model.Receipt, 0, len(l.Receipts)+1)
	receipts = append(receipts, r)
	receipts = append(receipts, l.Receipts...)
	l.Receipts = receipts
	return l
}

// CleanupResult is the outcome of a CleanupPromotions sweep.
type CleanupResult struct {
	Listings []model.Listing
	// Changed is true iff at least one placement was cleared.
	Changed bool
	// ChangedIDs lists the listings that need to be persisted again.
	ChangedIDs []string
	// Cleared counts cleared placements by kind.
	Cleared map[model.Placement]int
}

// CleanupPromotions sets every placement whose expiry is at or before now
// back to nil, so stored state never carries expired but non-nil instants.
func CleanupPromotions(listings []model.Listing, now time.Time) CleanupResult {
	res := CleanupResult{Cleared: make(map[model.Placement]int)}
	res.Listings = lo.Map(listings, func(l model.Listing, _ int) model.Listing {
		touched := false
		for _, p := range model.Placements {
			until := l.Until(p)
			if until == nil || until.After(now) {
				continue
			}
			l = l.WithUntil(p, nil)
			res.Cleared[p]++
			touched = true
		}
		if touched {
			res.ChangedIDs = append(res.ChangedIDs, l.ID)
		}
		return l
	})
	res.Changed = len(res.ChangedIDs) > 0
	return res
}
