// Package promotion implements the boost/sponsor lifecycle of marketplace
// listings: activity predicates, purchase extensions, expiry sweeps and the
// browse ordering that depends on them.
//
// Every function is a pure transform over its inputs. Collections are never
// modified in place; callers replace their stored collection with the result.
package promotion

import (
	"fmt"
	"time"

	"noticeboard/internal/model"
)

// Day is the length of one purchased promotion day.
const Day = 24 * time.Hour

// IsActiveBoost reports whether the marketplace boost of l is running at now.
func IsActiveBoost(l model.Listing, now time.Time) bool {
	return isActive(l.BoostUntil, now)
}

// IsActiveSponsor reports whether the home-feed sponsorship of l is running at now.
func IsActiveSponsor(l model.Listing, now time.Time) bool {
	return isActive(l.SponsorUntil, now)
}

// IsActive reports whether placement p of l is running at now. Unknown
// placements are never active.
func IsActive(l model.Listing, p model.Placement, now time.Time) bool {
	return isActive(l.Until(p), now)
}

func isActive(until *time.Time, now time.Time) bool {
	return until != nil && until.After(now)
}

// RemainingLabel renders the time left until the given expiry, e.g.
// "3d 4h left", "2h 15m left" or "4m 30s left". A nil or past expiry is
// reported as "expired".
func RemainingLabel(until *time.Time, now time.Time) string {
	if !isActive(until, now) {
		return "expired"
	}
	left := until.Sub(now)

	d := int(left / Day)
	h := int(left % Day / time.Hour)
	if d > 0 {
		return fmt.Sprintf("%dd %dh left", d, h)
	}
	m := int(left % time.Hour / time.Minute)
	if h > 0 {
		return fmt.Sprintf("%dh %dm left", h, m)
	}
	s := int(left % time.Minute / time.Second)
	if m == 0 {
		s = max(1, s)
	}
	return fmt.Sprintf("%dm %ds left", m, s)
}
