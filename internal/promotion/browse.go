package promotion

import (
	"slices"
	"time"

	"github.com/samber/lo"

	"noticeboard/internal/model"
)

// FeaturedLimit caps the featured strip.
const FeaturedLimit = 10

// SortForBrowse returns a copy of listings ordered for the marketplace:
// active boosts first, then newest first within each group. It must be
// recomputed after every mutation since boost activity depends on now.
func SortForBrowse(listings []model.Listing, now time.Time) []model.Listing {
	out := slices.Clone(listings)
	slices.SortStableFunc(out, func(a, b model.Listing) int {
		ab, bb := IsActiveBoost(a, now), IsActiveBoost(b, now)
		if ab != bb {
			if ab {
				return -1
			}
			return 1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// Featured returns at most limit listings with an active boost, in browse order.
func Featured(listings []model.Listing, now time.Time, limit int) []model.Listing {
	boosted := lo.Filter(SortForBrowse(listings, now), func(l model.Listing, _ int) bool {
		return IsActiveBoost(l, now)
	})
	if limit >= 0 && len(boosted) > limit {
		boosted = boosted[:limit]
	}
	return boosted
}
