package promotion

import "noticeboard/internal/model"

// Per-day rates in minor currency units.
const (
	BoostRateMinor   int64 = 1000
	SponsorRateMinor int64 = 1200
	MinChargeMinor   int64 = 100
)

// DurationOptions are the purchasable promotion lengths in days.
var DurationOptions = []int{7, 14, 30}

// Price returns the amount charged for running placement p for days.
func Price(p model.Placement, days int) int64 {
	rate := BoostRateMinor
	if p == model.PlacementSponsor {
		rate = SponsorRateMinor
	}
	return max(MinChargeMinor, rate*int64(days))
}
