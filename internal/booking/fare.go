package booking

import "math"

// Fare computes the total ticket amount from the per-km base fare of
// the (train, class), the trip distance in km and the passenger count.
// It is a pure function of its inputs; rounding happens once on the
// final amount, matching how fares are quoted to the user.  A missing
// fare configuration is rejected upstream with ErrInventoryMissing
// rather than defaulting, so a zero rate never reaches this point
// silently.
func Fare(baseFarePerKM, distanceKM float64, passengers int) int64 {
	return int64(math.Round(baseFarePerKM * distanceKM * float64(passengers)))
}
