package prediction

import (
	"math"

	"github.com/kilianp07/pilgrimcast/core/model"
)

// DefaultSpread is the relative half-width of the confidence band.
const DefaultSpread = 0.15

// Interval returns floor(p*(1-spread)) and floor(p*(1+spread)). The band is a
// fixed fraction of the post-rule value and carries no calibration guarantee.
func Interval(p int, spread float64) model.ConfidenceInterval {
	f := float64(p)
	return model.ConfidenceInterval{
		Lower: int(math.Floor(f * (1 - spread))),
		Upper: int(math.Floor(f * (1 + spread))),
	}
}
