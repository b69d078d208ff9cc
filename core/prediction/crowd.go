package prediction

import "github.com/kilianp07/pilgrimcast/core/model"

// Crowd level lower bounds, inclusive.
const (
	MediumThreshold   = 2000
	HighThreshold     = 5000
	VeryHighThreshold = 8000
)

// Classify maps a final visitor count to its crowd level.
func Classify(p int) model.CrowdLevel {
	switch {
	case p < MediumThreshold:
		return model.CrowdLow
	case p < HighThreshold:
		return model.CrowdMedium
	case p < VeryHighThreshold:
		return model.CrowdHigh
	default:
		return model.CrowdVeryHigh
	}
}
