package dataset

import (
	"math"
	"time"
)

// CorrectionRule rewrites one column for rows of one city recorded at or
// before Cutoff. Rules run before imputation so corrected values feed the means.
type CorrectionRule struct {
	Name      string
	City      string
	Cutoff    time.Time
	Column    Column
	Transform func(float64) float64
}

// Applies reports whether the rule matches r.
func (c CorrectionRule) Applies(r *Record) bool {
	return r.City == c.City && !r.Timestamp.After(c.Cutoff) && r.Value(c.Column) != nil
}

// hanoiCOScale converts Hà Nội CO readings collected on the old source scale.
const hanoiCOScale = 1145

// DefaultCorrections is the correction table applied by Clean. The Hà Nội
// CO cutoff is 2025-03-07 00:00:00 itself: later readings on the 7th are
// already on the new scale and stay untouched.
func DefaultCorrections() []CorrectionRule {
	return []CorrectionRule{
		{
			Name:   "hanoi-co-scale",
			City:   NormalizeCity("Hà Nội"),
			Cutoff: MustDate(2025, time.March, 7).Midnight(),
			Column: ColCO,
			Transform: func(v float64) float64 {
				return Round1(v / hanoiCOScale)
			},
		},
	}
}

// Round1 rounds to one decimal place, half to even.
func Round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
