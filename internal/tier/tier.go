// Package tier classifies coverage ratios into coarse display
// buckets. Pure functions only: the renderer maps tiers to colors.
package tier

import "fmt"

// Tier is the coarse bucket a coverage ratio falls into.
type Tier string

// Tier constants.
const (
	// Unrated means there was nothing to rate (total == 0).
	Unrated Tier = "unrated"
	Low     Tier = "low"
	Medium  Tier = "medium"
	High    Tier = "high"
)

// Cuts holds the two ratio cut points separating the tiers:
// ratio < Low → Low, Low <= ratio < High → Medium, ratio >= High → High.
type Cuts struct {
	Low  float64
	High float64
}

// Default is the standard tier boundary set.
var Default = Cuts{Low: 0.50, High: 0.80}

// Original mirrors the thresholds of classic llvm-cov HTML reports.
var Original = Cuts{Low: 0.75, High: 0.90}

// Validate rejects non-monotonic or out-of-range cut points.
func (c Cuts) Validate() error {
	if c.Low <= 0 || c.Low >= 1 {
		return fmt.Errorf("low cut %v outside (0, 1)", c.Low)
	}
	if c.High <= 0 || c.High > 1 {
		return fmt.Errorf("high cut %v outside (0, 1]", c.High)
	}
	if c.Low > c.High {
		return fmt.Errorf("low cut %v above high cut %v", c.Low, c.High)
	}
	return nil
}

// Classify buckets covered/total. A zero total is always Unrated;
// there is no ratio to divide.
func Classify(covered, total uint64, cuts Cuts) Tier {
	if total == 0 {
		return Unrated
	}
	ratio := float64(covered) / float64(total)
	switch {
	case ratio < cuts.Low:
		return Low
	case ratio < cuts.High:
		return Medium
	default:
		return High
	}
}
