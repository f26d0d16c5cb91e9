// Package rules flags out-of-control patterns on an ordered sample
package rules

import "gospc/domain/spc"

// RunLength is the number of consecutive same-side points that signals a shift
const RunLength = 9

// NelsonRule2Violations returns the end index of every window of RunLength
// consecutive points lying strictly on one side of the mean. Overlapping
// windows are each reported, so a run of 12 flags 4 indices. Points equal to
// the mean break a run.
func NelsonRule2Violations(values []float64, mean float64) []int {
	violations := []int{}
	if len(values) < RunLength {
		return violations
	}

	above, below := 0, 0
	for i, v := range values {
		switch {
		case v > mean:
			above++
			below = 0
		case v < mean:
			below++
			above = 0
		default:
			above, below = 0, 0
		}
		if above >= RunLength || below >= RunLength {
			violations = append(violations, i)
		}
	}
	return violations
}

// NelsonRule1Violations returns the indices of points strictly beyond the
// control limits
func NelsonRule1Violations(values []float64, ucl, lcl float64) []int {
	violations := []int{}
	for i, v := range values {
		if v > ucl || v < lcl {
			violations = append(violations, i)
		}
	}
	return violations
}

// Detect runs every rule against a sample and its computed limits
func Detect(values []float64, stats spc.StatsResult) spc.RuleViolations {
	if len(values) == 0 {
		return spc.RuleViolations{BeyondLimits: []int{}, RunOfNine: []int{}}
	}
	return spc.RuleViolations{
		BeyondLimits: NelsonRule1Violations(values, stats.UCL, stats.LCL),
		RunOfNine:    NelsonRule2Violations(values, stats.Mean),
	}
}
