package spc

import (
	"encoding/json"
	"math"
)

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Finite returns nil for a missing, NaN or infinite value
func Finite(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return finite(*v)
}

// MarshalJSON drops capability indices that degenerated to ±Inf or NaN
func (r StatsResult) MarshalJSON() ([]byte, error) {
	type alias StatsResult
	out := alias(r)
	out.Cp = Finite(r.Cp)
	out.Cpk = Finite(r.Cpk)
	return json.Marshal(out)
}

// MarshalJSON writes an infinite F statistic as null
func (r AnovaResult) MarshalJSON() ([]byte, error) {
	type alias AnovaResult
	return json.Marshal(struct {
		alias
		FStatistic *float64 `json:"f_statistic"`
	}{
		alias:      alias(r),
		FStatistic: finite(r.FStatistic),
	})
}
