// Package variance decomposes outcome variation by categorical factors
package variance

import (
	"gospc/domain/dataset"

	"github.com/montanaflynn/stats"
)

// Group is the outcome sample of one factor level
type Group struct {
	Level  dataset.Value
	Values []float64
	Mean   float64
}

// Decomposition splits total variation into between-group and within-group parts
type Decomposition struct {
	N         int
	GrandMean float64
	SSTotal   float64
	SSBetween float64
	SSWithin  float64
	Groups    []Group
}

// EtaSquared is SSBetween/SSTotal, or 0 when there is no variation
func (d Decomposition) EtaSquared() float64 {
	if d.SSTotal == 0 {
		return 0
	}
	return d.SSBetween / d.SSTotal
}

// Decompose groups the outcome by factor level. Rows lacking a numeric
// outcome or a factor value are excluded.
func Decompose(rows []dataset.Row, factor, outcome string) Decomposition {
	return decomposeObservations(dataset.Observations(rows, factor, outcome))
}

func decomposeObservations(obs []dataset.Observation) Decomposition {
	d := Decomposition{N: len(obs)}
	if len(obs) == 0 {
		return d
	}

	index := make(map[string]int)
	all := make([]float64, len(obs))
	for i, o := range obs {
		all[i] = o.Y
		key := o.Level.String()
		gi, ok := index[key]
		if !ok {
			gi = len(d.Groups)
			index[key] = gi
			d.Groups = append(d.Groups, Group{Level: o.Level})
		}
		d.Groups[gi].Values = append(d.Groups[gi].Values, o.Y)
	}
	sortGroups(d.Groups)

	d.GrandMean, _ = stats.Mean(all)
	d.SSTotal = SumOfSquares(all, d.GrandMean)

	for i := range d.Groups {
		g := &d.Groups[i]
		g.Mean, _ = stats.Mean(g.Values)
		diff := g.Mean - d.GrandMean
		d.SSBetween += float64(len(g.Values)) * diff * diff
		d.SSWithin += SumOfSquares(g.Values, g.Mean)
	}

	return d
}

func sortGroups(groups []Group) {
	levels := make([]dataset.Value, len(groups))
	byKey := make(map[string]Group, len(groups))
	for i, g := range groups {
		levels[i] = g.Level
		byKey[g.Level.String()] = g
	}
	dataset.SortValues(levels)
	for i, l := range levels {
		groups[i] = byKey[l.String()]
	}
}

// SumOfSquares is the sum of squared deviations from center
func SumOfSquares(values []float64, center float64) float64 {
	ss := 0.0
	for _, v := range values {
		d := v - center
		ss += d * d
	}
	return ss
}

// TotalSumOfSquares is the outcome's variation around its own mean
func TotalSumOfSquares(rows []dataset.Row, outcome string) float64 {
	sample := dataset.Sample(rows, outcome)
	if len(sample) == 0 {
		return 0
	}
	mean, _ := stats.Mean(sample)
	return SumOfSquares(sample, mean)
}

// EtaSquared is the share of outcome variation explained by the factor's
// levels, in [0, 1]. Returns 0 when the outcome is constant.
func EtaSquared(rows []dataset.Row, factor, outcome string) float64 {
	return Decompose(rows, factor, outcome).EtaSquared()
}
