package variance

import (
	"gospc/domain/dataset"
	"gospc/domain/spc"

	"github.com/montanaflynn/stats"
)

// CategoryStats summarizes each level of a factor: count, mean, spread, the
// boxplot five-number summary and the level's contribution to total
// variation, n·(mean−grand)²/SSTotal expressed in percent. Contributions sum to
// η²·100.
func CategoryStats(rows []dataset.Row, factor, outcome string) []spc.CategoryStats {
	d := Decompose(rows, factor, outcome)
	out := make([]spc.CategoryStats, 0, len(d.Groups))
	for _, g := range d.Groups {
		cs := spc.CategoryStats{
			Value:  g.Level.String(),
			Count:  len(g.Values),
			Mean:   g.Mean,
			StdDev: sampleStdDev(g.Values),
		}
		cs.Min, _ = stats.Min(g.Values)
		cs.Max, _ = stats.Max(g.Values)
		cs.Median, _ = stats.Median(g.Values)
		if len(g.Values) == 1 {
			cs.Q1, cs.Q3 = g.Values[0], g.Values[0]
		} else if q, err := stats.Quartile(g.Values); err == nil {
			cs.Q1, cs.Q3 = q.Q1, q.Q3
		}
		if d.SSTotal > 0 {
			diff := g.Mean - d.GrandMean
			cs.Contribution = float64(len(g.Values)) * diff * diff / d.SSTotal * 100
		}
		out = append(out, cs)
	}
	return out
}
