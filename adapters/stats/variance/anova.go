package variance

import (
	"math"

	"gospc/domain/dataset"
	"gospc/domain/spc"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// SignificanceLevel is the alpha used to flag significant results
const SignificanceLevel = 0.05

// CalculateAnova runs a one-way ANOVA of outcome by factor. It returns nil when
// the test is not computable: fewer than two groups or no within-group degrees
// of freedom.
func CalculateAnova(rows []dataset.Row, outcome, factor string) *spc.AnovaResult {
	d := Decompose(rows, factor, outcome)
	k := len(d.Groups)
	if k < 2 {
		return nil
	}
	dfBetween := k - 1
	dfWithin := d.N - k
	if dfWithin < 1 {
		return nil
	}

	msBetween := d.SSBetween / float64(dfBetween)
	msWithin := d.SSWithin / float64(dfWithin)

	var f, p float64
	switch {
	case msWithin == 0 && msBetween == 0:
		f, p = 0, 1
	case msWithin == 0:
		f, p = math.Inf(1), 0
	default:
		f = msBetween / msWithin
		p = FTestPValue(f, dfBetween, dfWithin)
	}

	groups := make([]spc.GroupSummary, k)
	for i, g := range d.Groups {
		groups[i] = spc.GroupSummary{
			Name:   g.Level.String(),
			N:      len(g.Values),
			Mean:   g.Mean,
			StdDev: sampleStdDev(g.Values),
		}
	}

	return &spc.AnovaResult{
		Factor:        factor,
		Groups:        groups,
		SSBetween:     d.SSBetween,
		SSWithin:      d.SSWithin,
		DFBetween:     dfBetween,
		DFWithin:      dfWithin,
		MSBetween:     msBetween,
		MSWithin:      msWithin,
		FStatistic:    f,
		PValue:        p,
		IsSignificant: p < SignificanceLevel,
		EtaSquared:    d.EtaSquared(),
	}
}

// FTestPValue computes the upper-tail p-value of an F statistic
func FTestPValue(f float64, df1, df2 int) float64 {
	if df1 <= 0 || df2 <= 0 || math.IsNaN(f) {
		return 1.0
	}
	if math.IsInf(f, 1) {
		return 0
	}
	if f <= 0 {
		return 1.0
	}
	fDist := distuv.F{D1: float64(df1), D2: float64(df2)}
	return fDist.Survival(f)
}

func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil {
		return 0
	}
	return sd
}
