package variance

import (
	"math"

	"gospc/domain/dataset"
	"gospc/domain/spc"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

// MinInteractionSample is the smallest sample for which an interaction fit is attempted
const MinInteractionSample = 5

const rankTolerance = 1e-10

// InteractionStrength measures how much explained variance an A×B interaction
// adds over the main effects of A and B. Both factors are dummy coded; the
// interaction block is every product of an A dummy with a B dummy.
//
// Returns nil when either factor has a single level, fewer than
// MinInteractionSample rows are usable, the outcome is constant, or the full
// model leaves no residual degrees of freedom.
func InteractionStrength(rows []dataset.Row, factorA, factorB, outcome string) *spc.InteractionResult {
	type obs struct {
		a, b string
		y    float64
	}
	var data []obs
	levelsA := map[string]bool{}
	levelsB := map[string]bool{}
	for _, row := range rows {
		y, ok := row.Number(outcome)
		if !ok {
			continue
		}
		a, okA := row.Category(factorA)
		b, okB := row.Category(factorB)
		if !okA || !okB {
			continue
		}
		data = append(data, obs{a: a.String(), b: b.String(), y: y})
		levelsA[a.String()] = true
		levelsB[b.String()] = true
	}

	n := len(data)
	if n < MinInteractionSample || len(levelsA) < 2 || len(levelsB) < 2 {
		return nil
	}

	y := make([]float64, n)
	for i, o := range data {
		y[i] = o.y
	}
	mean, _ := stats.Mean(y)
	ssTotal := SumOfSquares(y, mean)
	if ssTotal == 0 {
		return nil
	}

	dummiesA := dummyLevels(levelsA)
	dummiesB := dummyLevels(levelsB)
	nInter := len(dummiesA) * len(dummiesB)
	pMain := 1 + len(dummiesA) + len(dummiesB)
	pFull := pMain + nInter

	full := mat.NewDense(n, pFull, nil)
	for i, o := range data {
		full.Set(i, 0, 1)
		col := 1
		for _, l := range dummiesA {
			full.Set(i, col, indicator(o.a == l))
			col++
		}
		for _, l := range dummiesB {
			full.Set(i, col, indicator(o.b == l))
			col++
		}
		for _, la := range dummiesA {
			for _, lb := range dummiesB {
				full.Set(i, col, indicator(o.a == la && o.b == lb))
				col++
			}
		}
	}
	mainEffects := full.Slice(0, n, 0, pMain)

	yVec := mat.NewVecDense(n, y)
	mainFit, ok := leastSquares(mainEffects, yVec)
	if !ok {
		return nil
	}
	fullFit, ok := leastSquares(full, yVec)
	if !ok {
		return nil
	}

	dfInteraction := fullFit.rank - mainFit.rank
	dfResidual := n - fullFit.rank
	if dfResidual < 1 {
		return nil
	}

	r2Main := 1 - mainFit.rss/ssTotal
	r2Full := 1 - fullFit.rss/ssTotal
	delta := math.Max(0, r2Full-r2Main)

	result := &spc.InteractionResult{
		FactorA:       factorA,
		FactorB:       factorB,
		RSquaredMain:  r2Main,
		RSquaredFull:  r2Full,
		DeltaRSquared: delta,
		PValue:        1,
		N:             n,
	}
	if dfInteraction < 1 {
		return result
	}

	residualShare := 1 - r2Full
	switch {
	case residualShare <= 0 && delta > 0:
		result.PValue = 0
	case residualShare > 0:
		f := (delta / float64(dfInteraction)) / (residualShare / float64(dfResidual))
		result.PValue = FTestPValue(f, dfInteraction, dfResidual)
	}

	sdY := sampleStdDev(y)
	for j := pMain; j < pFull; j++ {
		sdX := sampleStdDev(mat.Col(nil, j, full))
		if sdX == 0 || sdY == 0 {
			continue
		}
		beta := fullFit.beta.AtVec(j) * sdX / sdY
		if math.Abs(beta) > math.Abs(result.StandardizedBeta) {
			result.StandardizedBeta = beta
		}
	}

	return result
}

type fit struct {
	beta *mat.VecDense
	rss  float64
	rank int
}

// leastSquares solves min ||Xb - y|| with a rank-revealing SVD so that empty
// A×B cells (all-zero columns) do not break the fit
func leastSquares(x mat.Matrix, y *mat.VecDense) (fit, bool) {
	var svd mat.SVD
	if !svd.Factorize(x, mat.SVDThin) {
		return fit{}, false
	}
	rank := svd.Rank(rankTolerance)
	if rank < 1 {
		return fit{}, false
	}

	var beta mat.VecDense
	svd.SolveVecTo(&beta, y, rank)

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	var resid mat.VecDense
	resid.SubVec(y, &fitted)

	return fit{beta: &beta, rss: mat.Dot(&resid, &resid), rank: rank}, true
}

// dummyLevels returns every level except the first (reference) in sorted order
func dummyLevels(levels map[string]bool) []string {
	values := make([]dataset.Value, 0, len(levels))
	for l := range levels {
		values = append(values, dataset.StringValue(l))
	}
	dataset.SortValues(values)
	out := make([]string, 0, len(values)-1)
	for _, v := range values[1:] {
		out = append(out, v.String())
	}
	return out
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
