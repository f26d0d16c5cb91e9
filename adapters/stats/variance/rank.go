package variance

import (
	"context"
	"sort"

	"gospc/domain/dataset"
	"gospc/domain/spc"

	"golang.org/x/sync/errgroup"
)

// maxRankWorkers bounds how many factors are decomposed at once
const maxRankWorkers = 4

// RankFactors computes η² for every factor and orders them strongest first,
// ties broken by name. Factors are independent, so they are evaluated
// concurrently over the shared read-only rows.
func RankFactors(ctx context.Context, rows []dataset.Row, factors []string, outcome string) ([]spc.FactorEffect, error) {
	effects := make([]spc.FactorEffect, len(factors))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxRankWorkers)
	for i, factor := range factors {
		i, factor := i, factor
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d := Decompose(rows, factor, outcome)
			effects[i] = spc.FactorEffect{
				Factor:     factor,
				EtaSquared: d.EtaSquared(),
				Levels:     len(d.Groups),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(effects, func(a, b int) bool {
		if effects[a].EtaSquared != effects[b].EtaSquared {
			return effects[a].EtaSquared > effects[b].EtaSquared
		}
		return effects[a].Factor < effects[b].Factor
	})
	return effects, nil
}
