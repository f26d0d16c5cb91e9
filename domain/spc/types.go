// Package spc holds the value types produced by the statistical engine and
// consumed by rendering collaborators. All results are immutable snapshots.
package spc

// SpecLimits are the optional customer specification limits
type SpecLimits struct {
	USL    *float64 `json:"usl,omitempty"`
	LSL    *float64 `json:"lsl,omitempty"`
	Target *float64 `json:"target,omitempty"`
}

// Limit is a helper for building optional limits inline
func Limit(v float64) *float64 {
	return &v
}

// IsEmpty reports whether neither USL nor LSL is set
func (s SpecLimits) IsEmpty() bool {
	return s.USL == nil && s.LSL == nil
}

// GradeBand is one bucket of a grading scale. Bands are sorted ascending by Max;
// the last band catches everything above.
type GradeBand struct {
	Max   float64 `json:"max"`
	Label string  `json:"label"`
	Color string  `json:"color"`
}

// GradeCount is the share of the sample falling into a grade band
type GradeCount struct {
	Label      string  `json:"label"`
	Color      string  `json:"color"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// StatsResult summarizes a sample for the I-chart and capability panel.
// Cp and Cpk are nil when the limits needed for them are absent.
type StatsResult struct {
	Mean                float64      `json:"mean"`
	StdDev              float64      `json:"std_dev"`
	UCL                 float64      `json:"ucl"`
	LCL                 float64      `json:"lcl"`
	Cp                  *float64     `json:"cp,omitempty"`
	Cpk                 *float64     `json:"cpk,omitempty"`
	OutOfSpecPercentage float64      `json:"out_of_spec_percentage"`
	GradeCounts         []GradeCount `json:"grade_counts,omitempty"`
	Count               int          `json:"count"`
}

// GroupSummary describes one factor level inside an ANOVA
type GroupSummary struct {
	Name   string  `json:"name"`
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// AnovaResult is a one-way analysis of variance of the outcome by one factor
type AnovaResult struct {
	Factor        string         `json:"factor"`
	Groups        []GroupSummary `json:"groups"`
	SSBetween     float64        `json:"ss_between"`
	SSWithin      float64        `json:"ss_within"`
	DFBetween     int            `json:"df_between"`
	DFWithin      int            `json:"df_within"`
	MSBetween     float64        `json:"ms_between"`
	MSWithin      float64        `json:"ms_within"`
	FStatistic    float64        `json:"f_statistic"`
	PValue        float64        `json:"p_value"`
	IsSignificant bool           `json:"is_significant"`
	EtaSquared    float64        `json:"eta_squared"`
}

// InteractionResult reports how much an A×B interaction adds over main effects
type InteractionResult struct {
	FactorA          string  `json:"factor_a"`
	FactorB          string  `json:"factor_b"`
	RSquaredMain     float64 `json:"r_squared_main"`
	RSquaredFull     float64 `json:"r_squared_full"`
	DeltaRSquared    float64 `json:"delta_r_squared"`
	PValue           float64 `json:"p_value"`
	StandardizedBeta float64 `json:"standardized_beta"`
	N                int     `json:"n"`
}

// CategoryStats describes one level of a factor for boxplot and mindmap overlays
type CategoryStats struct {
	Value        string  `json:"value"`
	Count        int     `json:"count"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Q1           float64 `json:"q1"`
	Median       float64 `json:"median"`
	Q3           float64 `json:"q3"`
	Max          float64 `json:"max"`
	Contribution float64 `json:"contribution"`
}

// FactorEffect is a factor's share of outcome variation in the current subset
type FactorEffect struct {
	Factor     string  `json:"factor"`
	EtaSquared float64 `json:"eta_squared"`
	Levels     int     `json:"levels"`
}

// PlotPoint is one observation on a normal probability plot
type PlotPoint struct {
	Value              float64 `json:"value"`
	ExpectedPercentile float64 `json:"expected_percentile"`
	ZScore             float64 `json:"z_score"`
	LowerCI            float64 `json:"lower_ci"`
	UpperCI            float64 `json:"upper_ci"`
}

// FittedPoint is one point of the theoretical normal line
type FittedPoint struct {
	Percentile float64 `json:"percentile"`
	Value      float64 `json:"value"`
}

// RuleViolations lists the indices flagged by the out-of-control rules
type RuleViolations struct {
	BeyondLimits []int `json:"beyond_limits"`
	RunOfNine    []int `json:"run_of_nine"`
}
