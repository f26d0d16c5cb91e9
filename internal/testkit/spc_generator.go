package testkit

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"gospc/domain/dataset"
	"gospc/domain/spc"
)

// FactorSpec describes one categorical factor and the shift each level adds to the outcome
type FactorSpec struct {
	Name    string    `json:"name"`
	Levels  []string  `json:"levels"`
	Effects []float64 `json:"effects"`
}

// SPCGeneratorConfig configures the synthetic process data generator
type SPCGeneratorConfig struct {
	Rows        int          `json:"rows"`
	Outcome     string       `json:"outcome"`
	BaseMean    float64      `json:"base_mean"`
	NoiseStdDev float64      `json:"noise_std_dev"`
	Factors     []FactorSpec `json:"factors"`
	// MissingRate is the share of rows whose outcome cell is left empty
	MissingRate float64 `json:"missing_rate"`
	// ShiftAfter moves the process mean by ShiftSize from this row on; 0 disables it
	ShiftAfter int     `json:"shift_after"`
	ShiftSize  float64 `json:"shift_size"`
	Seed       int64   `json:"seed"`
}

// DefaultSPCConfig is a fill-weight line: Machine dominates, Shift matters a
// little, Operator is noise
func DefaultSPCConfig() SPCGeneratorConfig {
	return SPCGeneratorConfig{
		Rows:        1200,
		Outcome:     "FillWeight",
		BaseMean:    100,
		NoiseStdDev: 1,
		Factors: []FactorSpec{
			{Name: "Machine", Levels: []string{"A", "B", "C"}, Effects: []float64{0, 3, -0.5}},
			{Name: "Shift", Levels: []string{"Day", "Night"}, Effects: []float64{0, 0.8}},
			{Name: "Operator", Levels: []string{"Ana", "Ben", "Cho", "Dev"}, Effects: []float64{0, 0, 0, 0}},
		},
		Seed: 42,
	}
}

// DefaultSpecLimits fits DefaultSPCConfig
func DefaultSpecLimits() spc.SpecLimits {
	return spc.SpecLimits{USL: spc.Limit(104), LSL: spc.Limit(96), Target: spc.Limit(100)}
}

// SPCDataGenerator produces rows with known factor effects
type SPCDataGenerator struct {
	config SPCGeneratorConfig
	rng    *rand.Rand
}

// NewSPCDataGenerator creates a generator; equal seeds give equal tables
func NewSPCDataGenerator(config SPCGeneratorConfig) *SPCDataGenerator {
	return &SPCDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds the table. Levels are assigned round-robin with a random
// offset so every level is populated even for small row counts.
func (g *SPCDataGenerator) Generate() (*dataset.Table, error) {
	if g.config.Outcome == "" {
		return nil, fmt.Errorf("outcome column name is required")
	}
	headers := []string{"Batch"}
	for _, f := range g.config.Factors {
		if len(f.Levels) == 0 {
			return nil, fmt.Errorf("factor %s has no levels", f.Name)
		}
		if len(f.Effects) != 0 && len(f.Effects) != len(f.Levels) {
			return nil, fmt.Errorf("factor %s: %d effects for %d levels", f.Name, len(f.Effects), len(f.Levels))
		}
		headers = append(headers, f.Name)
	}
	headers = append(headers, g.config.Outcome)

	rows := make([]dataset.Row, g.config.Rows)
	for i := range rows {
		row := dataset.Row{"Batch": float64(i + 1)}
		y := g.config.BaseMean + g.rng.NormFloat64()*g.config.NoiseStdDev
		for fi, f := range g.config.Factors {
			li := (i + fi + g.rng.Intn(len(f.Levels))) % len(f.Levels)
			row[f.Name] = f.Levels[li]
			if len(f.Effects) > 0 {
				y += f.Effects[li]
			}
		}
		if g.config.ShiftAfter > 0 && i >= g.config.ShiftAfter {
			y += g.config.ShiftSize
		}
		if g.config.MissingRate == 0 || g.rng.Float64() >= g.config.MissingRate {
			row[g.config.Outcome] = y
		}
		rows[i] = row
	}

	return &dataset.Table{Headers: headers, Rows: rows}, nil
}

// WriteCSV writes a generated table for the CLI and reader tests
func WriteCSV(path string, table *dataset.Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(table.Headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(table.Headers))
	for _, row := range table.Rows {
		for i, h := range table.Headers {
			record[i] = ""
			if f, ok := row.Number(h); ok {
				record[i] = strconv.FormatFloat(f, 'f', -1, 64)
			} else if v, ok := row.Category(h); ok {
				record[i] = v.String()
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
