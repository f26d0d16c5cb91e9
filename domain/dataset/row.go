package dataset

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Row maps column name to raw cell value, as handed over by the ingestion layer
type Row map[string]interface{}

// Number returns the numeric value of a column. Missing cells, text that does
// not parse and NaN are reported as not numeric.
func (r Row) Number(col string) (float64, bool) {
	raw, ok := r[col]
	if !ok {
		return 0, false
	}
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case Value:
		parsed, ok := v.Float()
		if !ok {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Category returns the categorical value of a column
func (r Row) Category(col string) (Value, bool) {
	raw, ok := r[col]
	if !ok {
		return Value{}, false
	}
	return ValueOf(raw)
}

// Table is a loaded dataset: ordered headers plus rows
type Table struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// HasColumn reports whether the table declares the column
func (t *Table) HasColumn(col string) bool {
	for _, h := range t.Headers {
		if h == col {
			return true
		}
	}
	return false
}

// Sample extracts the outcome column, skipping rows without a numeric value
func Sample(rows []Row, outcome string) []float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if v, ok := row.Number(outcome); ok {
			values = append(values, v)
		}
	}
	return values
}

// Observation is one usable (category, outcome) pair
type Observation struct {
	Level Value
	Y     float64
}

// Observations pairs a factor with the outcome, dropping rows where either is missing
func Observations(rows []Row, factor, outcome string) []Observation {
	obs := make([]Observation, 0, len(rows))
	for _, row := range rows {
		y, ok := row.Number(outcome)
		if !ok {
			continue
		}
		level, ok := row.Category(factor)
		if !ok {
			continue
		}
		obs = append(obs, Observation{Level: level, Y: y})
	}
	return obs
}

// Levels returns the distinct values of a factor in a stable order: numbers
// ascending, then text ascending.
func Levels(rows []Row, factor string) []Value {
	seen := make(map[string]Value)
	for _, row := range rows {
		if v, ok := row.Category(factor); ok {
			if _, dup := seen[v.String()]; !dup {
				seen[v.String()] = v
			}
		}
	}
	levels := make([]Value, 0, len(seen))
	for _, v := range seen {
		levels = append(levels, v)
	}
	SortValues(levels)
	return levels
}

// SortValues orders values numerically where both parse as numbers, otherwise lexically
func SortValues(values []Value) {
	sort.SliceStable(values, func(i, j int) bool {
		fi, iNum := values[i].Float()
		fj, jNum := values[j].Float()
		switch {
		case iNum && jNum:
			return fi < fj
		case iNum != jNum:
			return iNum
		default:
			return values[i].String() < values[j].String()
		}
	})
}
