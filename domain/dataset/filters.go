package dataset

// ApplyFilters returns the rows matching every factor constraint.
// Factors are AND-combined; values within a factor are OR-combined.
// An empty filter set returns the input slice unchanged.
func ApplyFilters(rows []Row, filters map[string][]Value) []Row {
	if len(filters) == 0 {
		return rows
	}
	match := matcher(filters)
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if match(row) {
			out = append(out, row)
		}
	}
	return out
}

// MatchingIndices returns the positions of the rows ApplyFilters would keep
func MatchingIndices(rows []Row, filters map[string][]Value) []int {
	match := matcher(filters)
	out := make([]int, 0, len(rows))
	for i, row := range rows {
		if match(row) {
			out = append(out, i)
		}
	}
	return out
}

func matcher(filters map[string][]Value) func(Row) bool {
	sets := make(map[string]map[string]bool, len(filters))
	for factor, allowed := range filters {
		set := make(map[string]bool, len(allowed))
		for _, v := range allowed {
			set[v.String()] = true
		}
		sets[factor] = set
	}
	return func(row Row) bool {
		for factor, set := range sets {
			v, ok := row.Category(factor)
			if !ok || !set[v.String()] {
				return false
			}
		}
		return true
	}
}
