// Package urlsync translates a filter projection to and from the compact
// query-parameter form factor:v1,v2;factor2:v3.
package urlsync

import (
	"net/url"
	"strings"

	"gospc/domain/dataset"
	"gospc/domain/drill"
)

// Param is the query parameter carrying the encoded projection
const Param = "filters"

const (
	factorSep = ";"
	pairSep   = ":"
	valueSep  = ","
)

var escaper = strings.NewReplacer("%", "%25", factorSep, "%3B", pairSep, "%3A", valueSep, "%2C")

// Encode serializes a projection. Factors are written in sorted order, values
// in the order they were drilled. Separator characters inside names are
// percent-escaped.
func Encode(proj drill.FilterProjection) string {
	parts := make([]string, 0, len(proj))
	for _, factor := range proj.Factors() {
		values := proj[factor]
		if len(values) == 0 {
			continue
		}
		escaped := make([]string, len(values))
		for i, v := range values {
			escaped[i] = escaper.Replace(v.String())
		}
		parts = append(parts, escaper.Replace(factor)+pairSep+strings.Join(escaped, valueSep))
	}
	return strings.Join(parts, factorSep)
}

// Decode parses an encoded projection. Malformed segments are skipped; a
// factor named twice keeps its last value set.
func Decode(raw string) drill.FilterProjection {
	proj := make(drill.FilterProjection)
	for _, segment := range strings.Split(raw, factorSep) {
		name, list, ok := strings.Cut(segment, pairSep)
		if !ok {
			continue
		}
		factor, err := url.PathUnescape(strings.TrimSpace(name))
		if err != nil || factor == "" {
			continue
		}

		var values []dataset.Value
		for _, item := range strings.Split(list, valueSep) {
			v, err := url.PathUnescape(item)
			if err != nil || v == "" {
				continue
			}
			values = append(values, dataset.StringValue(v))
		}
		if len(values) == 0 {
			continue
		}
		proj[factor] = values
	}
	return proj
}

// FromQuery decodes the projection carried by a query string, if any
func FromQuery(q url.Values) (drill.FilterProjection, bool) {
	raw := q.Get(Param)
	if raw == "" {
		return nil, false
	}
	proj := Decode(raw)
	return proj, len(proj) > 0
}
