package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// ComputeFilterHash fingerprints a filter projection so that equal projections hash
// equally regardless of map iteration order or value order within a factor.
func ComputeFilterHash(filters map[string][]string, extra ...string) Hash {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		values := append([]string(nil), filters[key]...)
		sort.Strings(values)
		data.WriteString(fmt.Sprintf("%q=", key))
		for _, v := range values {
			data.WriteString(fmt.Sprintf("%q,", v))
		}
		data.WriteString(";")
	}
	for _, e := range extra {
		data.WriteString("|")
		data.WriteString(e)
	}

	return NewHash([]byte(data.String()))
}
