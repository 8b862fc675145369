package snapshot

import (
	"math"
	"sort"
	"strconv"
)

// NumericLess orders decimal-string token ids by numeric value, not
// lexicographically ("9" before "10"). An id that does not parse is
// treated as maximal so it sorts last instead of breaking the sort;
// equal values fall back to the string form to keep the order total.
func NumericLess(a, b string) bool {
	av := numericValue(a)
	bv := numericValue(b)
	if av != bv {
		return av < bv
	}
	return a < b
}

func numericValue(s string) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return math.MaxUint64
	}
	return v
}

// SortIDs sorts a token id list in ascending numeric order in place.
func SortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool { return NumericLess(ids[i], ids[j]) })
}
