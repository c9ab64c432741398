package sv

import (
	"sort"
	"strings"
)

// Filter is a reason for excluding a call from the final output. The value is
// the tag written to the VCF FILTER column.
type Filter string

// Filter tags set by this tool.
const (
	FilterMinSupport      Filter = "minSupport"
	FilterMinTumorAF      Filter = "minTumorAF"
	FilterMinQual         Filter = "minQual"
	FilterMinLength       Filter = "minLength"
	FilterShortFragLength Filter = "shortFragLength"
	FilterSGL             Filter = "sgl"
	FilterDuplicate       Filter = "dedup"
	FilterPON             Filter = "PON"
)

// FilterPass is the FILTER value of a call with no filter reasons.
const FilterPass = "PASS"

var knownFilters = []Filter{
	FilterMinSupport,
	FilterMinTumorAF,
	FilterMinQual,
	FilterMinLength,
	FilterShortFragLength,
	FilterSGL,
	FilterDuplicate,
	FilterPON,
}

// ParseFilter maps a FILTER tag carried over from the upstream caller back to
// a known Filter. The second result is false for tags this tool does not set;
// callers keep those verbatim as Filter(tag).
func ParseFilter(tag string) (Filter, bool) {
	for _, f := range knownFilters {
		if string(f) == tag {
			return f, true
		}
	}
	return Filter(tag), false
}

// FilterSet is an unordered set of filter reasons. The zero value is empty
// and ready to use.
type FilterSet struct {
	m map[Filter]struct{}
}

// Add inserts f. It returns true if f was not already present.
func (s *FilterSet) Add(f Filter) bool {
	if s.m == nil {
		s.m = make(map[Filter]struct{}, 2)
	}
	if _, ok := s.m[f]; ok {
		return false
	}
	s.m[f] = struct{}{}
	return true
}

// Has reports whether f is in the set.
func (s *FilterSet) Has(f Filter) bool {
	_, ok := s.m[f]
	return ok
}

// Len returns the number of filter reasons.
func (s *FilterSet) Len() int {
	return len(s.m)
}

// Sorted returns the filters in lexical order.
func (s *FilterSet) Sorted() []Filter {
	out := make([]Filter, 0, len(s.m))
	for f := range s.m {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String returns "PASS" for an empty set, otherwise the sorted tags joined by ';'.
func (s *FilterSet) String() string {
	if len(s.m) == 0 {
		return FilterPass
	}
	sorted := s.Sorted()
	tags := make([]string, len(sorted))
	for i, f := range sorted {
		tags[i] = string(f)
	}
	return strings.Join(tags, ";")
}

func (s *FilterSet) clear() {
	s.m = nil
}
