package vcf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inodb/vibe-sv/internal/sv"
)

// Record is one data line of a VCF file.
type Record struct {
	Chrom   string
	Pos     int // 1-based
	ID      string
	Ref     string
	Alt     string
	Qual    float64
	Filter  string
	Info    map[string]interface{} // string values, or true for flags
	RawInfo string

	Format  []string   // FORMAT keys
	Samples [][]string // per-sample values in FORMAT order

	// SampleColumns is the raw FORMAT and sample text, re-emitted as is.
	SampleColumns string

	// Call is the call this record was ingested into and Leg the breakend
	// it describes; both are nil for dropped records.
	Call *sv.Variant
	Leg  *sv.Breakend
}

// InfoString returns the value of a key=value INFO field.
func (r *Record) InfoString(key string) (string, bool) {
	s, ok := r.Info[key].(string)
	return s, ok
}

// InfoFlag reports whether a flag (or any value) is present for key.
func (r *Record) InfoFlag(key string) bool {
	_, ok := r.Info[key]
	return ok
}

// InfoInt returns an integer INFO value; a missing key yields 0.
func (r *Record) InfoInt(key string) (int, error) {
	s, ok := r.InfoString(key)
	if !ok || s == "." {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("INFO %s: invalid integer %q", key, s)
	}
	return n, nil
}

// InfoFloat returns a floating point INFO value; a missing key yields 0.
func (r *Record) InfoFloat(key string) (float64, error) {
	s, ok := r.InfoString(key)
	if !ok || s == "." {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("INFO %s: invalid number %q", key, s)
	}
	return f, nil
}

// InfoPair returns a two-valued integer INFO field such as CIPOS.
func (r *Record) InfoPair(key string) (int, int, error) {
	s, ok := r.InfoString(key)
	if !ok || s == "." {
		return 0, 0, nil
	}
	a, b, found := strings.Cut(s, ",")
	if !found {
		return 0, 0, fmt.Errorf("INFO %s: expected two values, got %q", key, s)
	}
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, fmt.Errorf("INFO %s: invalid integer %q", key, a)
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, fmt.Errorf("INFO %s: invalid integer %q", key, b)
	}
	return x, y, nil
}

// Filters returns the FILTER tags, or nil for PASS and missing values.
func (r *Record) Filters() []string {
	if r.Filter == "" || r.Filter == "." || r.Filter == sv.FilterPass {
		return nil
	}
	return strings.Split(r.Filter, ";")
}

// SampleInt returns an integer FORMAT value of sample i. Missing keys and
// missing values yield 0.
func (r *Record) SampleInt(i int, key string) (int, error) {
	if i >= len(r.Samples) {
		return 0, nil
	}
	for k, name := range r.Format {
		if name != key {
			continue
		}
		if k >= len(r.Samples[i]) {
			return 0, nil
		}
		s := r.Samples[i][k]
		if s == "" || s == "." {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			// Some callers write counts as floats.
			f, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil {
				return 0, fmt.Errorf("FORMAT %s: invalid integer %q", key, s)
			}
			n = int(f)
		}
		return n, nil
	}
	return 0, nil
}
