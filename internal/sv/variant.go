package sv

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Variant is one structural variant call holding one or two breakends.
// Filters only ever grow during a run, with the single exception of the LINE
// rescue performed by ClearFilters.
type Variant struct {
	ID             string
	Type           Type
	Qual           float64
	InsertSequence string

	// Breakends[1] is nil for single-ended calls.
	Breakends [2]*Breakend

	Hotspot  bool
	Germline bool
	LineSite bool // known LINE insertion site, as annotated upstream

	PonCount   int
	RepeatMask string

	SplitFragments    int
	AvgFragmentLength float64

	// AssemblyInfo is the raw assembly junction annotation; see Junctions.
	AssemblyInfo string

	filters FilterSet

	junctionsOnce sync.Once
	junctions     []Coords
	junctionErr   error
}

// NewVariant links start (and end, for paired types) to a new call.
func NewVariant(id string, t Type, start, end *Breakend) (*Variant, error) {
	if start == nil {
		return nil, fmt.Errorf("variant %s: missing start breakend", id)
	}
	if t.IsPaired() && end == nil {
		return nil, fmt.Errorf("variant %s: %s call requires two breakends", id, t)
	}
	if !t.IsPaired() && end != nil {
		return nil, fmt.Errorf("variant %s: single-ended call with two breakends", id)
	}

	v := &Variant{ID: id, Type: t, InsertSequence: start.InsertSequence}
	v.attach(0, start)
	if end != nil {
		v.attach(1, end)
		start.Mate = &Coords{Chrom: end.Chrom, Position: end.Position, Orientation: end.Orientation}
		end.Mate = &Coords{Chrom: start.Chrom, Position: start.Position, Orientation: start.Orientation}
	}
	return v, nil
}

func (v *Variant) attach(slot int, b *Breakend) {
	b.variant = v
	b.slot = slot
	b.normalize()
	v.Breakends[slot] = b
}

// Start returns the primary breakend.
func (v *Variant) Start() *Breakend {
	return v.Breakends[0]
}

// End returns the second breakend, or nil for single-ended calls.
func (v *Variant) End() *Breakend {
	return v.Breakends[1]
}

// IsSGL reports whether v is a single-ended call.
func (v *Variant) IsSGL() bool {
	return v.Type == SingleEnded
}

// Span returns the distance between breakends on the same chromosome, or -1.
func (v *Variant) Span() int {
	if v.IsSGL() || v.Start().Chrom != v.End().Chrom {
		return -1
	}
	d := v.End().Position - v.Start().Position
	if d < 0 {
		d = -d
	}
	return d
}

// AddFilter records a filter reason.
func (v *Variant) AddFilter(f Filter) bool {
	return v.filters.Add(f)
}

// HasFilter reports whether f has been recorded.
func (v *Variant) HasFilter(f Filter) bool {
	return v.filters.Has(f)
}

// IsFiltered reports whether v has any filter reason.
func (v *Variant) IsFiltered() bool {
	return v.filters.Len() > 0
}

// IsPass reports whether v has no filter reason.
func (v *Variant) IsPass() bool {
	return v.filters.Len() == 0
}

// Filters returns the filter set.
func (v *Variant) Filters() *FilterSet {
	return &v.filters
}

// ClearFilters removes every filter reason. Only the LINE rescue pass does
// this.
func (v *Variant) ClearFilters() {
	v.filters.clear()
}

// IsLineSite reports whether v is a known LINE site or any of its breakends
// has been cross-linked with a LINE partner.
func (v *Variant) IsLineSite() bool {
	if v.LineSite {
		return true
	}
	for _, b := range v.Breakends {
		if b != nil && b.LinePartner != nil {
			return true
		}
	}
	return false
}

// Junctions returns the original assembly junction coordinates parsed from
// AssemblyInfo. Parsing happens once; malformed entries are skipped and the
// first problem is reported by JunctionError.
func (v *Variant) Junctions() []Coords {
	v.junctionsOnce.Do(func() {
		v.junctions, v.junctionErr = ParseJunctions(v.AssemblyInfo)
	})
	return v.junctions
}

// JunctionError returns the first parse problem found by Junctions.
func (v *Variant) JunctionError() error {
	v.Junctions()
	return v.junctionErr
}

// ParseJunctions parses a comma-delimited list of chrom:position:orientation
// triples. Valid entries are returned even when others fail.
func ParseJunctions(s string) ([]Coords, error) {
	if s == "" || s == "." {
		return nil, nil
	}
	var (
		out      []Coords
		firstErr error
	)
	for _, item := range strings.Split(s, ",") {
		c, err := parseJunction(item)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out = append(out, c)
	}
	return out, firstErr
}

func parseJunction(item string) (Coords, error) {
	// Chromosome names may themselves contain ':' (e.g. HLA contigs), so split from the right.
	last := strings.LastIndexByte(item, ':')
	if last <= 0 {
		return Coords{}, fmt.Errorf("junction %q: expected chrom:pos:orientation", item)
	}
	mid := strings.LastIndexByte(item[:last], ':')
	if mid <= 0 {
		return Coords{}, fmt.Errorf("junction %q: expected chrom:pos:orientation", item)
	}
	pos, err := strconv.Atoi(item[mid+1 : last])
	if err != nil {
		return Coords{}, fmt.Errorf("junction %q: invalid position: %w", item, err)
	}
	o, err := ParseOrientation(item[last+1:])
	if err != nil {
		return Coords{}, fmt.Errorf("junction %q: %w", item, err)
	}
	return Coords{Chrom: item[:mid], Position: pos, Orientation: o}, nil
}
