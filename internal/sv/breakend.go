package sv

// Breakend is one endpoint of a structural variant call. It is owned by
// exactly one Variant; the owner is assigned by NewVariant.
type Breakend struct {
	Chrom       string
	Position    int // 1-based
	Orientation Orientation

	// Confidence interval offsets relative to Position (CIPOS).
	ConfidenceStart int
	ConfidenceEnd   int

	// Inexact homology interval offsets relative to Position (IHOMPOS).
	InexactHomStart int
	InexactHomEnd   int
	Homology        string

	InsertSequence string
	Genotypes      []Genotype

	// Mate holds the other leg's coordinates for paired calls.
	Mate *Coords

	// LineInsertion is set when the insert sequence carries a poly-A or
	// poly-T tail consistent with a retrotransposon insertion.
	LineInsertion bool

	// LinePartner is the adjacent breakend this one was cross-linked with
	// as a LINE insertion site. Links are always mutual.
	LinePartner *Breakend

	// RemoteSource marks a LINE breakend that is the donor locus rather
	// than the insertion point.
	RemoteSource bool

	variant  *Variant
	slot     int
	chrIndex int
}

// Variant returns the owning call.
func (b *Breakend) Variant() *Variant {
	return b.variant
}

// IsStart reports whether b is the first breakend of its call.
func (b *Breakend) IsStart() bool {
	return b.slot == 0
}

// Other returns the mate breakend of a paired call, or nil for a single
// breakend. It is resolved through the owning Variant.
func (b *Breakend) Other() *Breakend {
	if b.variant == nil {
		return nil
	}
	return b.variant.Breakends[1-b.slot]
}

// MinPosition is the lower bound of the confidence interval.
func (b *Breakend) MinPosition() int {
	return b.Position + b.ConfidenceStart
}

// MaxPosition is the upper bound of the confidence interval.
func (b *Breakend) MaxPosition() int {
	return b.Position + b.ConfidenceEnd
}

// ChrIndex returns b's slot in its chromosome's sorted index, or -1 before
// an index has been built.
func (b *Breakend) ChrIndex() int {
	return b.chrIndex
}

// Coords returns b's location.
func (b *Breakend) Coords() Coords {
	return Coords{Chrom: b.Chrom, Position: b.Position, Orientation: b.Orientation}
}

// FragmentSupport sums the supporting fragments over all genotypes.
func (b *Breakend) FragmentSupport() int {
	total := 0
	for _, g := range b.Genotypes {
		total += g.Fragments
	}
	return total
}

// AF returns the highest allelic frequency over all genotypes.
func (b *Breakend) AF() float64 {
	best := 0.0
	for _, g := range b.Genotypes {
		if af := g.AF(); af > best {
			best = af
		}
	}
	return best
}

// normalize keeps the confidence interval around Position.
func (b *Breakend) normalize() {
	if b.ConfidenceStart > 0 {
		b.ConfidenceStart = 0
	}
	if b.ConfidenceEnd < 0 {
		b.ConfidenceEnd = 0
	}
	b.chrIndex = -1
}

const (
	lineTailLength   = 18
	lineTailRequired = 16
)

// IsLineInsertion reports whether an insert sequence looks like the tail of
// a LINE element: a run rich in T at the start for forward breakends, or in
// A at the end for reverse breakends.
func IsLineInsertion(insert string, o Orientation) bool {
	if len(insert) < lineTailRequired {
		return false
	}
	n := min(lineTailLength, len(insert))
	if o == Forward {
		return countBase(insert[:n], 'T') >= lineTailRequired
	}
	return countBase(insert[len(insert)-n:], 'A') >= lineTailRequired
}

// IsPolyATHomology reports whether a homology sequence is a poly-A or poly-T run.
func IsPolyATHomology(homology string) bool {
	const minRun = 7
	return longestRun(homology, 'A') >= minRun || longestRun(homology, 'T') >= minRun
}

func countBase(s string, base byte) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == base || s[i] == base+('a'-'A') {
			n++
		}
	}
	return n
}

func longestRun(s string, base byte) int {
	best, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == base || s[i] == base+('a'-'A') {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}
