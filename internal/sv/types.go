// Package sv provides the structural variant call model: breakends, the
// variants that own them, filter reasons, and the per-chromosome breakend index.
package sv

import "fmt"

// Orientation is the side of a breakend that stays attached to the reference.
// Forward means the sequence before the position is retained.
type Orientation int8

const (
	Forward Orientation = 1
	Reverse Orientation = -1
)

// String returns "+" or "-".
func (o Orientation) String() string {
	if o == Reverse {
		return "-"
	}
	return "+"
}

// ParseOrientation accepts "+", "-", "1" and "-1".
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "+", "1":
		return Forward, nil
	case "-", "-1":
		return Reverse, nil
	}
	return 0, fmt.Errorf("invalid orientation %q", s)
}

// Type is the structural variant class of a call.
type Type uint8

const (
	Deletion Type = iota
	Duplication
	Insertion
	Inversion
	Translocation
	SingleEnded
)

var typeNames = [...]string{
	Deletion:      "DEL",
	Duplication:   "DUP",
	Insertion:     "INS",
	Inversion:     "INV",
	Translocation: "BND",
	SingleEnded:   "SGL",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "UNKNOWN"
}

// IsPaired reports whether calls of this type carry two breakends.
func (t Type) IsPaired() bool {
	return t != SingleEnded
}

// ParseType converts a SVTYPE tag into a Type.
func ParseType(s string) (Type, bool) {
	for i, name := range typeNames {
		if name == s {
			return Type(i), true
		}
	}
	return 0, false
}

// InferType classifies a pair of breakends by chromosome, orientation and
// insert length.
func InferType(start, end *Breakend) Type {
	if start.Chrom != end.Chrom {
		return Translocation
	}
	if start.Orientation == end.Orientation {
		return Inversion
	}
	lower, upper := start, end
	if upper.Position < lower.Position {
		lower, upper = upper, lower
	}
	if lower.Orientation == Reverse {
		return Duplication
	}
	span := upper.Position - lower.Position
	if len(start.InsertSequence) > 0 && float64(len(start.InsertSequence)) > float64(span)*0.5 {
		return Insertion
	}
	return Deletion
}

// Coords identifies a breakend location without the rest of its attributes.
type Coords struct {
	Chrom       string
	Position    int
	Orientation Orientation
}

func (c Coords) String() string {
	return fmt.Sprintf("%s:%d:%s", c.Chrom, c.Position, c.Orientation)
}

// Genotype holds the per-sample read support for a breakend.
// Missing fields default to zero.
type Genotype struct {
	Sample    string
	Fragments int // fragments supporting the variant allele
	RefReads  int // reads supporting the reference allele
	RefPairs  int // read pairs spanning the reference allele
}

// AF returns the allelic frequency, or 0 when there is no coverage.
func (g Genotype) AF() float64 {
	total := g.Fragments + g.RefReads + g.RefPairs
	if total == 0 {
		return 0
	}
	return float64(g.Fragments) / float64(total)
}
