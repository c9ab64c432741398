package regions

import "fmt"

// Set answers whether a position falls inside any of a collection of regions.
// A nil *Set contains nothing.
type Set struct {
	tree *Tree
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{tree: NewTree()}
}

// Add inserts the closed 1-based region [start, end].
func (s *Set) Add(chrom string, start, end int) error {
	return s.tree.Insert(chrom, start, end, 0)
}

// Build must be called after the last Add.
func (s *Set) Build() {
	s.tree.Build()
}

// Contains reports whether pos lies inside a region on chrom.
func (s *Set) Contains(chrom string, pos int) bool {
	if s == nil {
		return false
	}
	return len(s.tree.Query(chrom, pos, pos)) > 0
}

// Len returns the number of regions.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return s.tree.Len()
}

// LoadBED reads a BED file (0-based half-open) into a Set.
func LoadBED(path string) (*Set, error) {
	s := NewSet()
	err := ReadBED(path, 3, func(line int, fields []string) error {
		r, err := ParseRegion(fields[0], fields[1], fields[2])
		if err != nil {
			return err
		}
		return s.Add(r.Chrom, r.Start, r.End)
	})
	if err != nil {
		return nil, fmt.Errorf("load regions: %w", err)
	}
	s.Build()
	return s, nil
}
