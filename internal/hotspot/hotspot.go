// Package hotspot matches paired calls against curated hotspot region pairs.
package hotspot

import (
	"fmt"

	"github.com/inodb/vibe-sv/internal/regions"
	"github.com/inodb/vibe-sv/internal/sv"
)

// Region is one side of a hotspot: a closed 1-based interval and the
// orientation a breakend must have to match it.
type Region struct {
	regions.Region
	Orientation sv.Orientation
}

func (r Region) matches(c sv.Coords) bool {
	return c.Orientation == r.Orientation && r.Contains(c.Chrom, c.Position)
}

// Entry is a known recurrent rearrangement.
type Entry struct {
	Name   string
	First  Region
	Second Region
}

// Matcher holds hotspot entries keyed by the chromosome of each side, so an
// inter-chromosomal entry is reachable from both chromosomes.
type Matcher struct {
	entries []Entry
	tree    *regions.Tree
}

// NewMatcher returns an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{tree: regions.NewTree()}
}

// Add registers an entry. Build must be called before matching.
func (m *Matcher) Add(e Entry) error {
	ref := len(m.entries)
	m.entries = append(m.entries, e)
	if err := m.tree.Insert(e.First.Chrom, e.First.Start, e.First.End, ref); err != nil {
		return fmt.Errorf("add hotspot %s: %w", e.Name, err)
	}
	if err := m.tree.Insert(e.Second.Chrom, e.Second.Start, e.Second.End, ref); err != nil {
		return fmt.Errorf("add hotspot %s: %w", e.Name, err)
	}
	return nil
}

// Build finalizes the lookup structure. Matching is safe for concurrent use
// once Build has returned.
func (m *Matcher) Build() {
	m.tree.Build()
}

// Len returns the number of entries.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Match reports whether both breakends of a paired call fall in a known
// hotspot, in either order, with matching orientations. Calls whose
// homology is a poly-A/poly-T run never match. A nil matcher matches nothing.
func (m *Matcher) Match(v *sv.Variant) bool {
	if m == nil || v.IsSGL() {
		return false
	}
	start, end := v.Start(), v.End()
	if sv.IsPolyATHomology(start.Homology) || sv.IsPolyATHomology(end.Homology) {
		return false
	}
	return m.MatchCoords(start.Coords(), end.Coords())
}

// MatchCoords reports whether the two locations form a known hotspot in
// either order.
func (m *Matcher) MatchCoords(a, b sv.Coords) bool {
	if m == nil || len(m.entries) == 0 {
		return false
	}
	for _, ref := range m.tree.Query(a.Chrom, a.Position, a.Position) {
		e := m.entries[ref]
		if (e.First.matches(a) && e.Second.matches(b)) || (e.Second.matches(a) && e.First.matches(b)) {
			return true
		}
	}
	return false
}
