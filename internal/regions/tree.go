// Package regions provides per-chromosome lookups over genomic regions and the
// BED-style loaders used for reference data.
package regions

import (
	"github.com/biogo/store/interval"
)

// node is a closed 1-based region stored as a half-open interval.
type node struct {
	id         uintptr
	start, end int
	ref        int
}

func (n node) ID() uintptr { return n.id }

func (n node) Range() interval.IntRange {
	return interval.IntRange{Start: n.start, End: n.end + 1}
}

func (n node) Overlap(b interval.IntRange) bool {
	return n.end+1 > b.Start && n.start < b.End
}

// Tree maps chromosome regions to caller-defined integer references.
// Call Build after the last Insert and before querying.
type Tree struct {
	trees  map[string]*interval.IntTree
	nextID uintptr
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{trees: make(map[string]*interval.IntTree)}
}

// Insert adds the closed region [start, end] on chrom.
func (t *Tree) Insert(chrom string, start, end, ref int) error {
	if end < start {
		start, end = end, start
	}
	it, ok := t.trees[chrom]
	if !ok {
		it = &interval.IntTree{}
		t.trees[chrom] = it
	}
	t.nextID++
	return it.Insert(node{id: t.nextID, start: start, end: end, ref: ref}, true)
}

// Build finalizes the trees after fast inserts.
func (t *Tree) Build() {
	for _, it := range t.trees {
		it.AdjustRanges()
	}
}

// Query returns the references of every region overlapping [start, end].
func (t *Tree) Query(chrom string, start, end int) []int {
	it, ok := t.trees[chrom]
	if !ok || it.Len() == 0 {
		return nil
	}
	var refs []int
	for _, hit := range it.Get(node{start: start, end: end}) {
		refs = append(refs, hit.(node).ref)
	}
	return refs
}

// Len returns the number of stored regions.
func (t *Tree) Len() int {
	n := 0
	for _, it := range t.trees {
		n += it.Len()
	}
	return n
}
