package sv

import "sort"

// BreakendIndex holds, per chromosome, the breakends of all retained calls in
// non-decreasing position order. Each breakend knows its own slot, so
// proximity queries start from it and scan outwards.
type BreakendIndex struct {
	chroms map[string][]*Breakend
	count  int
}

// BuildIndex indexes every breakend of the given variants. Breakends at the
// same position keep their input order.
func BuildIndex(variants []*Variant) *BreakendIndex {
	idx := &BreakendIndex{chroms: make(map[string][]*Breakend)}
	for _, v := range variants {
		for _, b := range v.Breakends {
			if b != nil {
				idx.insert(b)
			}
		}
	}
	for _, list := range idx.chroms {
		for i, b := range list {
			b.chrIndex = i
		}
	}
	return idx
}

func (idx *BreakendIndex) insert(b *Breakend) {
	list := idx.chroms[b.Chrom]
	i := sort.Search(len(list), func(i int) bool {
		return list[i].Position > b.Position
	})
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = b
	idx.chroms[b.Chrom] = list
	idx.count++
}

// Len returns the number of indexed breakends.
func (idx *BreakendIndex) Len() int {
	return idx.count
}

// Chromosomes returns the indexed chromosome names in lexical order.
func (idx *BreakendIndex) Chromosomes() []string {
	chroms := make([]string, 0, len(idx.chroms))
	for c := range idx.chroms {
		chroms = append(chroms, c)
	}
	sort.Strings(chroms)
	return chroms
}

// Breakends returns the sorted breakends of chrom. The slice must not be
// modified.
func (idx *BreakendIndex) Breakends(chrom string) []*Breakend {
	return idx.chroms[chrom]
}

// Nearby returns the breakends of other calls lying within maxSeek of b.
// Both confidence intervals are widened by extra on each side and the gap
// between them is measured; overlapping intervals have no gap. Each scan
// direction stops at the first candidate whose gap exceeds maxSeek. Lower
// matches come first, each side in position order.
func (idx *BreakendIndex) Nearby(b *Breakend, extra, maxSeek int) []*Breakend {
	list := idx.chroms[b.Chrom]
	if len(list) == 0 || b.chrIndex < 0 || b.chrIndex >= len(list) || list[b.chrIndex] != b {
		return nil
	}

	lowerBound := b.MinPosition() - extra
	upperBound := b.MaxPosition() + extra

	var lower []*Breakend
	for i := b.chrIndex - 1; i >= 0; i-- {
		o := list[i]
		if lowerBound-(o.MaxPosition()+extra) > maxSeek {
			break
		}
		if o.variant != b.variant {
			lower = append(lower, o)
		}
	}
	for i, j := 0, len(lower)-1; i < j; i, j = i+1, j-1 {
		lower[i], lower[j] = lower[j], lower[i]
	}

	result := lower
	for i := b.chrIndex + 1; i < len(list); i++ {
		o := list[i]
		if (o.MinPosition()-extra)-upperBound > maxSeek {
			break
		}
		if o.variant != b.variant {
			result = append(result, o)
		}
	}
	return result
}
