// Package dedup marks duplicate calls. Losing calls receive the duplicate
// filter; nothing is ever removed from the call set.
package dedup

import "github.com/inodb/vibe-sv/internal/sv"

// Exact collapses calls whose breakends share position, orientation and
// insert sequence. The call with more supporting fragments is kept; on a
// tie the one with the higher or equal quality is kept. Filtered calls are
// neither compared nor marked.
//
// Chromosomes are walked one after another because marking a call affects
// its breakends on every chromosome. It returns the number of calls marked.
func Exact(idx *sv.BreakendIndex) int {
	marked := 0
	for _, chrom := range idx.Chromosomes() {
		marked += exactChromosome(idx.Breakends(chrom))
	}
	return marked
}

func exactChromosome(list []*sv.Breakend) int {
	marked := 0
	for i, b := range list {
		if b.Variant().IsFiltered() {
			continue
		}
		for j := i + 1; j < len(list) && list[j].Position == b.Position; j++ {
			next := list[j]
			if next.Variant() == b.Variant() || next.Variant().IsFiltered() {
				continue
			}
			if !isExactDuplicate(b, next) {
				continue
			}
			if keepFirst(b, next) {
				if next.Variant().AddFilter(sv.FilterDuplicate) {
					marked++
				}
				continue
			}
			if b.Variant().AddFilter(sv.FilterDuplicate) {
				marked++
			}
			break
		}
	}
	return marked
}

func isExactDuplicate(a, b *sv.Breakend) bool {
	return a.Orientation == b.Orientation && a.InsertSequence == b.InsertSequence
}

func keepFirst(first, second *sv.Breakend) bool {
	s1, s2 := first.FragmentSupport(), second.FragmentSupport()
	if s1 != s2 {
		return s1 > s2
	}
	return first.Variant().Qual >= second.Variant().Qual
}
