package line

import "github.com/inodb/vibe-sv/internal/sv"

// RescueStats counts the changes made by AdjustLineSites.
type RescueStats struct {
	Germline int // calls promoted to germline
	Rescued  int // calls whose filters were cleared
}

// AdjustLineSites propagates status across LINE links. A LINE site call that
// is not germline becomes germline when any directly linked call is; a
// filtered LINE site call loses all of its filters when any directly linked
// call is PASS.
//
// Decisions are taken against the state before the pass, so status moves one
// hop only: a call rescued here does not in turn rescue its other partners.
func AdjustLineSites(variants []*sv.Variant) RescueStats {
	type change struct {
		v        *sv.Variant
		germline bool
		clear    bool
	}
	var changes []change
	for _, v := range variants {
		if !v.IsLineSite() {
			continue
		}
		var c change
		for _, b := range v.Breakends {
			if b == nil || b.LinePartner == nil {
				continue
			}
			p := b.LinePartner.Variant()
			if p == v {
				continue
			}
			if !v.Germline && p.Germline {
				c.germline = true
			}
			if v.IsFiltered() && p.IsPass() {
				c.clear = true
			}
		}
		if c.germline || c.clear {
			c.v = v
			changes = append(changes, c)
		}
	}

	var s RescueStats
	for _, c := range changes {
		if c.germline {
			c.v.Germline = true
			s.Germline++
		}
		if c.clear {
			c.v.ClearFilters()
			s.Rescued++
		}
	}
	return s
}
