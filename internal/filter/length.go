package filter

import "github.com/inodb/vibe-sv/internal/sv"

// lengthFormulas gives the adjusted event length per call type from the
// breakend span and insert length. Types without an entry are never length
// filtered.
var lengthFormulas = map[sv.Type]func(span, insertLen int) int{
	sv.Deletion:    func(span, ins int) int { return span + ins - 1 },
	sv.Duplication: func(span, ins int) int { return span + ins },
	sv.Insertion:   func(span, ins int) int { return span + ins + 1 },
}

// AdjustedLength returns the event length used by the minimum length filter.
// The second result is false for types that are not length filtered.
func AdjustedLength(v *sv.Variant) (int, bool) {
	formula, ok := lengthFormulas[v.Type]
	if !ok {
		return 0, false
	}
	span := v.Span()
	if span < 0 {
		return 0, false
	}
	return formula(span, len(v.InsertSequence)), true
}
