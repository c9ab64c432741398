package sv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sgl(t *testing.T, id, chrom string, pos int, o Orientation) *Variant {
	t.Helper()
	v, err := NewVariant(id, SingleEnded, &Breakend{Chrom: chrom, Position: pos, Orientation: o}, nil)
	require.NoError(t, err)
	return v
}

func pair(t *testing.T, id string, typ Type, chrom1 string, pos1 int, o1 Orientation, chrom2 string, pos2 int, o2 Orientation) *Variant {
	t.Helper()
	v, err := NewVariant(id, typ,
		&Breakend{Chrom: chrom1, Position: pos1, Orientation: o1},
		&Breakend{Chrom: chrom2, Position: pos2, Orientation: o2})
	require.NoError(t, err)
	return v
}

func positions(bs []*Breakend) []int {
	out := make([]int, len(bs))
	for i, b := range bs {
		out[i] = b.Position
	}
	return out
}
