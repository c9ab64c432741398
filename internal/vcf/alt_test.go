package vcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-sv/internal/sv"
)

func TestParseAlt(t *testing.T) {
	tests := []struct {
		alt  string
		want Allele
	}{
		{"A[2:300[", Allele{Kind: AltBreakend, Orientation: sv.Forward, Mate: sv.Coords{Chrom: "2", Position: 300, Orientation: sv.Reverse}}},
		{"AGG]2:300]", Allele{Kind: AltBreakend, Orientation: sv.Forward, Insert: "GG", Mate: sv.Coords{Chrom: "2", Position: 300, Orientation: sv.Forward}}},
		{"]HLA-A*01:01:01:01:300]TTA", Allele{Kind: AltBreakend, Orientation: sv.Reverse, Insert: "TT", Mate: sv.Coords{Chrom: "HLA-A*01:01:01:01", Position: 300, Orientation: sv.Forward}}},
		{"[X:5[A", Allele{Kind: AltBreakend, Orientation: sv.Reverse, Mate: sv.Coords{Chrom: "X", Position: 5, Orientation: sv.Reverse}}},
		{"A.", Allele{Kind: AltSingle, Orientation: sv.Forward}},
		{"ACGT.", Allele{Kind: AltSingle, Orientation: sv.Forward, Insert: "CGT"}},
		{".ACGT", Allele{Kind: AltSingle, Orientation: sv.Reverse, Insert: "ACG"}},
		{"<DEL>", Allele{Kind: AltSymbolic, Symbol: "DEL"}},
		{"<DUP:TANDEM>", Allele{Kind: AltSymbolic, Symbol: "DUP"}},
	}
	for _, tt := range tests {
		t.Run(tt.alt, func(t *testing.T) {
			got, err := ParseAlt(tt.alt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAlt_Errors(t *testing.T) {
	for _, alt := range []string{"", "A", "ACGT", "A,C", "A[2:300", "A[2300[", "A[2:x[", "[2:300[", "A[2:300[C", "."} {
		t.Run(alt, func(t *testing.T) {
			_, err := ParseAlt(alt)
			assert.Error(t, err)
		})
	}
}
