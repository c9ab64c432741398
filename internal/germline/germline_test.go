package germline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-sv/internal/config"
	"github.com/inodb/vibe-sv/internal/sv"
)

func withGenotypes(t *testing.T, gts ...sv.Genotype) *sv.Variant {
	t.Helper()
	v, err := sv.NewVariant("v", sv.SingleEnded,
		&sv.Breakend{Chrom: "1", Position: 100, Orientation: sv.Forward, Genotypes: gts}, nil)
	require.NoError(t, err)
	return v
}

func classifier() *Classifier {
	cfg := config.Default().Germline
	cfg.ReferenceSample = "NORMAL"
	cfg.AFThreshold = 0.1
	cfg.ADThreshold = 0.1
	return NewClassifier(cfg)
}

func TestIsGermline_DepthGuard(t *testing.T) {
	// Reference AF 0.12 passes the AF test against tumor AF 1.0, but a depth
	// ratio of 3/50 does not.
	v := withGenotypes(t,
		sv.Genotype{Sample: "NORMAL", Fragments: 3, RefReads: 22},
		sv.Genotype{Sample: "TUMOR", Fragments: 50},
	)
	c := classifier()
	s := c.Summarize(v)
	assert.InDelta(t, 0.12, s.ReferenceAF, 1e-9)
	assert.InDelta(t, 1.0, s.TumorAF, 1e-9)
	assert.Equal(t, 3, s.ReferenceDepth)
	assert.Equal(t, 50, s.TumorDepth)
	assert.False(t, c.IsGermline(v))
}

func TestIsGermline_BothConditions(t *testing.T) {
	v := withGenotypes(t,
		sv.Genotype{Sample: "NORMAL", Fragments: 10, RefReads: 10},
		sv.Genotype{Sample: "TUMOR", Fragments: 30, RefReads: 30},
	)
	assert.True(t, classifier().IsGermline(v))
}

func TestIsGermline_LowReferenceAF(t *testing.T) {
	v := withGenotypes(t,
		sv.Genotype{Sample: "NORMAL", Fragments: 10, RefReads: 990},
		sv.Genotype{Sample: "TUMOR", Fragments: 30, RefReads: 30},
	)
	assert.False(t, classifier().IsGermline(v))
}

func TestIsGermline_ZeroDepths(t *testing.T) {
	c := classifier()
	assert.False(t, c.IsGermline(withGenotypes(t,
		sv.Genotype{Sample: "NORMAL"},
		sv.Genotype{Sample: "TUMOR"},
	)), "no support anywhere is not germline")

	assert.True(t, c.IsGermline(withGenotypes(t,
		sv.Genotype{Sample: "NORMAL", Fragments: 4, RefReads: 4},
		sv.Genotype{Sample: "TUMOR", RefReads: 40},
	)), "reference-only support")
}

func TestIsGermline_RunModes(t *testing.T) {
	v := withGenotypes(t, sv.Genotype{Sample: "TUMOR", Fragments: 30})

	assert.True(t, NewClassifier(config.GermlineConfig{ReferenceOnly: true}).IsGermline(v))
	assert.False(t, NewClassifier(config.GermlineConfig{AFThreshold: 0.1, ADThreshold: 0.1}).IsGermline(v))
}

func TestApply_NeverTouchesFilters(t *testing.T) {
	v := withGenotypes(t,
		sv.Genotype{Sample: "NORMAL", Fragments: 10, RefReads: 10},
		sv.Genotype{Sample: "TUMOR", Fragments: 30, RefReads: 30},
	)
	v.AddFilter(sv.FilterMinQual)
	assert.True(t, classifier().Apply(v))
	assert.True(t, v.Germline)
	assert.Equal(t, 1, v.Filters().Len())
}
