package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-sv/internal/config"
	"github.com/inodb/vibe-sv/internal/sv"
)

type call struct {
	id      string
	pos     int
	o       sv.Orientation
	insert  string
	support int
	qual    float64
	ci      [2]int
}

func (c call) single(t *testing.T) *sv.Variant {
	t.Helper()
	v, err := sv.NewVariant(c.id, sv.SingleEnded, c.breakend(), nil)
	require.NoError(t, err)
	v.Qual = c.qual
	return v
}

func (c call) breakend() *sv.Breakend {
	o := c.o
	if o == 0 {
		o = sv.Forward
	}
	return &sv.Breakend{
		Chrom:           "1",
		Position:        c.pos,
		Orientation:     o,
		InsertSequence:  c.insert,
		ConfidenceStart: c.ci[0],
		ConfidenceEnd:   c.ci[1],
		Genotypes:       []sv.Genotype{{Sample: "TUMOR", Fragments: c.support}},
	}
}

func deletion(t *testing.T, id string, start, end int, support int, qual float64) *sv.Variant {
	t.Helper()
	v, err := sv.NewVariant(id, sv.Deletion,
		call{pos: start, o: sv.Forward, support: support}.breakend(),
		call{pos: end, o: sv.Reverse, support: support}.breakend())
	require.NoError(t, err)
	v.Qual = qual
	return v
}

func filterState(variants []*sv.Variant) map[string]string {
	out := make(map[string]string, len(variants))
	for _, v := range variants {
		out[v.ID] = v.Filters().String()
	}
	return out
}

func TestExact_TieBreakOnQuality(t *testing.T) {
	a := call{id: "a", pos: 100, support: 10, qual: 40}.single(t)
	b := call{id: "b", pos: 100, support: 10, qual: 35}.single(t)

	assert.Equal(t, 1, Exact(sv.BuildIndex([]*sv.Variant{a, b})))
	assert.True(t, a.IsPass())
	assert.True(t, b.HasFilter(sv.FilterDuplicate))
}

func TestExact_TieBreakOrderIndependent(t *testing.T) {
	a := call{id: "a", pos: 100, support: 10, qual: 35}.single(t)
	b := call{id: "b", pos: 100, support: 10, qual: 40}.single(t)

	Exact(sv.BuildIndex([]*sv.Variant{a, b}))
	assert.True(t, a.HasFilter(sv.FilterDuplicate))
	assert.True(t, b.IsPass())
}

func TestExact_EqualQualityKeepsFirst(t *testing.T) {
	a := call{id: "a", pos: 100, support: 10, qual: 40}.single(t)
	b := call{id: "b", pos: 100, support: 10, qual: 40}.single(t)

	Exact(sv.BuildIndex([]*sv.Variant{a, b}))
	assert.True(t, a.IsPass())
	assert.True(t, b.IsFiltered())
}

func TestExact_HigherSupportWins(t *testing.T) {
	a := call{id: "a", pos: 100, support: 5, qual: 90}.single(t)
	b := call{id: "b", pos: 100, support: 12, qual: 10}.single(t)
	c := call{id: "c", pos: 100, support: 7, qual: 50}.single(t)

	assert.Equal(t, 2, Exact(sv.BuildIndex([]*sv.Variant{a, b, c})))
	assert.True(t, a.HasFilter(sv.FilterDuplicate))
	assert.True(t, b.IsPass())
	assert.True(t, c.HasFilter(sv.FilterDuplicate))
}

func TestExact_NotDuplicates(t *testing.T) {
	tests := []struct {
		name  string
		other call
	}{
		{"different position", call{id: "b", pos: 101, support: 1}},
		{"different orientation", call{id: "b", pos: 100, o: sv.Reverse, support: 1}},
		{"different insert", call{id: "b", pos: 100, insert: "ACGT", support: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := call{id: "a", pos: 100, support: 10}.single(t)
			b := tt.other.single(t)
			assert.Zero(t, Exact(sv.BuildIndex([]*sv.Variant{a, b})))
			assert.True(t, a.IsPass())
			assert.True(t, b.IsPass())
		})
	}
}

func TestExact_SkipsFiltered(t *testing.T) {
	a := call{id: "a", pos: 100, support: 10}.single(t)
	b := call{id: "b", pos: 100, support: 50}.single(t)
	b.AddFilter(sv.FilterMinQual)

	assert.Zero(t, Exact(sv.BuildIndex([]*sv.Variant{a, b})))
	assert.True(t, a.IsPass())
	assert.False(t, b.HasFilter(sv.FilterDuplicate))
}

func TestExact_MarksWholeVariant(t *testing.T) {
	del := deletion(t, "del", 100, 500, 3, 10)
	sgl := call{id: "sgl", pos: 100, support: 20}.single(t)

	Exact(sv.BuildIndex([]*sv.Variant{del, sgl}))
	assert.True(t, del.HasFilter(sv.FilterDuplicate))
	assert.True(t, sgl.IsPass())
}

func TestExact_Idempotent(t *testing.T) {
	variants := []*sv.Variant{
		call{id: "a", pos: 100, support: 10, qual: 40}.single(t),
		call{id: "b", pos: 100, support: 10, qual: 35}.single(t),
		call{id: "c", pos: 100, support: 11, qual: 1}.single(t),
		call{id: "d", pos: 200, support: 3}.single(t),
		call{id: "e", pos: 200, support: 3, insert: "A"}.single(t),
		deletion(t, "f", 200, 900, 3, 5),
	}
	idx := sv.BuildIndex(variants)

	Exact(idx)
	once := filterState(variants)
	assert.Zero(t, Exact(idx))
	assert.Equal(t, once, filterState(variants))
}

func TestExact_NonDestructive(t *testing.T) {
	variants := []*sv.Variant{
		call{id: "a", pos: 100, support: 10}.single(t),
		call{id: "b", pos: 100, support: 9}.single(t),
		deletion(t, "c", 100, 400, 1, 1),
	}
	idx := sv.BuildIndex(variants)
	before := idx.Len()

	Exact(idx)
	assert.Equal(t, before, idx.Len())
	for _, v := range variants {
		for _, b := range v.Breakends {
			if b != nil {
				assert.Same(t, b, idx.Breakends(b.Chrom)[b.ChrIndex()])
			}
		}
	}
}

func TestSingleResolver_DefaultPolicyMarksSingle(t *testing.T) {
	sgl := call{id: "sgl", pos: 1000, ci: [2]int{-10, 10}, support: 5}.single(t)
	del := deletion(t, "del", 1005, 3000, 5, 100)
	variants := []*sv.Variant{sgl, del}

	r := NewSingleResolver(config.Default().Dedup, nil)
	assert.Equal(t, 1, r.Resolve(sv.BuildIndex(variants), variants))
	assert.True(t, sgl.HasFilter(sv.FilterDuplicate))
	assert.True(t, del.IsPass())
}

func TestSingleResolver_KeepSingleMarksCandidates(t *testing.T) {
	sgl := call{id: "sgl", pos: 1000, ci: [2]int{-10, 10}, support: 5}.single(t)
	del := deletion(t, "del", 995, 3000, 5, 100)
	other := call{id: "other", pos: 1008, support: 5}.single(t)
	variants := []*sv.Variant{sgl, del, other}

	keepAll := KeepPolicyFunc(func(*sv.Variant, *sv.Breakend) bool { return true })
	r := NewSingleResolver(config.Default().Dedup, keepAll)
	assert.Equal(t, 2, r.Resolve(sv.BuildIndex(variants), variants))
	assert.True(t, sgl.IsPass())
	assert.True(t, del.HasFilter(sv.FilterDuplicate))
	assert.True(t, other.HasFilter(sv.FilterDuplicate))
}

func TestSingleResolver_AnyRejectionMarksSingle(t *testing.T) {
	sgl := call{id: "sgl", pos: 1000, ci: [2]int{-10, 10}, support: 5}.single(t)
	a := call{id: "a", pos: 995, support: 5}.single(t)
	b := call{id: "b", pos: 1005, support: 5}.single(t)
	variants := []*sv.Variant{sgl, a, b}

	rejectB := KeepPolicyFunc(func(_ *sv.Variant, c *sv.Breakend) bool {
		return c.Variant().ID != "b"
	})
	NewSingleResolver(config.Default().Dedup, rejectB).Resolve(sv.BuildIndex(variants), variants)
	assert.True(t, sgl.HasFilter(sv.FilterDuplicate))
	assert.True(t, a.IsPass())
	assert.True(t, b.IsPass())
}

func TestSingleResolver_NotDuplicates(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) *sv.Variant
	}{
		{"outside confidence interval", func(t *testing.T) *sv.Variant {
			return call{id: "c", pos: 1020, support: 5}.single(t)
		}},
		{"opposite orientation", func(t *testing.T) *sv.Variant {
			return call{id: "c", pos: 1000, o: sv.Reverse, support: 5}.single(t)
		}},
		{"filtered candidate", func(t *testing.T) *sv.Variant {
			v := call{id: "c", pos: 1000, support: 5}.single(t)
			v.AddFilter(sv.FilterMinQual)
			return v
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sgl := call{id: "sgl", pos: 1000, ci: [2]int{-10, 10}, support: 5}.single(t)
			other := tt.setup(t)
			variants := []*sv.Variant{sgl, other}
			r := NewSingleResolver(config.Default().Dedup, nil)
			assert.Zero(t, r.Resolve(sv.BuildIndex(variants), variants))
			assert.True(t, sgl.IsPass())
			assert.False(t, other.HasFilter(sv.FilterDuplicate))
		})
	}
}

func TestSingleResolver_SkipsFilteredSingle(t *testing.T) {
	sgl := call{id: "sgl", pos: 1000, support: 5}.single(t)
	sgl.AddFilter(sv.FilterSGL)
	other := call{id: "other", pos: 1000, support: 5}.single(t)
	variants := []*sv.Variant{sgl, other}

	assert.Zero(t, NewSingleResolver(config.Default().Dedup, nil).Resolve(sv.BuildIndex(variants), variants))
	assert.False(t, other.HasFilter(sv.FilterDuplicate))
}
