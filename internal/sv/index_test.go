package sv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndex_SortsAndAssignsSlots(t *testing.T) {
	variants := []*Variant{
		sgl(t, "a", "1", 500, Forward),
		pair(t, "b", Deletion, "1", 100, Forward, "1", 900, Reverse),
		sgl(t, "c", "2", 50, Reverse),
		sgl(t, "d", "1", 300, Reverse),
	}
	idx := BuildIndex(variants)

	assert.Equal(t, 5, idx.Len())
	assert.Equal(t, []string{"1", "2"}, idx.Chromosomes())
	assert.Equal(t, []int{100, 300, 500, 900}, positions(idx.Breakends("1")))
	for i, b := range idx.Breakends("1") {
		assert.Equal(t, i, b.ChrIndex())
	}
	assert.Equal(t, 0, idx.Breakends("2")[0].ChrIndex())
}

func TestBuildIndex_TiesKeepInputOrder(t *testing.T) {
	first := sgl(t, "first", "1", 100, Forward)
	second := sgl(t, "second", "1", 100, Forward)
	idx := BuildIndex([]*Variant{first, second})

	list := idx.Breakends("1")
	require.Len(t, list, 2)
	assert.Same(t, first.Start(), list[0])
	assert.Same(t, second.Start(), list[1])
}

func TestNearby_ReturnsLowerThenUpper(t *testing.T) {
	a := sgl(t, "a", "1", 100, Forward)
	b := sgl(t, "b", "1", 150, Forward)
	c := sgl(t, "c", "1", 500, Forward)
	idx := BuildIndex([]*Variant{c, a, b})

	got := idx.Nearby(b.Start(), 0, 1000)
	assert.Equal(t, []int{100, 500}, positions(got))
}

func TestNearby_ExtraWidensBothIntervals(t *testing.T) {
	a := sgl(t, "a", "1", 100, Forward)
	b := sgl(t, "b", "1", 150, Forward)
	c := sgl(t, "c", "1", 500, Forward)
	idx := BuildIndex([]*Variant{a, b, c})

	assert.Empty(t, idx.Nearby(b.Start(), 0, 10))
	assert.Equal(t, []int{100}, positions(idx.Nearby(b.Start(), 20, 10)))
	assert.Equal(t, []int{100, 500}, positions(idx.Nearby(b.Start(), 200, 10)))
}

func TestNearby_ConfidenceIntervalCountsTowardsSeek(t *testing.T) {
	a := sgl(t, "a", "1", 100, Forward)
	b := sgl(t, "b", "1", 150, Forward)
	b.Start().ConfidenceStart = -45
	idx := BuildIndex([]*Variant{a, b})

	assert.Empty(t, idx.Nearby(b.Start(), 0, 4))
	assert.Equal(t, []int{100}, positions(idx.Nearby(b.Start(), 0, 5)))
}

func TestNearby_ExcludesSameVariant(t *testing.T) {
	del := pair(t, "del", Deletion, "1", 100, Forward, "1", 120, Reverse)
	other := sgl(t, "other", "1", 110, Forward)
	idx := BuildIndex([]*Variant{del, other})

	got := idx.Nearby(del.Start(), 50, 1000)
	require.Len(t, got, 1)
	assert.Same(t, other.Start(), got[0])
}

func TestNearby_StopsBeyondSeekDistance(t *testing.T) {
	query := sgl(t, "q", "1", 1000, Forward)
	far := sgl(t, "far", "1", 5000, Forward)
	// A wide interval that would overlap the query, but sits behind a breakend
	// that is already beyond a small seek window.
	wide := sgl(t, "wide", "1", 6000, Forward)
	wide.Start().ConfidenceStart = -5500
	idx := BuildIndex([]*Variant{query, far, wide})

	assert.Empty(t, idx.Nearby(query.Start(), 0, 100))
	got := idx.Nearby(query.Start(), 0, 10000)
	assert.Equal(t, []int{5000, 6000}, positions(got))
}

func TestNearby_UnindexedOrEmptyChromosome(t *testing.T) {
	a := sgl(t, "a", "1", 100, Forward)
	idx := BuildIndex(nil)
	assert.Empty(t, idx.Nearby(a.Start(), 0, 1000))
	assert.Nil(t, idx.Breakends("1"))
}
