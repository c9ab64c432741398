package duckdb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-sv/internal/sv"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testVariants(t *testing.T) []*sv.Variant {
	t.Helper()
	del, err := sv.NewVariant("del", sv.Deletion,
		&sv.Breakend{Chrom: "1", Position: 1000, Orientation: sv.Forward,
			Genotypes: []sv.Genotype{{Sample: "TUMOR", Fragments: 9, RefReads: 1}}},
		&sv.Breakend{Chrom: "1", Position: 2000, Orientation: sv.Reverse})
	require.NoError(t, err)
	del.Qual = 700
	del.Germline = true

	sgl, err := sv.NewVariant("sgl", sv.SingleEnded,
		&sv.Breakend{Chrom: "1", Position: 1000, Orientation: sv.Reverse}, nil)
	require.NoError(t, err)
	sgl.AddFilter(sv.FilterDuplicate)
	sgl.AddFilter(sv.FilterMinQual)
	sgl.PonCount = 4
	del.Start().LinePartner = sgl.Start()
	sgl.Start().LinePartner = del.Start()

	return []*sv.Variant{del, sgl}
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	_, ok, err := s.LatestRun(FileFingerprint{Path: "in.vcf"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestResultsFromVariants(t *testing.T) {
	results := ResultsFromVariants(testVariants(t))
	require.Len(t, results, 3)

	assert.Equal(t, Result{
		VariantID:   "del",
		Breakend:    "start",
		Chrom:       "1",
		Pos:         1000,
		Orientation: "+",
		Type:        "DEL",
		Qual:        700,
		Filter:      "PASS",
		Germline:    true,
		LineSite:    true,
		Support:     9,
		AF:          0.9,
		LinePartner: "1:1000:-",
	}, results[0])
	assert.Equal(t, "end", results[1].Breakend)
	assert.Equal(t, "dedup;minQual", results[2].Filter)
}

func TestWriteAndLookupResults(t *testing.T) {
	s := openInMemory(t)
	results := ResultsFromVariants(testVariants(t))
	require.NoError(t, s.WriteResults(1, append(results, results[0])))

	got, err := s.LookupLocation(1, "1", 1000)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, results[0], got[0])
	assert.Equal(t, "sgl", got[1].VariantID)
	assert.Equal(t, int64(4), got[1].PonCount)

	got, err = s.LookupLocation(2, "1", 1000)
	require.NoError(t, err)
	assert.Empty(t, got, "other run")
}

func TestSearchByFilter(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteResults(1, ResultsFromVariants(testVariants(t))))

	pass, err := s.SearchByFilter(1, "PASS")
	require.NoError(t, err)
	assert.Len(t, pass, 2)

	dups, err := s.SearchByFilter(1, "dedup")
	require.NoError(t, err)
	require.Len(t, dups, 1)
	assert.Equal(t, "sgl", dups[0].VariantID)

	none, err := s.SearchByFilter(1, "dup")
	require.NoError(t, err)
	assert.Empty(t, none, "tags match whole")
}

func TestClearResults(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteResults(1, ResultsFromVariants(testVariants(t))))
	_, err := s.RecordRun(FileFingerprint{Path: "in.vcf"}, time.Now(), 2, 1)
	require.NoError(t, err)

	require.NoError(t, s.ClearResults())

	got, err := s.LookupLocation(1, "1", 1000)
	require.NoError(t, err)
	assert.Empty(t, got)
	_, ok, err := s.LatestRun(FileFingerprint{Path: "in.vcf"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRuns(t *testing.T) {
	s := openInMemory(t)

	path := filepath.Join(t.TempDir(), "calls.vcf")
	require.NoError(t, os.WriteFile(path, []byte("##fileformat=VCFv4.2\n"), 0644))
	fp, err := StatFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(21), fp.Size)

	_, ok, err := s.LatestRun(fp)
	require.NoError(t, err)
	assert.False(t, ok)

	id1, err := s.RecordRun(fp, time.Now(), 10, 4)
	require.NoError(t, err)
	id2, err := s.RecordRun(fp, time.Now(), 10, 5)
	require.NoError(t, err)
	assert.Equal(t, id1+1, id2)

	run, ok, err := s.LatestRun(fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id2, run.ID)
	assert.Equal(t, int64(5), run.Passing)
	assert.Equal(t, fp.Path, run.Input.Path)

	changed := fp
	changed.Size++
	_, ok, err = s.LatestRun(changed)
	require.NoError(t, err)
	assert.False(t, ok, "stale fingerprint")
}

func TestStatFileMissing(t *testing.T) {
	_, err := StatFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
