package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inodb/vibe-sv/internal/config"
	"github.com/inodb/vibe-sv/internal/duckdb"
)

const testVCF = "../../testdata/sv_calls.vcf"

// tabFilters maps each call ID to its FILTER column.
func tabFilters(t *testing.T, out string) map[string]string {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	require.True(t, strings.HasPrefix(lines[0], "#ID\t"))

	got := make(map[string]string)
	for _, line := range lines[1:] {
		fields := strings.Split(line, "\t")
		require.Len(t, fields, 14, line)
		got[fields[0]] = fields[7]
	}
	return got
}

func TestRunFilter_Tab(t *testing.T) {
	var out bytes.Buffer
	err := runFilter(context.Background(), zap.NewNop(), config.Default(), testVCF, &out,
		filterOptions{outputFormat: "tab"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"del":   "PASS",
		"tra_o": "LowQual;minQual",
		"sgl1":  "PASS",
		"sym":   "PASS",
	}, tabFilters(t, out.String()))
}

func TestRunFilter_VCF(t *testing.T) {
	var out bytes.Buffer
	err := runFilter(context.Background(), zap.NewNop(), config.Default(), testVCF, &out,
		filterOptions{outputFormat: "vcf"})
	require.NoError(t, err)

	var records []string
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if !strings.HasPrefix(line, "#") {
			records = append(records, line)
		}
	}
	// The orphan leg and the unsupported symbolic allele are not written.
	require.Len(t, records, 6)
	assert.Contains(t, out.String(), `##FILTER=<ID=dedup,`)
	assert.Equal(t, "LowQual;minQual", strings.Split(records[2], "\t")[6])
}

func TestRunFilter_Database(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.duckdb")

	var out bytes.Buffer
	err := runFilter(context.Background(), zap.NewNop(), config.Default(), testVCF, &out,
		filterOptions{outputFormat: "tab", dbPath: dbPath})
	require.NoError(t, err)

	store, err := duckdb.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	fp, err := duckdb.StatFile(testVCF)
	require.NoError(t, err)
	run, ok, err := store.LatestRun(fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(4), run.Variants)
	assert.Equal(t, int64(3), run.Passing)

	rows, err := store.SearchByFilter(run.ID, "LowQual")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRunFilter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		format  string
		input   string
		wantErr string
	}{
		{"missing hotspots", func(c *config.Config) { c.References.Hotspots = "missing.bedpe" }, "tab", testVCF, "load hotspots"},
		{"missing low quality regions", func(c *config.Config) { c.References.LowQualRegions = "missing.bed" }, "tab", testVCF, "low quality regions"},
		{"missing pon", func(c *config.Config) { c.PON.SVPath = "missing.bedpe" }, "tab", testVCF, "missing.bedpe"},
		{"unknown format", func(*config.Config) {}, "maf", testVCF, "unknown output format"},
		{"missing input", func(*config.Config) {}, "tab", "missing.vcf", "open vcf file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)

			var out bytes.Buffer
			err := runFilter(context.Background(), zap.NewNop(), cfg, tt.input, &out,
				filterOptions{outputFormat: tt.format})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Empty(t, out.String(), "nothing is written when the run aborts")
		})
	}
}

func TestLoadReferences_EmptyPanelOfNormals(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "pon.bedpe")
	require.NoError(t, os.WriteFile(empty, []byte("# no entries\n"), 0o644))

	cfg := config.Default()
	cfg.PON.SVPath = empty
	refs, err := loadReferences(cfg, zap.NewNop())
	require.NoError(t, err)
	defer refs.Close()
	assert.Nil(t, refs.pon, "an empty panel is not annotated")

	var out bytes.Buffer
	require.NoError(t, runFilter(context.Background(), zap.NewNop(), cfg, testVCF, &out,
		filterOptions{outputFormat: "tab"}))
	assert.Equal(t, "PASS", tabFilters(t, out.String())["del"])
}
