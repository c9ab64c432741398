package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-sv/internal/sv"
)

// Result is one breakend row of a run.
type Result struct {
	VariantID    string
	Breakend     string // "start" or "end"
	Chrom        string
	Pos          int64
	Orientation  string
	Type         string
	Qual         float64
	Filter       string // "PASS" or ';'-joined tags
	Hotspot      bool
	Germline     bool
	LineSite     bool
	PonCount     int64
	Support      int64
	AF           float64
	LinePartner  string
	RemoteSource bool
}

// ResultsFromVariants flattens calls into breakend rows.
func ResultsFromVariants(variants []*sv.Variant) []Result {
	results := make([]Result, 0, len(variants)*2)
	for _, v := range variants {
		filter := v.Filters().String()
		for _, b := range v.Breakends {
			if b == nil {
				continue
			}
			r := Result{
				VariantID:    v.ID,
				Breakend:     "start",
				Chrom:        b.Chrom,
				Pos:          int64(b.Position),
				Orientation:  b.Orientation.String(),
				Type:         v.Type.String(),
				Qual:         v.Qual,
				Filter:       filter,
				Hotspot:      v.Hotspot,
				Germline:     v.Germline,
				LineSite:     v.IsLineSite(),
				PonCount:     int64(v.PonCount),
				Support:      int64(b.FragmentSupport()),
				AF:           b.AF(),
				RemoteSource: b.RemoteSource,
			}
			if !b.IsStart() {
				r.Breakend = "end"
			}
			if b.LinePartner != nil {
				r.LinePartner = b.LinePartner.Coords().String()
			}
			results = append(results, r)
		}
	}
	return results
}

// resultKey is the per-run key for deduplicating rows before writing.
type resultKey struct {
	variantID, breakend string
}

// WriteResults batch-inserts the rows of one run using the Appender API.
// Rows repeating a (variant_id, breakend) pair are written once.
func (s *Store) WriteResults(runID int64, results []Result) error {
	if len(results) == 0 {
		return nil
	}

	seen := make(map[resultKey]bool, len(results))
	deduped := make([]Result, 0, len(results))
	for _, r := range results {
		k := resultKey{r.VariantID, r.Breakend}
		if !seen[k] {
			seen[k] = true
			deduped = append(deduped, r)
		}
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "sv_results")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range deduped {
		if err := appender.AppendRow(
			runID, r.VariantID, r.Breakend, r.Chrom, r.Pos, r.Orientation,
			r.Type, r.Qual, r.Filter, r.Hotspot, r.Germline, r.LineSite,
			r.PonCount, r.Support, r.AF, r.LinePartner, r.RemoteSource,
		); err != nil {
			return fmt.Errorf("append result: %w", err)
		}
	}

	return appender.Flush()
}

// ClearResults removes all stored results and runs.
func (s *Store) ClearResults() error {
	if _, err := s.db.Exec("DELETE FROM sv_results"); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM runs")
	return err
}

const resultColumns = `variant_id, breakend, chrom, pos, orientation, sv_type, qual, filter,
		hotspot, germline, line_site, pon_count, support, af, line_partner, remote_source`

// LookupLocation returns the rows of a run at an exact breakend position.
func (s *Store) LookupLocation(runID int64, chrom string, pos int64) ([]Result, error) {
	rows, err := s.db.Query(`SELECT `+resultColumns+`
		FROM sv_results
		WHERE run_id=? AND chrom=? AND pos=?
		ORDER BY variant_id, breakend`, runID, chrom, pos)
	if err != nil {
		return nil, fmt.Errorf("query location: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// SearchByFilter returns the rows of a run whose FILTER value contains tag,
// or the passing rows when tag is "PASS".
func (s *Store) SearchByFilter(runID int64, tag string) ([]Result, error) {
	rows, err := s.db.Query(`SELECT `+resultColumns+`
		FROM sv_results
		WHERE run_id=? AND list_contains(string_split(filter, ';'), ?)
		ORDER BY chrom, pos, variant_id, breakend`, runID, tag)
	if err != nil {
		return nil, fmt.Errorf("query by filter: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// scanResults scans rows into Result slices.
func scanResults(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.VariantID, &r.Breakend, &r.Chrom, &r.Pos, &r.Orientation, &r.Type,
			&r.Qual, &r.Filter, &r.Hotspot, &r.Germline, &r.LineSite,
			&r.PonCount, &r.Support, &r.AF, &r.LinePartner, &r.RemoteSource,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}
