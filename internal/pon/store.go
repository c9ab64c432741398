// Package pon flags calls that recur in a panel of normals. Panel entries
// are loaded into DuckDB from BED (single breakends) and BEDPE (breakpoint
// pairs) files.
package pon

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-sv/internal/regions"
	"github.com/inodb/vibe-sv/internal/sv"
)

// Store holds panel-of-normals entries in DuckDB.
type Store struct {
	db *sql.DB
}

// Open opens or creates a PON database at the given path.
// Use an empty string for an in-memory database.
func Open(dbPath string) (*Store, error) {
	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS pon_sgl (
		chrom VARCHAR,
		start_pos BIGINT,
		end_pos BIGINT,
		orientation BIGINT,
		count BIGINT
	)`); err != nil {
		return err
	}
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS pon_sv (
		chrom1 VARCHAR,
		start1 BIGINT,
		end1 BIGINT,
		orient1 BIGINT,
		chrom2 VARCHAR,
		start2 BIGINT,
		end2 BIGINT,
		orient2 BIGINT,
		count BIGINT
	)`); err != nil {
		return err
	}
	s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_pon_sgl ON pon_sgl (chrom, start_pos)`)
	s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_pon_sv ON pon_sv (chrom1, start1)`)
	return nil
}

// Count returns the number of single breakend and breakpoint entries.
func (s *Store) Count() (sgl, pairs int64, err error) {
	if err := s.db.QueryRow("SELECT COUNT(*) FROM pon_sgl").Scan(&sgl); err != nil {
		return 0, 0, fmt.Errorf("count pon_sgl rows: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM pon_sv").Scan(&pairs); err != nil {
		return 0, 0, fmt.Errorf("count pon_sv rows: %w", err)
	}
	return sgl, pairs, nil
}

// Loaded returns true if either table has data.
func (s *Store) Loaded() bool {
	sgl, pairs, err := s.Count()
	return err == nil && sgl+pairs > 0
}

// LoadSGL appends single breakend entries from a BED file:
//
//	chrom start end name score strand
//
// The score column holds the number of normals the breakend was seen in.
func (s *Store) LoadSGL(path string) error {
	return s.appendFile(path, "pon_sgl", 6, func(fields []string) ([]driver.Value, error) {
		r, err := regions.ParseRegion(fields[0], fields[1], fields[2])
		if err != nil {
			return nil, err
		}
		o, err := sv.ParseOrientation(fields[5])
		if err != nil {
			return nil, err
		}
		n, err := parseCount(fields[4])
		if err != nil {
			return nil, err
		}
		return []driver.Value{r.Chrom, int64(r.Start), int64(r.End), int64(o), n}, nil
	})
}

// LoadSV appends breakpoint entries from a BEDPE file:
//
//	chrom1 start1 end1 chrom2 start2 end2 name score strand1 strand2
func (s *Store) LoadSV(path string) error {
	return s.appendFile(path, "pon_sv", 10, func(fields []string) ([]driver.Value, error) {
		r1, err := regions.ParseRegion(fields[0], fields[1], fields[2])
		if err != nil {
			return nil, err
		}
		r2, err := regions.ParseRegion(fields[3], fields[4], fields[5])
		if err != nil {
			return nil, err
		}
		o1, err := sv.ParseOrientation(fields[8])
		if err != nil {
			return nil, err
		}
		o2, err := sv.ParseOrientation(fields[9])
		if err != nil {
			return nil, err
		}
		n, err := parseCount(fields[7])
		if err != nil {
			return nil, err
		}
		return []driver.Value{
			r1.Chrom, int64(r1.Start), int64(r1.End), int64(o1),
			r2.Chrom, int64(r2.Start), int64(r2.End), int64(o2),
			n,
		}, nil
	})
}

// appendFile streams the rows of a BED-like file into table with the
// Appender API.
func (s *Store) appendFile(path, table string, minFields int, row func([]string) ([]driver.Value, error)) error {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	err = regions.ReadBED(path, minFields, func(_ int, fields []string) error {
		values, err := row(fields)
		if err != nil {
			return err
		}
		return appender.AppendRow(values...)
	})
	if err != nil {
		return fmt.Errorf("load %s: %w", table, err)
	}
	return appender.Flush()
}

// parseCount reads a BED score column; a missing score counts once.
func parseCount(s string) (int64, error) {
	if s == "" || s == "." {
		return 1, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid score %q", s)
	}
	return int64(f), nil
}

const (
	sglQuery = `SELECT COALESCE(SUM(count), 0) FROM pon_sgl
		WHERE chrom = ? AND orientation = ? AND start_pos <= ? AND end_pos >= ?`

	svQuery = `SELECT COALESCE(SUM(count), 0) FROM pon_sv
		WHERE (chrom1 = ? AND orient1 = ? AND start1 <= ? AND end1 >= ?
			AND chrom2 = ? AND orient2 = ? AND start2 <= ? AND end2 >= ?)
		OR (chrom1 = ? AND orient1 = ? AND start1 <= ? AND end1 >= ?
			AND chrom2 = ? AND orient2 = ? AND start2 <= ? AND end2 >= ?)`
)

// window returns the query arguments for b's confidence interval widened by
// margin on both sides.
func window(b *sv.Breakend, margin int) []any {
	return []any{
		b.Chrom,
		int64(b.Orientation),
		int64(b.MaxPosition() + margin),
		int64(b.MinPosition() - margin),
	}
}

// CountSGL sums the panel counts of single breakend entries overlapping b.
func (s *Store) CountSGL(ctx context.Context, b *sv.Breakend, margin int) (int, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, sglQuery, window(b, margin)...).Scan(&n); err != nil {
		return 0, fmt.Errorf("query pon_sgl: %w", err)
	}
	return int(n), nil
}

// CountSV sums the panel counts of breakpoint entries overlapping both
// breakends, in either order.
func (s *Store) CountSV(ctx context.Context, start, end *sv.Breakend, margin int) (int, error) {
	w1, w2 := window(start, margin), window(end, margin)
	args := make([]any, 0, 16)
	args = append(args, w1...)
	args = append(args, w2...)
	args = append(args, w2...)
	args = append(args, w1...)

	var n int64
	if err := s.db.QueryRowContext(ctx, svQuery, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("query pon_sv: %w", err)
	}
	return int(n), nil
}
