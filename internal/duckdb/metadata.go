package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Run describes one recorded pipeline run.
type Run struct {
	ID       int64
	Input    FileFingerprint
	Started  time.Time
	Variants int64
	Passing  int64
}

// RecordRun stores a new run and returns its ID.
func (s *Store) RecordRun(input FileFingerprint, started time.Time, variants, passing int) (int64, error) {
	var id int64
	if err := s.db.QueryRow("SELECT COALESCE(MAX(run_id), 0) + 1 FROM runs").Scan(&id); err != nil {
		return 0, fmt.Errorf("next run id: %w", err)
	}
	_, err := s.db.Exec(`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, input.Path, input.Size, dbTime(input.ModTime), dbTime(started), int64(variants), int64(passing))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// LatestRun returns the most recent run over an input that still matches
// fp by size and modification time.
func (s *Store) LatestRun(fp FileFingerprint) (Run, bool, error) {
	var r Run
	err := s.db.QueryRow(`SELECT run_id, input_path, input_size, input_mtime, started, variants, passing
		FROM runs
		WHERE input_path=? AND input_size=? AND input_mtime=?
		ORDER BY run_id DESC LIMIT 1`,
		fp.Path, fp.Size, dbTime(fp.ModTime)).Scan(
		&r.ID, &r.Input.Path, &r.Input.Size, &r.Input.ModTime, &r.Started, &r.Variants, &r.Passing)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("query latest run: %w", err)
	}
	return r, true, nil
}

// dbTime converts t to the microsecond UTC precision of a DuckDB TIMESTAMP.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
