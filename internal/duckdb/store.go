// Package duckdb persists annotated call sets in DuckDB so that results of
// past runs can be queried without re-running the pipeline.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding run results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
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

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		run_id BIGINT PRIMARY KEY,
		input_path VARCHAR,
		input_size BIGINT,
		input_mtime TIMESTAMP,
		started TIMESTAMP,
		variants BIGINT,
		passing BIGINT
	)`); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS sv_results (
		run_id BIGINT,
		variant_id VARCHAR,
		breakend VARCHAR,
		chrom VARCHAR,
		pos BIGINT,
		orientation VARCHAR,
		sv_type VARCHAR,
		qual DOUBLE,
		filter VARCHAR,
		hotspot BOOLEAN,
		germline BOOLEAN,
		line_site BOOLEAN,
		pon_count BIGINT,
		support BIGINT,
		af DOUBLE,
		line_partner VARCHAR,
		remote_source BOOLEAN,
		PRIMARY KEY (run_id, variant_id, breakend)
	)`)
	return err
}
