package regions

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadError reports a problem in a reference data file.
type LoadError struct {
	Path    string
	Line    int
	Message string
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Region is a closed 1-based chromosome interval.
type Region struct {
	Chrom string
	Start int
	End   int
}

// Contains reports whether pos lies inside r.
func (r Region) Contains(chrom string, pos int) bool {
	return r.Chrom == chrom && pos >= r.Start && pos <= r.End
}

// ParseRegion converts BED start/end columns (0-based half-open) to a Region.
func ParseRegion(chrom, start, end string) (Region, error) {
	s, err := strconv.Atoi(start)
	if err != nil {
		return Region{}, fmt.Errorf("invalid start %q", start)
	}
	e, err := strconv.Atoi(end)
	if err != nil {
		return Region{}, fmt.Errorf("invalid end %q", end)
	}
	if e < s {
		return Region{}, fmt.Errorf("end %d before start %d", e, s)
	}
	return Region{Chrom: chrom, Start: s + 1, End: e}, nil
}

// ReadBED calls fn with the tab-separated fields of every data line of a BED
// or BEDPE file. Comment, track and browser lines are skipped. Lines with
// fewer than minFields columns, and errors returned by fn, abort the read
// with a *LoadError. Gzipped files are detected by their magic bytes.
func ReadBED(path string, minFields int, fn func(line int, fields []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r, err := maybeGzip(f)
	if err != nil {
		return &LoadError{Path: path, Message: err.Error()}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < minFields {
			return &LoadError{
				Path:    path,
				Line:    lineNumber,
				Message: fmt.Sprintf("expected at least %d columns, found %d", minFields, len(fields)),
			}
		}
		if err := fn(lineNumber, fields); err != nil {
			return &LoadError{Path: path, Line: lineNumber, Message: err.Error()}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func maybeGzip(f *os.File) (io.Reader, error) {
	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return gz, nil
	}
	return br, nil
}
