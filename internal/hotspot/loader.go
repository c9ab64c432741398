package hotspot

import (
	"fmt"
	"strconv"

	"github.com/inodb/vibe-sv/internal/regions"
	"github.com/inodb/vibe-sv/internal/sv"
)

// Load reads hotspot entries from a BEDPE file:
//
//	chrom1 start1 end1 chrom2 start2 end2 name score strand1 strand2
//
// Coordinates are 0-based half-open. A malformed file is a fatal error.
func Load(path string) (*Matcher, error) {
	m := NewMatcher()
	err := regions.ReadBED(path, 10, func(line int, fields []string) error {
		e, err := parseEntry(fields)
		if err != nil {
			return err
		}
		if e.Name == "" || e.Name == "." {
			e.Name = "hotspot_" + strconv.Itoa(line)
		}
		return m.Add(e)
	})
	if err != nil {
		return nil, fmt.Errorf("load hotspots: %w", err)
	}
	m.Build()
	return m, nil
}

func parseEntry(fields []string) (Entry, error) {
	first, err := regions.ParseRegion(fields[0], fields[1], fields[2])
	if err != nil {
		return Entry{}, err
	}
	second, err := regions.ParseRegion(fields[3], fields[4], fields[5])
	if err != nil {
		return Entry{}, err
	}
	o1, err := sv.ParseOrientation(fields[8])
	if err != nil {
		return Entry{}, err
	}
	o2, err := sv.ParseOrientation(fields[9])
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Name:   fields[6],
		First:  Region{Region: first, Orientation: o1},
		Second: Region{Region: second, Orientation: o2},
	}, nil
}
