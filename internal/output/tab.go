// Package output provides call set output formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-sv/internal/sv"
)

// TabWriter writes one tab-delimited row per breakend.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#ID",
			"Breakend",
			"Location",
			"Orientation",
			"Mate",
			"Type",
			"Qual",
			"Filter",
			"Flags",
			"Support",
			"AF",
			"PON_count",
			"Line_partner",
			"Remote_source",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes the rows of every breakend of v.
func (tw *TabWriter) Write(v *sv.Variant) error {
	filter := v.Filters().String()
	flags := Flags(v)
	qual := strconv.FormatFloat(v.Qual, 'f', -1, 64)

	for _, b := range v.Breakends {
		if b == nil {
			continue
		}

		side := "start"
		if !b.IsStart() {
			side = "end"
		}

		mate := "-"
		if b.Mate != nil {
			mate = b.Mate.String()
		}

		partner := "-"
		if b.LinePartner != nil {
			partner = b.LinePartner.Coords().String()
		}

		remote := "-"
		if b.RemoteSource {
			remote = "YES"
		}

		values := []string{
			v.ID,
			side,
			b.Chrom + ":" + strconv.Itoa(b.Position),
			b.Orientation.String(),
			mate,
			v.Type.String(),
			qual,
			filter,
			flags,
			strconv.Itoa(b.FragmentSupport()),
			strconv.FormatFloat(b.AF(), 'f', 4, 64),
			strconv.Itoa(v.PonCount),
			partner,
			remote,
		}
		if _, err := tw.w.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// Flags returns the comma-joined status flags of v, or "-".
func Flags(v *sv.Variant) string {
	var flags []string
	if v.Hotspot {
		flags = append(flags, "HOTSPOT")
	}
	if v.Germline {
		flags = append(flags, "GERMLINE")
	}
	if v.IsLineSite() {
		flags = append(flags, "LINE")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}
