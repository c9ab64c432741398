package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-sv/internal/vcf"
)

// INFO keys added to every written record.
const (
	infoHotspot      = "HOTSPOT"
	infoGermline     = "GERMLINE"
	infoPonCount     = "PONCOUNT"
	infoLinePartner  = "LINEPARTNER"
	infoRemoteSource = "REMOTESOURCE"
)

var addedInfo = map[string]bool{
	infoHotspot:      true,
	infoGermline:     true,
	infoPonCount:     true,
	infoLinePartner:  true,
	infoRemoteSource: true,
}

var headerAdditions = []string{
	`##FILTER=<ID=minSupport,Description="Insufficient supporting fragments">`,
	`##FILTER=<ID=minTumorAF,Description="Allelic frequency below threshold">`,
	`##FILTER=<ID=minQual,Description="Quality below threshold">`,
	`##FILTER=<ID=minLength,Description="Event shorter than minimum length">`,
	`##FILTER=<ID=shortFragLength,Description="Average fragment length significantly below the library median">`,
	`##FILTER=<ID=sgl,Description="Single breakend in targeted panel mode">`,
	`##FILTER=<ID=dedup,Description="Duplicate of another call">`,
	`##FILTER=<ID=PON,Description="Found in panel of normals">`,
	`##INFO=<ID=HOTSPOT,Number=0,Type=Flag,Description="Matches a known hotspot">`,
	`##INFO=<ID=GERMLINE,Number=0,Type=Flag,Description="Classified as germline">`,
	`##INFO=<ID=PONCOUNT,Number=1,Type=Integer,Description="Number of panel of normals entries matched">`,
	`##INFO=<ID=LINEPARTNER,Number=1,Type=String,Description="Linked LINE insertion site breakend">`,
	`##INFO=<ID=REMOTESOURCE,Number=0,Type=Flag,Description="Remote LINE donor locus">`,
}

// VCFWriter re-emits ingested records with updated FILTER values and status
// INFO fields. Records that were not ingested into a call are skipped.
type VCFWriter struct {
	w           *bufio.Writer
	headerLines []string // original VCF header lines (## and #CHROM)
}

// NewVCFWriter creates a new VCF output writer.
func NewVCFWriter(w io.Writer, headerLines []string) *VCFWriter {
	return &VCFWriter{
		w:           bufio.NewWriter(w),
		headerLines: headerLines,
	}
}

// WriteHeader writes the original header with FILTER and INFO definitions
// inserted before #CHROM. Definitions already present are not repeated.
func (vw *VCFWriter) WriteHeader() error {
	existing := make(map[string]bool, len(vw.headerLines))
	for _, line := range vw.headerLines {
		existing[headerID(line)] = true
	}

	for _, line := range vw.headerLines {
		if strings.HasPrefix(line, "#CHROM") {
			for _, add := range headerAdditions {
				if existing[headerID(add)] {
					continue
				}
				if _, err := vw.w.WriteString(add + "\n"); err != nil {
					return err
				}
			}
		}
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// headerID returns the "##FILTER=<ID=x" prefix of a definition line.
func headerID(line string) string {
	if i := strings.IndexByte(line, ','); i >= 0 {
		return line[:i]
	}
	return line
}

// Write writes one record.
func (vw *VCFWriter) Write(rec *vcf.Record) error {
	v := rec.Call
	if v == nil {
		return nil
	}

	var lb strings.Builder
	lb.Grow(256)

	lb.WriteString(rec.Chrom)
	lb.WriteByte('\t')
	lb.WriteString(strconv.Itoa(rec.Pos))
	lb.WriteByte('\t')
	lb.WriteString(rec.ID)
	lb.WriteByte('\t')
	lb.WriteString(rec.Ref)
	lb.WriteByte('\t')
	lb.WriteString(rec.Alt)
	lb.WriteByte('\t')
	if rec.Qual != 0 {
		lb.WriteString(strconv.FormatFloat(rec.Qual, 'g', -1, 64))
	} else {
		lb.WriteByte('.')
	}
	lb.WriteByte('\t')
	lb.WriteString(v.Filters().String())
	lb.WriteByte('\t')

	info := formatInfo(rec.RawInfo)
	var extra []string
	if v.Hotspot {
		extra = append(extra, infoHotspot)
	}
	if v.Germline {
		extra = append(extra, infoGermline)
	}
	if v.PonCount > 0 {
		extra = append(extra, infoPonCount+"="+strconv.Itoa(v.PonCount))
	}
	if b := rec.Leg; b != nil {
		if b.LinePartner != nil {
			extra = append(extra, infoLinePartner+"="+b.LinePartner.Coords().String())
		}
		if b.RemoteSource {
			extra = append(extra, infoRemoteSource)
		}
	}
	switch {
	case len(extra) == 0:
		lb.WriteString(info)
	case info == ".":
		lb.WriteString(strings.Join(extra, ";"))
	default:
		lb.WriteString(info)
		lb.WriteByte(';')
		lb.WriteString(strings.Join(extra, ";"))
	}

	if rec.SampleColumns != "" {
		lb.WriteByte('\t')
		lb.WriteString(rec.SampleColumns)
	}

	lb.WriteByte('\n')
	_, err := vw.w.WriteString(lb.String())
	return err
}

// Flush flushes the underlying writer.
func (vw *VCFWriter) Flush() error {
	return vw.w.Flush()
}

// formatInfo strips fields this writer sets from the raw INFO string.
func formatInfo(rawInfo string) string {
	if rawInfo == "" || rawInfo == "." {
		return "."
	}

	var b strings.Builder
	for rest := rawInfo; rest != ""; {
		semi := strings.IndexByte(rest, ';')
		var field string
		if semi >= 0 {
			field = rest[:semi]
			rest = rest[semi+1:]
		} else {
			field = rest
			rest = ""
		}
		key, _, _ := strings.Cut(field, "=")
		if addedInfo[key] {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		b.WriteString(field)
	}

	if b.Len() == 0 {
		return "."
	}
	return b.String()
}
