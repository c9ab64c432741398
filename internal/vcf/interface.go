// Package vcf reads structural variant calls from VCF files and turns them
// into breakend-level calls.
package vcf

// RecordReader is the interface for sources of VCF records.
type RecordReader interface {
	// Next reads the next record.
	// Returns nil, nil when there are no more records.
	Next() (*Record, error)

	// Header returns the meta-information and #CHROM lines.
	Header() []string

	// SampleNames returns the sample columns named in the #CHROM line.
	SampleNames() []string

	// LineNumber returns the current line number being processed.
	LineNumber() int

	// Close closes the reader and releases resources.
	Close() error
}
