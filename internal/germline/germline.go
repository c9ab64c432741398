// Package germline classifies calls as germline or somatic from the read
// support in the reference and tumor samples.
package germline

import (
	"github.com/inodb/vibe-sv/internal/config"
	"github.com/inodb/vibe-sv/internal/sv"
)

// Classifier is safe for concurrent use.
type Classifier struct {
	cfg config.GermlineConfig
}

// NewClassifier creates a classifier.
func NewClassifier(cfg config.GermlineConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Support summarizes the genotypes of a call by sample role.
type Support struct {
	ReferenceAF    float64 // highest reference sample AF
	TumorAF        float64 // highest tumor sample AF
	ReferenceDepth int     // supporting fragments over reference samples
	TumorDepth     int     // supporting fragments over tumor samples
}

// Summarize splits the primary breakend's genotypes into reference and tumor.
func (c *Classifier) Summarize(v *sv.Variant) Support {
	var s Support
	for _, g := range v.Start().Genotypes {
		af := g.AF()
		if c.cfg.ReferenceSample != "" && g.Sample == c.cfg.ReferenceSample {
			s.ReferenceAF = max(s.ReferenceAF, af)
			s.ReferenceDepth += g.Fragments
		} else {
			s.TumorAF = max(s.TumorAF, af)
			s.TumorDepth += g.Fragments
		}
	}
	return s
}

// IsGermline reports whether the reference sample supports the call strongly
// enough, both in allelic frequency and in absolute depth relative to the
// tumor. Reference-only runs classify everything as germline; runs without a
// reference sample classify nothing as germline.
func (c *Classifier) IsGermline(v *sv.Variant) bool {
	if c.cfg.ReferenceOnly {
		return true
	}
	if c.cfg.ReferenceSample == "" {
		return false
	}
	s := c.Summarize(v)
	if s.ReferenceAF < c.cfg.AFThreshold*s.TumorAF {
		return false
	}
	if s.TumorDepth == 0 {
		return s.ReferenceDepth > 0
	}
	return float64(s.ReferenceDepth)/float64(s.TumorDepth) >= c.cfg.ADThreshold
}

// Apply sets the germline flag of v. Filters are never touched.
func (c *Classifier) Apply(v *sv.Variant) bool {
	v.Germline = c.IsGermline(v)
	return v.Germline
}
