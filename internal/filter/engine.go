// Package filter decides which soft filters apply to a call. Decisions depend
// only on the call itself and the configured thresholds.
package filter

import (
	"math"

	"go.uber.org/zap"

	"github.com/inodb/vibe-sv/internal/config"
	"github.com/inodb/vibe-sv/internal/sv"
)

// RegionLookup tests whether a position lies in a region of interest.
type RegionLookup interface {
	Contains(chrom string, pos int) bool
}

// Engine evaluates the soft filters for one call at a time. It is safe for
// concurrent use; Apply only mutates the call it is given.
type Engine struct {
	cfg     config.FilterConfig
	lowQual RegionLookup
	logger  *zap.Logger
}

// NewEngine creates an engine. lowQual may be nil.
func NewEngine(cfg config.FilterConfig, lowQual RegionLookup) *Engine {
	return &Engine{
		cfg:     cfg,
		lowQual: lowQual,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for debug messages.
func (e *Engine) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Evaluate returns the filters v fails, in a fixed order. It does not modify v.
func (e *Engine) Evaluate(v *sv.Variant) []sv.Filter {
	var failed []sv.Filter
	if e.failsMinSupport(v) {
		failed = append(failed, sv.FilterMinSupport)
	}
	if e.failsMinAF(v) {
		failed = append(failed, sv.FilterMinTumorAF)
	}
	if e.failsMinQual(v) {
		failed = append(failed, sv.FilterMinQual)
	}
	if e.failsMinLength(v) {
		failed = append(failed, sv.FilterMinLength)
	}
	if e.failsShortFragLength(v) {
		failed = append(failed, sv.FilterShortFragLength)
	}
	if e.cfg.FilterSGLs && v.IsSGL() {
		failed = append(failed, sv.FilterSGL)
	}
	return failed
}

// Apply adds every failed filter to v and returns how many were new.
func (e *Engine) Apply(v *sv.Variant) int {
	added := 0
	for _, f := range e.Evaluate(v) {
		if v.AddFilter(f) {
			added++
		}
	}
	if added > 0 && e.logger.Core().Enabled(zap.DebugLevel) {
		e.logger.Debug("variant filtered",
			zap.String("id", v.ID),
			zap.String("filters", v.Filters().String()))
	}
	return added
}

func (e *Engine) supportThreshold(v *sv.Variant) int {
	switch {
	case v.Hotspot:
		return e.cfg.HotspotMinSupport
	case v.IsSGL():
		return e.cfg.SGLMinSupport
	default:
		return e.cfg.MinSupport
	}
}

func (e *Engine) afThreshold(v *sv.Variant) float64 {
	switch {
	case v.Hotspot:
		return e.cfg.HotspotMinTumorAF
	case v.IsSGL():
		return e.cfg.SGLMinTumorAF
	default:
		return e.cfg.MinTumorAF
	}
}

// failsMinSupport is true when no genotype reaches the threshold.
func (e *Engine) failsMinSupport(v *sv.Variant) bool {
	threshold := e.supportThreshold(v)
	for _, g := range v.Start().Genotypes {
		if g.Fragments >= threshold {
			return false
		}
	}
	return threshold > 0
}

func (e *Engine) failsMinAF(v *sv.Variant) bool {
	threshold := e.afThreshold(v)
	for _, g := range v.Start().Genotypes {
		if g.AF() >= threshold {
			return false
		}
	}
	return threshold > 0
}

func (e *Engine) failsMinQual(v *sv.Variant) bool {
	threshold := e.cfg.MinQualBreakPoint
	if v.IsSGL() {
		threshold = e.cfg.MinQualBreakEnd
	}
	if e.inLowQualRegion(v) {
		threshold *= 0.5
	}
	return v.Qual < threshold
}

func (e *Engine) inLowQualRegion(v *sv.Variant) bool {
	if e.lowQual == nil {
		return false
	}
	for _, b := range v.Breakends {
		if b != nil && e.lowQual.Contains(b.Chrom, b.Position) {
			return true
		}
	}
	return false
}

func (e *Engine) failsMinLength(v *sv.Variant) bool {
	length, ok := AdjustedLength(v)
	return ok && length < e.cfg.MinLength
}

// failsShortFragLength applies a sample-size corrected lower-tail test on the
// average fragment length of the split fragments.
func (e *Engine) failsShortFragLength(v *sv.Variant) bool {
	median, sd := e.cfg.FragmentLengthMedian, e.cfg.FragmentLengthSD
	if median <= 0 || v.SplitFragments <= 0 || v.AvgFragmentLength <= 0 {
		return false
	}
	n := float64(v.SplitFragments)
	return v.AvgFragmentLength < median-e.cfg.AvgFragFactor*sd/math.Sqrt(n)
}
