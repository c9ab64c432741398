// Package pipeline runs the annotation, filtering and deduplication passes
// over a call set in their required order.
package pipeline

import (
	"context"
	"fmt"

	"github.com/exascience/pargo/parallel"
	"go.uber.org/zap"

	"github.com/inodb/vibe-sv/internal/config"
	"github.com/inodb/vibe-sv/internal/dedup"
	"github.com/inodb/vibe-sv/internal/filter"
	"github.com/inodb/vibe-sv/internal/germline"
	"github.com/inodb/vibe-sv/internal/hotspot"
	"github.com/inodb/vibe-sv/internal/line"
	"github.com/inodb/vibe-sv/internal/sv"
)

// Annotator adds external annotation after deduplication, such as panel of
// normals counts or repeat masking.
type Annotator interface {
	Name() string
	Annotate(ctx context.Context, variants []*sv.Variant) error
}

// Pipeline holds the configured passes. A Pipeline may be reused, but Run
// must not be called concurrently on overlapping call sets.
type Pipeline struct {
	cfg        *config.Config
	hotspots   *hotspot.Matcher
	filter     *filter.Engine
	germline   *germline.Classifier
	line       *line.Detector
	single     *dedup.SingleResolver
	annotators []Annotator
	logger     *zap.Logger

	// afterPass, when set, is called with the pass name once each pass is done.
	afterPass func(pass string, variants []*sv.Variant)
}

// New creates a pipeline. hotspots and lowQual may be nil.
func New(cfg *config.Config, hotspots *hotspot.Matcher, lowQual filter.RegionLookup) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		hotspots: hotspots,
		filter:   filter.NewEngine(cfg.Filter, lowQual),
		germline: germline.NewClassifier(cfg.Germline),
		line:     line.NewDetector(cfg.Line, cfg.Workers),
		single:   dedup.NewSingleResolver(cfg.Dedup, nil),
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger of the pipeline and its passes.
func (p *Pipeline) SetLogger(l *zap.Logger) {
	p.logger = l
	p.filter.SetLogger(l)
	p.line.SetLogger(l)
	p.single.SetLogger(l)
}

// SetKeepPolicy replaces the single-ended duplicate keep policy.
func (p *Pipeline) SetKeepPolicy(policy dedup.KeepPolicy) {
	p.single = dedup.NewSingleResolver(p.cfg.Dedup, policy)
	p.single.SetLogger(p.logger)
}

// AddAnnotator appends an annotator; annotators run in the order added.
func (p *Pipeline) AddAnnotator(a Annotator) {
	p.annotators = append(p.annotators, a)
}

// Run executes every pass over variants. Calls are only ever flagged, never
// removed.
func (p *Pipeline) Run(ctx context.Context, variants []*sv.Variant) (*Metrics, error) {
	m := &Metrics{Variants: len(variants)}

	idx := sv.BuildIndex(variants)
	p.logger.Info("built breakend index",
		zap.Int("breakends", idx.Len()),
		zap.Int("chromosomes", len(idx.Chromosomes())))

	parallel.Range(0, len(variants), p.cfg.Workers, func(low, high int) {
		for _, v := range variants[low:high] {
			if !v.Hotspot {
				v.Hotspot = p.hotspots.Match(v)
			}
			p.filter.Apply(v)
		}
	})
	p.done("filter", variants)
	p.logger.Info("filter pass complete", zap.Int("filtered", countFiltered(variants)))

	parallel.Range(0, len(variants), p.cfg.Workers, func(low, high int) {
		for _, v := range variants[low:high] {
			p.germline.Apply(v)
		}
	})
	p.done("germline", variants)

	lineStats, err := p.line.Detect(ctx, idx)
	if err != nil {
		return nil, err
	}
	rescue := line.AdjustLineSites(variants)
	m.LineLinked = lineStats.Linked
	m.RemoteSources = lineStats.RemoteSources
	m.Rescued = rescue.Rescued
	m.GermlinePromoted = rescue.Germline
	p.done("line", variants)
	p.logger.Info("LINE pass complete",
		zap.Int("lineSites", lineStats.Linked),
		zap.Int("remoteSources", lineStats.RemoteSources),
		zap.Int("rescued", rescue.Rescued))

	m.Duplicates = dedup.Exact(idx)
	m.SGLDuplicates = p.single.Resolve(idx, variants)
	p.done("dedup", variants)
	p.logger.Info("deduplication complete",
		zap.Int("duplicates", m.Duplicates),
		zap.Int("sglDuplicates", m.SGLDuplicates))

	for _, a := range p.annotators {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := a.Annotate(ctx, variants); err != nil {
			return nil, fmt.Errorf("%s annotation: %w", a.Name(), err)
		}
	}
	p.done("annotate", variants)

	m.tally(variants)
	return m, nil
}

func (p *Pipeline) done(pass string, variants []*sv.Variant) {
	if p.afterPass != nil {
		p.afterPass(pass, variants)
	}
}

func countFiltered(variants []*sv.Variant) int {
	n := 0
	for _, v := range variants {
		if v.IsFiltered() {
			n++
		}
	}
	return n
}
