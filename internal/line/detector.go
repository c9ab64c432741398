// Package line cross-links breakend pairs that mark a LINE (retrotransposon)
// insertion site and propagates germline and PASS status between the linked
// calls.
package line

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/vibe-sv/internal/config"
	"github.com/inodb/vibe-sv/internal/sv"
)

// Stats counts the outcome of a detection pass.
type Stats struct {
	Linked        int // breakend pairs cross-linked
	RemoteSources int // breakends marked as remote donor loci
}

// Detector finds LINE insertion sites in a breakend index.
type Detector struct {
	cfg     config.LineConfig
	workers int
	logger  *zap.Logger
}

// NewDetector creates a detector. workers bounds the number of chromosomes
// processed at once; 0 means runtime.NumCPU().
func NewDetector(cfg config.LineConfig, workers int) *Detector {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Detector{cfg: cfg, workers: workers, logger: zap.NewNop()}
}

// SetLogger sets the logger.
func (d *Detector) SetLogger(l *zap.Logger) {
	d.logger = l
}

// Detect walks each chromosome of idx once, in parallel across chromosomes,
// setting LinePartner and RemoteSource on the breakends it visits. Only
// breakends of the chromosome being walked are written.
func (d *Detector) Detect(ctx context.Context, idx *sv.BreakendIndex) (Stats, error) {
	chroms := idx.Chromosomes()
	perChrom := make([]Stats, len(chroms))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, chrom := range chroms {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perChrom[i] = d.detectChromosome(idx.Breakends(chrom))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, fmt.Errorf("detect LINE sites: %w", err)
	}

	var total Stats
	for _, s := range perChrom {
		total.Linked += s.Linked
		total.RemoteSources += s.RemoteSources
	}
	return total, nil
}

func (d *Detector) detectChromosome(list []*sv.Breakend) Stats {
	var s Stats
	for i := 0; i+1 < len(list); i++ {
		b, next := list[i], list[i+1]
		if b.Variant() == next.Variant() {
			continue
		}
		if !b.LineInsertion && !next.LineInsertion {
			continue
		}
		if !d.adjacent(b, next) {
			continue
		}

		bRemote := d.isRemote(b)
		nextRemote := d.isRemote(next)
		for _, r := range []struct {
			b      *sv.Breakend
			remote bool
		}{{b, bRemote}, {next, nextRemote}} {
			if r.remote && !r.b.RemoteSource {
				r.b.RemoteSource = true
				s.RemoteSources++
			}
		}
		if bRemote || nextRemote {
			continue
		}

		if b.LinePartner != nil || next.LinePartner != nil {
			continue
		}
		b.LinePartner = next
		next.LinePartner = b
		s.Linked++
		d.logger.Debug("linked LINE site",
			zap.String("chrom", b.Chrom),
			zap.Int("pos", b.Position),
			zap.Int("partner_pos", next.Position))
	}
	return s
}

// adjacent reports whether two breakends, lower first, face each other
// closely enough to flank one insertion: a forward breakend followed by a
// reverse one within the indel gap, or a reverse one followed by a forward
// one within the indel overlap.
func (d *Detector) adjacent(lower, upper *sv.Breakend) bool {
	if lower.Orientation == upper.Orientation {
		return false
	}
	dist := upper.Position - lower.Position
	if lower.Orientation == sv.Forward {
		return dist <= d.cfg.MaxIndelGap
	}
	return dist <= d.cfg.MaxIndelOverlap
}

// isRemote reports whether b is a donor locus: its call is not a known LINE
// site and none of the call's assembled junctions lie near b. A call without
// usable junction annotation has nothing near b, so it is remote too.
func (d *Detector) isRemote(b *sv.Breakend) bool {
	v := b.Variant()
	if v.LineSite {
		return false
	}
	junctions := v.Junctions()
	if err := v.JunctionError(); err != nil {
		d.logger.Warn("malformed assembly junction",
			zap.String("id", v.ID),
			zap.String("chrom", b.Chrom),
			zap.Int("pos", b.Position),
			zap.Error(err))
	}
	window := d.cfg.Window()
	for _, j := range junctions {
		if j.Chrom != b.Chrom {
			continue
		}
		dist := j.Position - b.Position
		if dist < 0 {
			dist = -dist
		}
		if dist <= window {
			return false
		}
	}
	return true
}
