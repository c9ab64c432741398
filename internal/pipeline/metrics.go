package pipeline

import (
	"go.uber.org/zap"

	"github.com/inodb/vibe-sv/internal/sv"
)

// Metrics summarizes one run.
type Metrics struct {
	Variants         int
	Incomplete       int // set by the caller from ingestion
	Passing          int
	Filtered         int
	Hotspots         int
	Germline         int
	LineLinked       int
	RemoteSources    int
	Rescued          int
	GermlinePromoted int
	Duplicates       int
	SGLDuplicates    int
}

func (m *Metrics) tally(variants []*sv.Variant) {
	for _, v := range variants {
		if v.IsPass() {
			m.Passing++
		} else {
			m.Filtered++
		}
		if v.Hotspot {
			m.Hotspots++
		}
		if v.Germline {
			m.Germline++
		}
	}
}

// Log writes the metrics at info level.
func (m *Metrics) Log(l *zap.Logger) {
	l.Info("run complete",
		zap.Int("variants", m.Variants),
		zap.Int("incomplete", m.Incomplete),
		zap.Int("passing", m.Passing),
		zap.Int("filtered", m.Filtered),
		zap.Int("hotspots", m.Hotspots),
		zap.Int("germline", m.Germline),
		zap.Int("lineSites", m.LineLinked),
		zap.Int("remoteSources", m.RemoteSources),
		zap.Int("rescued", m.Rescued),
		zap.Int("duplicates", m.Duplicates+m.SGLDuplicates))
}
