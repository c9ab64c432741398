package vcf

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-sv/internal/hotspot"
	"github.com/inodb/vibe-sv/internal/sv"
)

// INFO and FORMAT keys read during ingestion.
const (
	infoMateID     = "MATEID"
	infoEvent      = "EVENT"
	infoSVType     = "SVTYPE"
	infoEnd        = "END"
	infoCIPos      = "CIPOS"
	infoCIEnd      = "CIEND"
	infoIHomPos    = "IHOMPOS"
	infoHomSeq     = "HOMSEQ"
	infoAsmJunc    = "ASMJUNC"
	infoLineSite   = "LINESITE"
	infoSplitFrags = "SPLITFRAGS"
	infoAvgFragLen = "AVGFRAGLEN"

	formatFragments       = "VF"
	formatSingleFragments = "BVF"
	formatRefReads        = "REF"
	formatRefPairs        = "REFPAIR"
)

// Panel restricts single-ended calls to the regions of a targeted panel.
type Panel interface {
	Contains(chrom string, pos int) bool
}

// Stats counts what happened to the records of one input.
type Stats struct {
	Records        int // data lines read
	Variants       int // calls built
	Incomplete     int // breakend legs whose mate never appeared
	OffTarget      int // single-ended calls outside the panel
	Unsupported    int // records with ALT alleles that describe no breakend
	HotspotRescued int // hotspot calls whose carried-over filters were dropped
}

// CallSet is the result of ingesting one VCF.
type CallSet struct {
	Header   []string
	Samples  []string
	Records  []*Record // every record, in input order
	Variants []*sv.Variant
	Stats    Stats
}

// Ingester builds calls from VCF records.
type Ingester struct {
	panel    Panel
	hotspots *hotspot.Matcher
	logger   *zap.Logger
}

// NewIngester creates an ingester with no panel and no hotspots.
func NewIngester() *Ingester {
	return &Ingester{logger: zap.NewNop()}
}

// SetPanel restricts single-ended calls to p.
func (in *Ingester) SetPanel(p Panel) {
	in.panel = p
}

// SetHotspots sets the matcher used to flag hotspot calls.
func (in *Ingester) SetHotspots(m *hotspot.Matcher) {
	in.hotspots = m
}

// SetLogger sets the logger.
func (in *Ingester) SetLogger(l *zap.Logger) {
	in.logger = l
}

type leg struct {
	rec *Record
	b   *sv.Breakend
}

// Ingest reads every record from r. Breakend records are paired through
// MATEID; legs left without a mate are counted as incomplete and dropped.
func (in *Ingester) Ingest(r RecordReader) (*CallSet, error) {
	cs := &CallSet{Header: r.Header(), Samples: r.SampleNames()}
	pending := make(map[string]*leg)

	for {
		rec, err := r.Next()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			break
		}
		cs.Records = append(cs.Records, rec)
		cs.Stats.Records++

		if err := in.ingestRecord(cs, rec, pending, cs.Samples); err != nil {
			return nil, &ParseError{Line: r.LineNumber(), Message: err.Error()}
		}
	}

	cs.Stats.Incomplete += len(pending)
	cs.Stats.Variants = len(cs.Variants)
	in.logger.Info("ingested calls",
		zap.Int("records", cs.Stats.Records),
		zap.Int("variants", cs.Stats.Variants),
		zap.Int("incomplete", cs.Stats.Incomplete),
		zap.Int("offTarget", cs.Stats.OffTarget))
	return cs, nil
}

func (in *Ingester) ingestRecord(cs *CallSet, rec *Record, pending map[string]*leg, samples []string) error {
	a, err := ParseAlt(rec.Alt)
	if err != nil {
		in.skip(cs, rec, err.Error())
		return nil
	}

	switch a.Kind {
	case AltSingle:
		b, err := newBreakend(rec, rec.Pos, a.Orientation, a.Insert, infoCIPos, samples, formatSingleFragments)
		if err != nil {
			return err
		}
		if in.panel != nil && !in.panel.Contains(b.Chrom, b.Position) {
			cs.Stats.OffTarget++
			return nil
		}
		v, err := sv.NewVariant(callID(rec), sv.SingleEnded, b, nil)
		if err != nil {
			return err
		}
		return in.finish(cs, v, rec)

	case AltSymbolic:
		o, ok := symbolicOrientations[a.Symbol]
		if !ok {
			in.skip(cs, rec, "unsupported symbolic allele")
			return nil
		}
		end, err := rec.InfoInt(infoEnd)
		if err != nil {
			return err
		}
		if end == 0 {
			end = rec.Pos + 1
		}
		start, err := newBreakend(rec, rec.Pos, o[0], "", infoCIPos, samples, formatFragments)
		if err != nil {
			return err
		}
		stop, err := newBreakend(rec, end, o[1], "", infoCIEnd, samples, formatFragments)
		if err != nil {
			return err
		}
		t, _ := sv.ParseType(a.Symbol)
		v, err := sv.NewVariant(callID(rec), t, start, stop)
		if err != nil {
			return err
		}
		return in.finish(cs, v, rec)

	default:
		b, err := newBreakend(rec, rec.Pos, a.Orientation, a.Insert, infoCIPos, samples, formatFragments)
		if err != nil {
			return err
		}
		mateID, _ := rec.InfoString(infoMateID)
		if mate, ok := pending[mateID]; ok && mateID != "" {
			delete(pending, mateID)
			return in.pair(cs, mate, &leg{rec: rec, b: b})
		}
		if rec.ID != "" && rec.ID != "." {
			if _, dup := pending[rec.ID]; dup {
				// The earlier leg with this ID can no longer be paired.
				cs.Stats.Incomplete++
				in.logger.Warn("duplicate breakend ID",
					zap.String("id", rec.ID),
					zap.String("chrom", rec.Chrom),
					zap.Int("pos", rec.Pos))
			}
			pending[rec.ID] = &leg{rec: rec, b: b}
		} else {
			cs.Stats.Incomplete++
		}
		return nil
	}
}

// skip counts a record whose ALT describes no breakend.
func (in *Ingester) skip(cs *CallSet, rec *Record, reason string) {
	cs.Stats.Unsupported++
	in.logger.Warn("skipping record",
		zap.String("reason", reason),
		zap.String("alt", rec.Alt),
		zap.String("chrom", rec.Chrom),
		zap.Int("pos", rec.Pos))
}

func (in *Ingester) pair(cs *CallSet, first, second *leg) error {
	t, ok := sv.ParseType(stringInfo(first.rec, infoSVType))
	if !ok || t == sv.Translocation || t == sv.SingleEnded {
		t = sv.InferType(first.b, second.b)
	}
	v, err := sv.NewVariant(callID(first.rec), t, first.b, second.b)
	if err != nil {
		return err
	}
	return in.finish(cs, v, first.rec, second.rec)
}

// finish copies call-level annotations from the records, applies carried
// over filters and registers the call.
func (in *Ingester) finish(cs *CallSet, v *sv.Variant, recs ...*Record) error {
	first := recs[0]
	v.Qual = first.Qual

	var err error
	if v.SplitFragments, err = first.InfoInt(infoSplitFrags); err != nil {
		return err
	}
	if v.AvgFragmentLength, err = first.InfoFloat(infoAvgFragLen); err != nil {
		return err
	}
	for _, rec := range recs {
		if rec.InfoFlag(infoLineSite) {
			v.LineSite = true
		}
		if v.AssemblyInfo == "" {
			v.AssemblyInfo = stringInfo(rec, infoAsmJunc)
		}
	}
	for _, b := range v.Breakends {
		if b != nil {
			b.LineInsertion = sv.IsLineInsertion(b.InsertSequence, b.Orientation)
		}
	}

	v.Hotspot = in.hotspots.Match(v)
	rescued := false
	for i, rec := range recs {
		rec.Call = v
		rec.Leg = v.Breakends[i]
		tags := rec.Filters()
		if len(tags) == 0 {
			continue
		}
		if v.Hotspot {
			rescued = true
			continue
		}
		for _, tag := range tags {
			f, known := sv.ParseFilter(tag)
			if !known {
				in.logger.Warn("keeping unknown filter tag",
					zap.String("tag", tag),
					zap.String("chrom", rec.Chrom),
					zap.Int("pos", rec.Pos))
			}
			v.AddFilter(f)
		}
	}
	if rescued {
		cs.Stats.HotspotRescued++
	}

	cs.Variants = append(cs.Variants, v)
	return nil
}

func newBreakend(rec *Record, pos int, o sv.Orientation, insert, ciKey string, samples []string, fragKey string) (*sv.Breakend, error) {
	b := &sv.Breakend{
		Chrom:          rec.Chrom,
		Position:       pos,
		Orientation:    o,
		InsertSequence: insert,
		Homology:       stringInfo(rec, infoHomSeq),
	}

	var err error
	if b.ConfidenceStart, b.ConfidenceEnd, err = rec.InfoPair(ciKey); err != nil {
		return nil, err
	}
	if b.InexactHomStart, b.InexactHomEnd, err = rec.InfoPair(infoIHomPos); err != nil {
		return nil, err
	}

	for i := range rec.Samples {
		g := sv.Genotype{}
		if i < len(samples) {
			g.Sample = samples[i]
		}
		if g.Fragments, err = rec.SampleInt(i, fragKey); err != nil {
			return nil, err
		}
		if g.RefReads, err = rec.SampleInt(i, formatRefReads); err != nil {
			return nil, err
		}
		if g.RefPairs, err = rec.SampleInt(i, formatRefPairs); err != nil {
			return nil, err
		}
		b.Genotypes = append(b.Genotypes, g)
	}
	return b, nil
}

// callID names a call after its EVENT, falling back to the record ID.
func callID(rec *Record) string {
	if event := stringInfo(rec, infoEvent); event != "" {
		return event
	}
	if rec.ID == "" || rec.ID == "." {
		return fmt.Sprintf("%s:%d", rec.Chrom, rec.Pos)
	}
	return rec.ID
}

func stringInfo(rec *Record, key string) string {
	s, _ := rec.InfoString(key)
	if s == "." {
		return ""
	}
	return s
}
