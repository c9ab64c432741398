package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-sv/internal/config"
	"github.com/inodb/vibe-sv/internal/duckdb"
	"github.com/inodb/vibe-sv/internal/filter"
	"github.com/inodb/vibe-sv/internal/hotspot"
	"github.com/inodb/vibe-sv/internal/output"
	"github.com/inodb/vibe-sv/internal/pipeline"
	"github.com/inodb/vibe-sv/internal/pon"
	"github.com/inodb/vibe-sv/internal/regions"
	"github.com/inodb/vibe-sv/internal/vcf"
)

type filterOptions struct {
	outputFormat string
	outputFile   string
	dbPath       string
	fresh        bool
}

func newFilterCmd() *cobra.Command {
	var opts filterOptions

	cmd := &cobra.Command{
		Use:   "filter [flags] <input.vcf>",
		Short: "Annotate, filter and deduplicate structural variant calls",
		Long: `Annotate, filter and deduplicate structural variant calls from a VCF.

Calls are never removed: every call is written with its FILTER reasons
(PASS when none apply) and status flags.`,
		Example: `  vibe-sv filter calls.vcf.gz
  vibe-sv filter -f vcf -o filtered.vcf calls.vcf
  vibe-sv filter --hotspots hotspots.bedpe --pon-sv pon.bedpe calls.vcf
  vibe-sv filter --db results.duckdb calls.vcf
  cat calls.vcf | vibe-sv filter -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}

			out := io.Writer(os.Stdout)
			if opts.outputFile != "" {
				f, err := os.Create(opts.outputFile)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				out = f
			}
			return runFilter(cmd.Context(), logger, cfg, args[0], out, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.outputFormat, "output-format", "f", "tab", "Output format: tab, vcf")
	flags.StringVarP(&opts.outputFile, "output", "o", "", "Output file (default: stdout)")
	flags.StringVar(&opts.dbPath, "db", "", "Also store results in this DuckDB database")
	flags.BoolVar(&opts.fresh, "fresh", false, "Clear runs already stored in --db before storing this one")

	flags.String("hotspots", "", "Hotspot BEDPE file")
	flags.String("low-qual-regions", "", "Low quality regions BED file")
	flags.String("target-regions", "", "Target panel BED file; enables SGL filtering")
	flags.String("pon-sgl", "", "Single breakend panel of normals BED file")
	flags.String("pon-sv", "", "Breakpoint panel of normals BEDPE file")
	flags.String("reference-sample", "", "Name of the reference (normal) sample")
	flags.Int("workers", 0, "Parallel workers per pass (0 = number of CPUs)")

	for key, flag := range map[string]string{
		"references.hotspots":         "hotspots",
		"references.low_qual_regions": "low-qual-regions",
		"references.target_regions":   "target-regions",
		"pon.sgl_path":                "pon-sgl",
		"pon.sv_path":                 "pon-sv",
		"germline.reference_sample":   "reference-sample",
		"workers":                     "workers",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	return cmd
}

// references holds the reference data loaded before ingestion.
type references struct {
	hotspots *hotspot.Matcher
	lowQual  *regions.Set
	panel    *regions.Set
	pon      *pon.Store
}

func (r *references) Close() error {
	if r.pon != nil {
		return r.pon.Close()
	}
	return nil
}

// loadReferences loads every configured reference file. Any failure aborts
// the run.
func loadReferences(cfg *config.Config, logger *zap.Logger) (*references, error) {
	refs := &references{}
	var err error

	if path := cfg.References.Hotspots; path != "" {
		if refs.hotspots, err = hotspot.Load(path); err != nil {
			return nil, err
		}
		logger.Info("loaded hotspots", zap.String("path", path), zap.Int("entries", refs.hotspots.Len()))
	}
	if path := cfg.References.LowQualRegions; path != "" {
		if refs.lowQual, err = regions.LoadBED(path); err != nil {
			return nil, fmt.Errorf("low quality regions: %w", err)
		}
		logger.Info("loaded low quality regions", zap.String("path", path), zap.Int("regions", refs.lowQual.Len()))
	}
	if path := cfg.References.TargetRegions; path != "" {
		if refs.panel, err = regions.LoadBED(path); err != nil {
			return nil, fmt.Errorf("target regions: %w", err)
		}
		logger.Info("loaded target regions", zap.String("path", path), zap.Int("regions", refs.panel.Len()))
	}

	if cfg.PON.SGLPath == "" && cfg.PON.SVPath == "" {
		return refs, nil
	}
	if refs.pon, err = pon.Open(""); err != nil {
		return nil, fmt.Errorf("open panel of normals: %w", err)
	}
	if path := cfg.PON.SGLPath; path != "" {
		if err := refs.pon.LoadSGL(path); err != nil {
			refs.Close()
			return nil, err
		}
	}
	if path := cfg.PON.SVPath; path != "" {
		if err := refs.pon.LoadSV(path); err != nil {
			refs.Close()
			return nil, err
		}
	}
	if !refs.pon.Loaded() {
		logger.Warn("panel of normals files hold no entries",
			zap.String("sgl", cfg.PON.SGLPath),
			zap.String("sv", cfg.PON.SVPath))
		refs.Close()
		refs.pon = nil
		return refs, nil
	}
	sgl, pairs, err := refs.pon.Count()
	if err != nil {
		refs.Close()
		return nil, err
	}
	logger.Info("loaded panel of normals", zap.Int64("sgl", sgl), zap.Int64("sv", pairs))
	return refs, nil
}

func runFilter(ctx context.Context, logger *zap.Logger, cfg *config.Config, inputPath string, out io.Writer, opts filterOptions) error {
	if opts.outputFormat != "tab" && opts.outputFormat != "vcf" {
		return fmt.Errorf("unknown output format %q", opts.outputFormat)
	}
	started := time.Now()

	refs, err := loadReferences(cfg, logger)
	if err != nil {
		return err
	}
	defer refs.Close()

	parser, err := vcf.NewParser(inputPath)
	if err != nil {
		return err
	}
	defer parser.Close()

	ingester := vcf.NewIngester()
	ingester.SetLogger(logger)
	if refs.panel != nil {
		ingester.SetPanel(refs.panel)
	}
	ingester.SetHotspots(refs.hotspots)

	cs, err := ingester.Ingest(parser)
	if err != nil {
		return err
	}

	var lowQual filter.RegionLookup
	if refs.lowQual != nil {
		lowQual = refs.lowQual
	}
	p := pipeline.New(cfg, refs.hotspots, lowQual)
	p.SetLogger(logger)
	if refs.pon != nil {
		ann := pon.NewAnnotator(refs.pon, cfg.PON.DistanceMargin)
		ann.SetLogger(logger)
		p.AddAnnotator(ann)
	}

	metrics, err := p.Run(ctx, cs.Variants)
	if err != nil {
		return err
	}
	metrics.Incomplete = cs.Stats.Incomplete
	metrics.Log(logger)

	if err := writeOutput(out, opts.outputFormat, cs); err != nil {
		return err
	}

	if opts.dbPath != "" {
		if err := storeResults(opts.dbPath, opts.fresh, inputPath, started, cs, metrics); err != nil {
			return err
		}
		logger.Info("stored results", zap.String("db", opts.dbPath))
	}
	return nil
}

func writeOutput(out io.Writer, format string, cs *vcf.CallSet) error {
	switch format {
	case "vcf":
		w := output.NewVCFWriter(out, cs.Header)
		if err := w.WriteHeader(); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		for _, rec := range cs.Records {
			if err := w.Write(rec); err != nil {
				return fmt.Errorf("write record: %w", err)
			}
		}
		return w.Flush()
	default:
		w := output.NewTabWriter(out)
		if err := w.WriteHeader(); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		for _, v := range cs.Variants {
			if err := w.Write(v); err != nil {
				return fmt.Errorf("write variant: %w", err)
			}
		}
		return w.Flush()
	}
}

func storeResults(dbPath string, fresh bool, inputPath string, started time.Time, cs *vcf.CallSet, m *pipeline.Metrics) error {
	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if fresh {
		if err := store.ClearResults(); err != nil {
			return fmt.Errorf("clear stored runs: %w", err)
		}
	}

	fp := duckdb.FileFingerprint{Path: inputPath}
	if inputPath != "-" {
		if fp, err = duckdb.StatFile(inputPath); err != nil {
			return err
		}
	}

	runID, err := store.RecordRun(fp, started, m.Variants, m.Passing)
	if err != nil {
		return err
	}
	return store.WriteResults(runID, duckdb.ResultsFromVariants(cs.Variants))
}
