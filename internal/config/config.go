// Package config holds the thresholds and reference data paths consumed by
// the filtering pipeline. A Config is built once per run and passed
// explicitly to every component.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// FilterConfig configures the Filter Engine.
type FilterConfig struct {
	MinQualBreakEnd   float64 `mapstructure:"min_qual_break_end" yaml:"min_qual_break_end"`
	MinQualBreakPoint float64 `mapstructure:"min_qual_break_point" yaml:"min_qual_break_point"`
	MinLength         int     `mapstructure:"min_length" yaml:"min_length"`

	MinTumorAF        float64 `mapstructure:"min_tumor_af" yaml:"min_tumor_af"`
	HotspotMinTumorAF float64 `mapstructure:"hotspot_min_tumor_af" yaml:"hotspot_min_tumor_af"`
	SGLMinTumorAF     float64 `mapstructure:"sgl_min_tumor_af" yaml:"sgl_min_tumor_af"`

	MinSupport        int `mapstructure:"min_support" yaml:"min_support"`
	HotspotMinSupport int `mapstructure:"hotspot_min_support" yaml:"hotspot_min_support"`
	SGLMinSupport     int `mapstructure:"sgl_min_support" yaml:"sgl_min_support"`

	// FragmentLengthMedian of 0 disables the short fragment length test.
	FragmentLengthMedian float64 `mapstructure:"fragment_length_median" yaml:"fragment_length_median"`
	FragmentLengthSD     float64 `mapstructure:"fragment_length_sd" yaml:"fragment_length_sd"`
	AvgFragFactor        float64 `mapstructure:"avg_frag_factor" yaml:"avg_frag_factor"`

	FilterSGLs bool `mapstructure:"filter_sgls" yaml:"filter_sgls"`
}

// GermlineConfig configures the Germline Classifier.
type GermlineConfig struct {
	AFThreshold     float64 `mapstructure:"af_threshold" yaml:"af_threshold"`
	ADThreshold     float64 `mapstructure:"ad_threshold" yaml:"ad_threshold"`
	ReferenceSample string  `mapstructure:"reference_sample" yaml:"reference_sample"`
	ReferenceOnly   bool    `mapstructure:"reference_only" yaml:"reference_only"`
}

// LineConfig sets the proximity window for LINE insertion site pairs.
type LineConfig struct {
	MaxIndelGap     int `mapstructure:"max_indel_gap" yaml:"max_indel_gap"`
	MaxIndelOverlap int `mapstructure:"max_indel_overlap" yaml:"max_indel_overlap"`
}

// Window returns the larger of the gap and overlap limits.
func (c LineConfig) Window() int {
	return max(c.MaxIndelGap, c.MaxIndelOverlap)
}

// DedupConfig configures single-ended duplicate resolution.
type DedupConfig struct {
	SGLMaxSeek    int `mapstructure:"sgl_max_seek" yaml:"sgl_max_seek"`
	SGLAdditional int `mapstructure:"sgl_additional" yaml:"sgl_additional"`
}

// PONConfig configures the panel-of-normals annotator.
type PONConfig struct {
	DistanceMargin int    `mapstructure:"distance_margin" yaml:"distance_margin"`
	SGLPath        string `mapstructure:"sgl_path" yaml:"sgl_path"`
	SVPath         string `mapstructure:"sv_path" yaml:"sv_path"`
}

// ReferenceConfig points at the reference data files loaded before a run.
type ReferenceConfig struct {
	Hotspots       string `mapstructure:"hotspots" yaml:"hotspots"`
	LowQualRegions string `mapstructure:"low_qual_regions" yaml:"low_qual_regions"`
	TargetRegions  string `mapstructure:"target_regions" yaml:"target_regions"`
}

// Config is the complete run configuration.
type Config struct {
	Filter     FilterConfig    `mapstructure:"filter" yaml:"filter"`
	Germline   GermlineConfig  `mapstructure:"germline" yaml:"germline"`
	Line       LineConfig      `mapstructure:"line" yaml:"line"`
	Dedup      DedupConfig     `mapstructure:"dedup" yaml:"dedup"`
	PON        PONConfig       `mapstructure:"pon" yaml:"pon"`
	References ReferenceConfig `mapstructure:"references" yaml:"references"`

	// Workers bounds per-pass parallelism; 0 means runtime.NumCPU().
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Filter: FilterConfig{
			MinQualBreakEnd:   1000,
			MinQualBreakPoint: 400,
			MinLength:         32,
			MinTumorAF:        0.005,
			HotspotMinTumorAF: 0.001,
			SGLMinTumorAF:     0.015,
			MinSupport:        2,
			HotspotMinSupport: 1,
			SGLMinSupport:     3,
			AvgFragFactor:     0.8,
		},
		Germline: GermlineConfig{
			AFThreshold: 0.1,
			ADThreshold: 0.1,
		},
		Line: LineConfig{
			MaxIndelGap:     30,
			MaxIndelOverlap: 30,
		},
		Dedup: DedupConfig{
			SGLMaxSeek:    1000,
			SGLAdditional: 0,
		},
		PON: PONConfig{
			DistanceMargin: 3,
		},
	}
}

// SetDefaults registers every default with v so that unset keys resolve and
// appear in v.AllSettings().
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("filter.min_qual_break_end", d.Filter.MinQualBreakEnd)
	v.SetDefault("filter.min_qual_break_point", d.Filter.MinQualBreakPoint)
	v.SetDefault("filter.min_length", d.Filter.MinLength)
	v.SetDefault("filter.min_tumor_af", d.Filter.MinTumorAF)
	v.SetDefault("filter.hotspot_min_tumor_af", d.Filter.HotspotMinTumorAF)
	v.SetDefault("filter.sgl_min_tumor_af", d.Filter.SGLMinTumorAF)
	v.SetDefault("filter.min_support", d.Filter.MinSupport)
	v.SetDefault("filter.hotspot_min_support", d.Filter.HotspotMinSupport)
	v.SetDefault("filter.sgl_min_support", d.Filter.SGLMinSupport)
	v.SetDefault("filter.fragment_length_median", d.Filter.FragmentLengthMedian)
	v.SetDefault("filter.fragment_length_sd", d.Filter.FragmentLengthSD)
	v.SetDefault("filter.avg_frag_factor", d.Filter.AvgFragFactor)
	v.SetDefault("filter.filter_sgls", d.Filter.FilterSGLs)
	v.SetDefault("germline.af_threshold", d.Germline.AFThreshold)
	v.SetDefault("germline.ad_threshold", d.Germline.ADThreshold)
	v.SetDefault("germline.reference_sample", d.Germline.ReferenceSample)
	v.SetDefault("germline.reference_only", d.Germline.ReferenceOnly)
	v.SetDefault("line.max_indel_gap", d.Line.MaxIndelGap)
	v.SetDefault("line.max_indel_overlap", d.Line.MaxIndelOverlap)
	v.SetDefault("dedup.sgl_max_seek", d.Dedup.SGLMaxSeek)
	v.SetDefault("dedup.sgl_additional", d.Dedup.SGLAdditional)
	v.SetDefault("pon.distance_margin", d.PON.DistanceMargin)
	v.SetDefault("pon.sgl_path", d.PON.SGLPath)
	v.SetDefault("pon.sv_path", d.PON.SVPath)
	v.SetDefault("references.hotspots", d.References.Hotspots)
	v.SetDefault("references.low_qual_regions", d.References.LowQualRegions)
	v.SetDefault("references.target_regions", d.References.TargetRegions)
	v.SetDefault("workers", d.Workers)
}

// Load unmarshals v over the defaults and validates the result. Targeted
// panel mode (a target region file is configured) turns on SGL filtering.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.References.TargetRegions != "" {
		cfg.Filter.FilterSGLs = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TargetMode reports whether the run is restricted to a targeted panel.
func (c *Config) TargetMode() bool {
	return c.References.TargetRegions != ""
}

// Validate checks that thresholds are usable.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	f := c.Filter
	check(f.MinQualBreakEnd >= 0, "filter.min_qual_break_end must be >= 0, got %v", f.MinQualBreakEnd)
	check(f.MinQualBreakPoint >= 0, "filter.min_qual_break_point must be >= 0, got %v", f.MinQualBreakPoint)
	check(f.MinLength >= 0, "filter.min_length must be >= 0, got %d", f.MinLength)
	for _, af := range []struct {
		key string
		val float64
	}{
		{"filter.min_tumor_af", f.MinTumorAF},
		{"filter.hotspot_min_tumor_af", f.HotspotMinTumorAF},
		{"filter.sgl_min_tumor_af", f.SGLMinTumorAF},
	} {
		check(af.val >= 0 && af.val <= 1, "%s must be within [0,1], got %v", af.key, af.val)
	}
	check(f.MinSupport >= 0 && f.HotspotMinSupport >= 0 && f.SGLMinSupport >= 0, "filter support thresholds must be >= 0")
	check(f.FragmentLengthMedian >= 0 && f.FragmentLengthSD >= 0, "fragment length statistics must be >= 0")
	check(f.AvgFragFactor >= 0, "filter.avg_frag_factor must be >= 0, got %v", f.AvgFragFactor)
	check(c.Germline.AFThreshold >= 0, "germline.af_threshold must be >= 0, got %v", c.Germline.AFThreshold)
	check(c.Germline.ADThreshold >= 0, "germline.ad_threshold must be >= 0, got %v", c.Germline.ADThreshold)
	check(c.Line.MaxIndelGap >= 0 && c.Line.MaxIndelOverlap >= 0, "line window must be >= 0")
	check(c.Dedup.SGLMaxSeek >= 0 && c.Dedup.SGLAdditional >= 0, "dedup distances must be >= 0")
	check(c.PON.DistanceMargin >= 0, "pon.distance_margin must be >= 0, got %d", c.PON.DistanceMargin)
	check(c.Workers >= 0, "workers must be >= 0, got %d", c.Workers)
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
