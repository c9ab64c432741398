package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-sv/internal/duckdb"
)

type queryOptions struct {
	dbPath   string
	location string
	filter   string
}

func newQueryCmd() *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query [flags] <input.vcf>",
		Short: "Query the results stored by filter --db",
		Long: `Query the breakend rows of the latest stored run over an input file.
The input must be unchanged since that run (same size and modification time).`,
		Example: `  vibe-sv query --db results.duckdb calls.vcf                   # passing breakends
  vibe-sv query --db results.duckdb --filter dedup calls.vcf
  vibe-sv query --db results.duckdb --location 1:1000 calls.vcf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(args[0], opts, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", "", "DuckDB database written by filter --db")
	cmd.Flags().StringVar(&opts.location, "location", "", "Breakend location as chrom:pos")
	cmd.Flags().StringVar(&opts.filter, "filter", "PASS", "FILTER tag to search for")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runQuery(inputPath string, opts queryOptions, out io.Writer) error {
	fp, err := duckdb.StatFile(inputPath)
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}

	store, err := duckdb.Open(opts.dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	run, ok, err := store.LatestRun(fp)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no stored run for %s; run filter --db %s first", inputPath, opts.dbPath)
	}

	var results []duckdb.Result
	if opts.location != "" {
		chrom, pos, err := parseLocation(opts.location)
		if err != nil {
			return err
		}
		results, err = store.LookupLocation(run.ID, chrom, pos)
		if err != nil {
			return err
		}
	} else {
		results, err = store.SearchByFilter(run.ID, opts.filter)
		if err != nil {
			return err
		}
	}
	return writeResults(out, results)
}

// parseLocation splits chrom:pos from the right, so contig names may contain ':'.
func parseLocation(s string) (string, int64, error) {
	i := strings.LastIndexByte(s, ':')
	if i <= 0 {
		return "", 0, fmt.Errorf("invalid location %q: expected chrom:pos", s)
	}
	pos, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil || pos < 1 {
		return "", 0, fmt.Errorf("invalid location %q: bad position", s)
	}
	return s[:i], pos, nil
}

func writeResults(out io.Writer, results []duckdb.Result) error {
	w := bufio.NewWriter(out)
	w.WriteString("#ID\tBreakend\tLocation\tOrientation\tType\tQual\tFilter\tSupport\tAF\tPON_count\tLine_partner\n")
	for _, r := range results {
		partner := r.LinePartner
		if partner == "" {
			partner = "-"
		}
		w.WriteString(strings.Join([]string{
			r.VariantID,
			r.Breakend,
			r.Chrom + ":" + strconv.FormatInt(r.Pos, 10),
			r.Orientation,
			r.Type,
			strconv.FormatFloat(r.Qual, 'f', -1, 64),
			r.Filter,
			strconv.FormatInt(r.Support, 10),
			strconv.FormatFloat(r.AF, 'f', 4, 64),
			strconv.FormatInt(r.PonCount, 10),
			partner,
		}, "\t") + "\n")
	}
	return w.Flush()
}
