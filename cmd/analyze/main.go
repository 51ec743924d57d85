// Command analyze runs the sentiment pipeline over a CSV file or the built-in
// sample table and prints the summary. It needs no database or Redis.
//
//	go run ./cmd/analyze -sample -column work_life_balance
//	go run ./cmd/analyze -file reviews.csv -column comment -format json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/pscheid92/reviewpulse/internal/dataset"
	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/platform/logging"
	"github.com/pscheid92/reviewpulse/internal/sentiment"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// errUsage marks flag errors the flag set has already printed.
var errUsage = errors.New("usage")

type options struct {
	file     string
	sample   bool
	column   string
	kind     string
	top      int
	preview  int
	format   string
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "analyze: %v\n", err)
		}
		return exitUsage
	}

	slog.SetDefault(logging.New(stderr, opts.logLevel, "text"))

	result, err := analyze(ctx, opts)
	if err != nil {
		fmt.Fprintf(stderr, "analyze: %v\n", err)
		return exitError
	}

	if opts.format == "json" {
		err = writeJSON(stdout, result)
	} else {
		err = writeText(stdout, result)
	}
	if err != nil {
		fmt.Fprintf(stderr, "analyze: write output: %v\n", err)
		return exitError
	}
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.file, "file", "", "CSV file to analyse (.tsv is read tab-separated)")
	fs.BoolVar(&opts.sample, "sample", false, "analyse the built-in sample reviews")
	fs.StringVar(&opts.column, "column", "", "column to analyse (default: first text column)")
	fs.StringVar(&opts.kind, "kind", "", "score kind: polarity, rating or rescaled (default: detected)")
	fs.IntVar(&opts.top, "top", 10, "number of top words per label")
	fs.IntVar(&opts.preview, "preview", 0, "print the first N labelled rows")
	fs.StringVar(&opts.format, "format", "text", "output format: text or json")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		// The flag set has already reported the problem.
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}

	switch {
	case opts.file == "" && !opts.sample:
		return nil, errors.New("one of -file or -sample is required")
	case opts.file != "" && opts.sample:
		return nil, errors.New("-file and -sample are mutually exclusive")
	case opts.format != "text" && opts.format != "json":
		return nil, fmt.Errorf("unknown format %q", opts.format)
	case opts.top < 1:
		return nil, errors.New("-top must be positive")
	case opts.preview < 0:
		return nil, errors.New("-preview must not be negative")
	case fs.NArg() > 0:
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return &opts, nil
}

type result struct {
	Source  string                `json:"source"`
	Column  string                `json:"column"`
	Report  *domain.Report        `json:"report"`
	Preview []domain.ScoredRecord `json:"preview,omitempty"`
	Columns []string              `json:"columns"`
}

func analyze(ctx context.Context, opts *options) (*result, error) {
	table, source, err := loadTable(opts)
	if err != nil {
		return nil, err
	}
	slog.Debug("Table loaded", "source", source, "columns", len(table.Columns), "rows", len(table.Rows))

	column := opts.column
	if column == "" {
		column = table.DefaultColumn(func(cells []string) bool {
			return sentiment.DetectColumn(cells).Kind == domain.KindPolarity
		})
	}
	if column == "" {
		return nil, errors.New("table has no columns")
	}
	cells, err := table.Column(column)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(table.Columns, ", "))
	}
	idx, _ := table.ColumnIndex(column)
	column = table.Columns[idx]

	kind := sentiment.DetectColumn(cells).Kind
	if opts.kind != "" {
		if kind, err = domain.ParseKind(opts.kind); err != nil {
			return nil, err
		}
	}

	records, err := table.Records(column)
	if err != nil {
		return nil, err
	}

	analyzer := sentiment.NewAnalyzer(sentiment.DefaultLexicon(), sentiment.WithTopWords(opts.top))
	report, err := analyzer.Analyze(ctx, records, kind)
	if err != nil {
		return nil, err
	}

	res := &result{Source: source, Column: column, Report: report, Columns: table.Columns}
	if opts.preview > 0 {
		res.Preview = report.Records[:min(opts.preview, len(report.Records))]
	}
	return res, nil
}

func loadTable(opts *options) (*dataset.Table, string, error) {
	if opts.sample {
		return dataset.Sample(), "sample", nil
	}

	f, err := os.Open(opts.file)
	if err != nil {
		return nil, "", fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	var csvOpts dataset.CSVOptions
	if strings.EqualFold(filepath.Ext(opts.file), ".tsv") {
		csvOpts.Comma = '\t'
	}
	table, err := dataset.ReadCSV(f, csvOpts)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", opts.file, err)
	}
	return table, opts.file, nil
}

func writeJSON(w io.Writer, res *result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func writeText(w io.Writer, res *result) error {
	s := res.Report.Summary
	var b strings.Builder

	fmt.Fprintf(&b, "Source: %s\nColumn: %s (%s)\n", res.Source, res.Column, s.Kind)
	fmt.Fprintf(&b, "Records: %d total, %d valid\n", s.Total, s.Valid)
	fmt.Fprintf(&b, "Counts: %d positive, %d neutral, %d negative\n", s.Counts.Positive, s.Counts.Neutral, s.Counts.Negative)
	fmt.Fprintf(&b, "Tier: %s\n\n%s\n", s.Tier, s.Narrative)

	if st := res.Report.Stats; st != nil && st.Count > 0 {
		fmt.Fprintf(&b, "\nStatistics: mean %.2f, median %.2f, min %g, max %g\n", st.Mean, st.Median, st.Min, st.Max)
		for _, bucket := range st.Distribution {
			fmt.Fprintf(&b, "  %g: %d\n", bucket.Value, bucket.Count)
		}
	}

	if words := res.Report.Words; words != nil {
		writeWords(&b, "Top positive words", words.Positive)
		writeWords(&b, "Top negative words", words.Negative)
	}

	if len(res.Preview) > 0 {
		b.WriteString("\nPreview:\n")
		for i, r := range res.Preview {
			score := "-"
			if r.Score != nil {
				score = fmt.Sprintf("%.3f", *r.Score)
			}
			label := string(r.Label)
			if !r.Valid {
				label = "invalid"
			}
			fmt.Fprintf(&b, "  %d. [%s %s] %s\n", i+1, label, score, r.Raw)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeWords(b *strings.Builder, title string, words []domain.WordCount) {
	if len(words) == 0 {
		return
	}
	parts := make([]string, len(words))
	for i, wc := range words {
		parts[i] = fmt.Sprintf("%s (%d)", wc.Word, wc.Count)
	}
	fmt.Fprintf(b, "\n%s: %s\n", title, strings.Join(parts, ", "))
}
