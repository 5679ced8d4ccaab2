// Command refinery refines a raw census extract against a data dictionary:
//
//	refinery [flags] <source.csv> <refined-out> <dictionary> [removed-out]
//
// Rows whose fields all validate are recoded and written to refined-out;
// rejected rows go to removed-out when given, otherwise they are counted and
// discarded. Row-level rejections never fail the run; bad inputs (unreadable
// source, malformed dictionary, unwritable output) do.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/statloom/refinery/pkg/dict"
	"github.com/statloom/refinery/pkg/io/csvio"
	"github.com/statloom/refinery/pkg/io/jsonlio"
	"github.com/statloom/refinery/pkg/io/parquetio"
	"github.com/statloom/refinery/pkg/profile"
	"github.com/statloom/refinery/pkg/refine"
	"github.com/statloom/refinery/pkg/table"
)

var version = "0.1.0-dev"

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	configPath := flag.String("config", "", "Optional config file (.toml, .yaml, or .json)")
	delimiter := flag.String("delimiter", "", "Source/output field delimiter (default ',')")
	chunkSize := flag.Int("chunk-size", 0, "Rows per processing chunk (default 1024)")
	keyField := flag.String("key", "", "Remove rows repeating an already-seen value of this column")
	doProfile := flag.Bool("profile", false, "Print a column summary of the refined data")
	topK := flag.Int("top", 10, "Label values listed per column in the profile")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println("refinery", version)
		return
	}

	args := flag.Args()
	if len(args) < 3 || len(args) > 4 {
		usage()
		os.Exit(2)
	}

	cfg := config{ChunkSize: *chunkSize, Delimiter: *delimiter, KeyField: *keyField, Profile: *doProfile, TopK: *topK}
	if *configPath != "" {
		fileCfg, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		merge(&cfg, fileCfg)
	}
	if len(cfg.Delimiter) > 1 {
		fmt.Fprintf(os.Stderr, "delimiter must be a single character, got %q\n", cfg.Delimiter)
		os.Exit(2)
	}

	sourcePath, refinedPath, dictPath := args[0], args[1], args[2]
	removedPath := ""
	if len(args) == 4 {
		removedPath = args[3]
	}

	if err := run(sourcePath, refinedPath, dictPath, removedPath, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: refinery [flags] <source.csv> <refined-out> <dictionary> [removed-out]\n")
	flag.PrintDefaults()
}

// merge fills cfg's unset options from the config file; explicit flags win.
func merge(cfg *config, file config) {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["delimiter"] && file.Delimiter != "" {
		cfg.Delimiter = file.Delimiter
	}
	if !set["chunk-size"] && file.ChunkSize != 0 {
		cfg.ChunkSize = file.ChunkSize
	}
	if !set["key"] && file.KeyField != "" {
		cfg.KeyField = file.KeyField
	}
	if !set["profile"] && file.Profile {
		cfg.Profile = true
	}
	if !set["top"] && file.TopK != 0 {
		cfg.TopK = file.TopK
	}
}

func run(sourcePath, refinedPath, dictPath, removedPath string, cfg config) error {
	d, err := dict.Load(dictPath)
	if err != nil {
		return err
	}

	var delim rune
	if cfg.Delimiter != "" {
		delim = rune(cfg.Delimiter[0])
	}
	src, err := csvio.Open(sourcePath, csvio.ReaderOptions{Delimiter: delim})
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	refinedSchema, removedSchema, err := refine.OutputSchemas(d, src.Header())
	if err != nil {
		return fmt.Errorf("source %s: %w", sourcePath, err)
	}

	refined, err := newSink(refinedPath, refinedSchema, delim)
	if err != nil {
		return fmt.Errorf("refined output %s: %w", refinedPath, err)
	}
	var removed refine.FrameSink
	if removedPath != "" {
		removed, err = newSink(removedPath, removedSchema, delim)
		if err != nil {
			_ = refined.Close()
			return fmt.Errorf("removed output %s: %w", removedPath, err)
		}
	}

	var collector *profile.Collector
	if cfg.Profile {
		collector = profile.NewCollector(refinedSchema, cfg.TopK)
		refined = &profiledSink{inner: refined, collector: collector}
	}

	stats, err := refine.Stream(d, src, refined, removed, refine.Options{
		KeyField:  cfg.KeyField,
		ChunkSize: cfg.ChunkSize,
	})
	if err != nil {
		return err
	}

	fmt.Printf("processed %d records: %d refined, %d removed\n", stats.Rows, stats.Refined, stats.Removed)
	if stats.Duplicates > 0 {
		fmt.Printf("removed %d duplicate records (key %s)\n", stats.Duplicates, cfg.KeyField)
	}
	if report := profile.RejectionReport(stats.ByField, stats.ByReason); report != "" {
		fmt.Print(report)
	}
	if collector != nil {
		fmt.Print(collector.ReportText())
	}
	fmt.Printf("refined data saved to %s\n", refinedPath)
	if removedPath != "" {
		fmt.Printf("removed records saved to %s\n", removedPath)
	}
	return nil
}

// newSink picks the output format by extension: .parquet, .jsonl (optionally
// .gz), everything else delimited text (gzip for .gz paths).
func newSink(path string, schema table.Schema, delim rune) (refine.FrameSink, error) {
	switch {
	case strings.HasSuffix(path, ".parquet"):
		return parquetio.NewStreamWriter(path, schema)
	case strings.HasSuffix(path, ".jsonl"), strings.HasSuffix(path, ".jsonl.gz"):
		return jsonlio.NewStreamWriter(path)
	default:
		return csvio.NewStreamWriter(path, schema, csvio.WriterOptions{Delimiter: delim})
	}
}

// profiledSink feeds each refined chunk to the collector on its way out.
type profiledSink struct {
	inner     refine.FrameSink
	collector *profile.Collector
}

func (p *profiledSink) Write(f *table.Frame) error {
	p.collector.ConsumeFrame(f)
	return p.inner.Write(f)
}

func (p *profiledSink) Close() error { return p.inner.Close() }
