package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"consolidator/internal/config"
	"consolidator/internal/exporter"
	"consolidator/internal/files"
	"consolidator/internal/infrastructure"
	"consolidator/internal/services"
	"consolidator/internal/validation"
	"consolidator/pkg/contracts"
	"consolidator/pkg/contracts/domain"
)

// options holds the parsed command line
type options struct {
	Start      string
	End        string
	Out        string
	Dir        string
	Format     string
	ConfigFile string
	Preview    bool
	Version    bool
	Files      []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		slog.Error("Consolidation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("consolidate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.Start, "start", "", "first date YYYY-MM-DD (defaults to the configured start)")
	fs.StringVar(&opts.End, "end", "", "last date YYYY-MM-DD (defaults to the configured end)")
	fs.StringVar(&opts.Out, "out", "", "output file (defaults to acciones_consolidadas.<format>)")
	fs.StringVar(&opts.Dir, "dir", "", "directory whose *.csv files are consolidated")
	fs.StringVar(&opts.Format, "format", "xlsx", "output format: xlsx or csv")
	fs.StringVar(&opts.ConfigFile, "config", "", "configuration file (defaults to config.yaml lookup)")
	fs.BoolVar(&opts.Preview, "preview", false, "print the first rows of the table")
	fs.BoolVar(&opts.Version, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: consolidate -start YYYY-MM-DD -end YYYY-MM-DD [-dir DIR] [-out FILE] [file.csv ...]\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Files = fs.Args()
	return opts, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.Version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return nil
	}

	cfg, err := loadConfig(opts.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := infrastructure.NewLogger(cfg.Logging, stderr).With(slog.String("component", "cli"))

	if opts.Start == "" {
		opts.Start = cfg.Consolidation.DefaultStart
	}
	if opts.End == "" {
		opts.End = cfg.Consolidation.DefaultEnd
	}

	format, err := exporter.ParseFormat(opts.Format)
	if err != nil {
		return err
	}
	if opts.Out == "" {
		opts.Out = cfg.Consolidation.OutputName + format.Extension()
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateOutputFile(opts.Out, format.Extension()); err != nil {
		return err
	}

	inputs, err := collectInputs(opts, validator)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Starting consolidation",
		slog.String("start", opts.Start),
		slog.String("end", opts.End),
		slog.Int("files", len(inputs)),
		slog.String("output", opts.Out))

	uploads, err := files.LoadUploads(inputs, cfg.Limits.MaxUploadBytes)
	if err != nil {
		return err
	}

	svc, err := services.NewConsolidationService(cfg, nil, logger)
	if err != nil {
		return err
	}

	result, err := svc.Consolidate(ctx, services.ConsolidationRequest{
		Start: opts.Start,
		End:   opts.End,
		Files: uploads,
	})
	if err != nil {
		return err
	}

	data, err := svc.Export(ctx, result, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.Out, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.Out, err)
	}

	if opts.Preview {
		printPreview(stdout, svc.Preview(result))
	}
	for _, skipped := range result.Report.Skipped {
		fmt.Fprintf(stdout, "skipped: %s\n", skipped)
	}
	fmt.Fprintf(stdout, "%s: %d rows, %d stocks (%s..%s)\n",
		opts.Out, result.Report.Days, len(result.Report.Stocks), result.Report.Start, result.Report.End)

	return nil
}

// collectInputs gathers the file arguments and the CSV files of -dir in
// that order.
func collectInputs(opts options, validator *validation.FileValidator) ([]string, error) {
	var inputs []string
	for _, f := range opts.Files {
		if err := validator.ValidateCSVFile(f); err != nil {
			return nil, err
		}
		inputs = append(inputs, f)
	}

	if opts.Dir != "" {
		if err := validator.ValidateInputDirectory(opts.Dir); err != nil {
			return nil, err
		}
		found, err := files.NewDiscovery("").FindCSVFiles(opts.Dir)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, files.Paths(found)...)
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("no CSV files given: pass file arguments or -dir")
	}

	seen := make(map[string]bool, len(inputs))
	unique := inputs[:0]
	for _, in := range inputs {
		key := filepath.Clean(in)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, in)
	}
	return unique, nil
}

func printPreview(w io.Writer, preview domain.Preview) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\t%s\t\n", domain.DateColumn, strings.Join(preview.Columns, "\t"))
	for _, row := range preview.Rows {
		fmt.Fprintf(tw, "%s\t%s\t\n", row.Fecha, strings.Join(row.Values, "\t"))
	}
	tw.Flush()
	if preview.TotalRows > len(preview.Rows) {
		fmt.Fprintf(w, "... %d more rows\n", preview.TotalRows-len(preview.Rows))
	}
}
