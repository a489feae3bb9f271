package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"suppqc/adapters/columns"
	"suppqc/adapters/ingest"
	"suppqc/adapters/postgres"
	"suppqc/adapters/report"
	"suppqc/app"
	"suppqc/internal/config"
	"suppqc/internal/logx"
	"suppqc/ports"

	pvaluepkg "suppqc/domain/pvalue"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var files []string
	var list string
	var vars []string
	var breaks int
	var fdr float64
	var workers int
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "suppqc [flags] OUTPUT",
		Short: "Summarize p-value distributions in expression supplementary files",
		Long: `Reads tabular supplementary files (CSV/TSV/TXT, Excel workbooks, gzip or
tar.gz archives), locates p-value columns and writes one diagnostic summary row
per table and stage to OUTPUT as CSV.

Example: suppqc --file GSE12345_suppl.tar.gz --breaks 30 --fdr 0.05 out.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(files) == 0) == (list == "") {
				return fmt.Errorf("exactly one of --file and --list is required")
			}

			// .env is optional, environment wins over defaults, flags over both.
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("breaks") {
				cfg.Breaks = breaks
			}
			if cmd.Flags().Changed("fdr") {
				cfg.FDR = fdr
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if cmd.Flags().Changed("database-url") {
				cfg.DatabaseURL = databaseURL
			}
			if len(vars) > 0 {
				parsed, err := config.ParseVars(vars)
				if err != nil {
					return err
				}
				cfg.Variables = parsed
			}
			if err := cfg.Summarizer().Validate(); err != nil {
				return err
			}

			paths := files
			if list != "" {
				paths, err = readList(list)
				if err != nil {
					return err
				}
			}
			return run(cmd, cfg, paths, args[0])
		},
	}

	cmd.Flags().StringSliceVar(&files, "file", nil, "path(s) to input files to be parsed")
	cmd.Flags().StringVar(&list, "list", "", "file with paths to input files, one per line")
	cmd.Flags().StringSliceVar(&vars, "vars", nil, "expression-level filters as key=value pairs in priority order")
	cmd.Flags().IntVar(&breaks, "breaks", 30, "number of histogram bins")
	cmd.Flags().Float64Var(&fdr, "fdr", 0.05, "false discovery rate threshold")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel table summarizers (default: CPU count)")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres URL for persisting summaries (default: DATABASE_URL)")

	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config, paths []string, outPath string) error {
	ctx := cmd.Context()
	logger := logx.NewDefaultLogger()

	summarizer, err := pvaluepkg.NewSummarizer(cfg.Summarizer(), logger)
	if err != nil {
		return err
	}
	svc := app.NewBatchService(
		ingest.NewFileSource(ingest.DefaultConfig(), logger),
		columns.NewSelector(columns.DefaultConfig()),
		summarizer,
		cfg.Summarizer(),
		cfg.Workers,
		logger,
	)

	runID, results, err := svc.Run(ctx, paths)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()
	if err := report.NewCSVWriter(out).Write(ctx, results); err != nil {
		return err
	}

	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		var repo ports.SummaryRepository = postgres.NewSummaryRepository(db)
		if err := repo.SaveRun(ctx, runID, results); err != nil {
			return err
		}
		logger.Info("[CLI] run %s persisted to database", runID)
	}

	logger.Info("[CLI] run %s: %d record(s) written to %s", runID, len(results), outPath)
	return nil
}

// readList reads input paths, one per line, skipping blanks.
func readList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open list file: %w", err)
	}
	defer f.Close()

	var paths []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths, sc.Err()
}
