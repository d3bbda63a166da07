package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/facto-ocr/facto/internal/batch"
	"github.com/facto-ocr/facto/internal/pipeline"
)

// batchCmd represents the batch command for parallel document processing.
var batchCmd = &cobra.Command{
	Use:   "batch [files or directories...]",
	Short: "Extract invoice data from multiple OCR text files in parallel",
	Long: `Process multiple OCR text files in parallel. Each file is one document;
results are emitted in input order. Directories are scanned for *.txt and
*.ocr files. Failed documents produce a null slot and a warning instead
of aborting the run.

Examples:
  facto batch invoices/*.txt
  facto batch invoices/ --recursive --workers 8 --progress
  facto batch invoices/ --include '*.ocr' --exclude 'draft*'
  facto batch a.txt b.txt --format json --output results.json`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	applyPipelineFlags(cfg, cmd)

	workers := cfg.Batch.Workers
	if cmd.Flags().Changed("workers") {
		workers, _ = cmd.Flags().GetInt("workers")
	}
	progress := cfg.Batch.Progress
	if cmd.Flags().Changed("progress") {
		progress, _ = cmd.Flags().GetBool("progress")
	}

	p, err := cfg.BuildPipeline()
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	recursive, _ := cmd.Flags().GetBool("recursive")
	include, _ := cmd.Flags().GetStringSlice("include")
	exclude, _ := cmd.Flags().GetStringSlice("exclude")

	inputs, err := batch.DiscoverFiles(args, recursive, include, exclude)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no input files found")
	}

	texts := make([]string, len(inputs))
	for i, path := range inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		texts[i] = string(data)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	batchCfg := pipeline.DefaultBatchConfig()
	if workers > 0 {
		batchCfg.MaxWorkers = workers
	}
	if progress {
		batchCfg.ProgressCallback = pipeline.NewConsoleProgressCallback(cmd.ErrOrStderr(), "Processing")
	}
	batchCfg.ErrorHandler = func(index int, err error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s: %v\n", inputs[index], err)
	}

	docs, err := p.ProcessBatchContext(ctx, texts, batchCfg)
	if err != nil {
		return fmt.Errorf("batch processing aborted: %w", err)
	}

	var failed int
	for _, doc := range docs {
		if doc == nil {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d documents failed\n", failed, len(docs))
	}

	format, file, pretty := outputFlags(cfg, cmd)
	return writeOutput(cmd.OutOrStdout(), docs, format, file, pretty)
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().IntP("workers", "w", 0, "number of parallel workers (0 = all CPUs)")
	batchCmd.Flags().Bool("progress", false, "show a progress bar on stderr")
	batchCmd.Flags().BoolP("recursive", "r", false, "scan directories recursively")
	batchCmd.Flags().StringSlice("include", nil, "glob patterns for files to include when scanning directories")
	batchCmd.Flags().StringSlice("exclude", nil, "glob patterns for files to exclude")
	batchCmd.Flags().String("locale", "", "locale table to use (fr, en)")
	batchCmd.Flags().String("locale-file", "", "custom locale YAML file")
	batchCmd.Flags().Int("threshold", 0, "minimum score for product lines")
	batchCmd.Flags().Float64("vat-rate", 0, "default VAT rate percent for lines without one")
	batchCmd.Flags().StringP("format", "f", "json", "output format (json, yaml, text)")
	batchCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	batchCmd.Flags().Bool("pretty", true, "pretty-print JSON output")
}
