package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/facto-ocr/facto/internal/config"
	"github.com/facto-ocr/facto/internal/pdf"
)

// extractCmd represents the extract command for single-document extraction.
var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract structured invoice data from OCR text or a PDF",
	Long: `Extract line items, contact details and fiscal identifiers from one
document. The input is a plain-text file holding OCR output, a PDF with
an embedded text layer, or "-" to read text from stdin.

Examples:
  facto extract invoice.txt
  facto extract scan.pdf --pages 1-2
  cat invoice.txt | facto extract - --format yaml
  facto extract invoice.txt --locale en --threshold 4`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runExtractCommand,
}

func runExtractCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	applyPipelineFlags(cfg, cmd)

	p, err := cfg.BuildPipeline()
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	text, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	doc, err := p.Process(text)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	format, file, pretty := outputFlags(cfg, cmd)
	return writeOutput(cmd.OutOrStdout(), doc, format, file, pretty)
}

// applyPipelineFlags folds CLI flag overrides into the loaded configuration.
func applyPipelineFlags(cfg *config.Config, cmd *cobra.Command) {
	if cmd.Flags().Changed("locale") {
		cfg.Pipeline.Locale, _ = cmd.Flags().GetString("locale")
	}
	if cmd.Flags().Changed("locale-file") {
		cfg.Pipeline.LocaleFile, _ = cmd.Flags().GetString("locale-file")
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Pipeline.ScoreThreshold, _ = cmd.Flags().GetInt("threshold")
	}
	if cmd.Flags().Changed("vat-rate") {
		cfg.Pipeline.DefaultVATRate, _ = cmd.Flags().GetFloat64("vat-rate")
	}
}

func outputFlags(cfg *config.Config, cmd *cobra.Command) (format, file string, pretty bool) {
	format = cfg.Output.Format
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}
	file = cfg.Output.File
	if cmd.Flags().Changed("output") {
		file, _ = cmd.Flags().GetString("output")
	}
	pretty = cfg.Output.Pretty
	if cmd.Flags().Changed("pretty") {
		pretty, _ = cmd.Flags().GetBool("pretty")
	}
	return format, file, pretty
}

// readInput loads OCR text from a file, a PDF text layer, or stdin.
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		pages, _ := cmd.Flags().GetString("pages")
		extractor := pdf.NewExtractor(0)
		docText, err := extractor.ExtractFile(path, pages)
		if err != nil {
			return "", fmt.Errorf("failed to extract PDF text: %w", err)
		}
		for _, page := range docText.Pages {
			if !extractor.IsQualityAcceptable(page) {
				fmt.Fprintf(cmd.ErrOrStderr(),
					"Warning: page %d has a poor text layer (score %.2f); OCR the scan first for better results\n",
					page.PageNumber, page.Quality.Score)
			}
		}
		return docText.Text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return string(data), nil
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().String("locale", "", "locale table to use (fr, en)")
	extractCmd.Flags().String("locale-file", "", "custom locale YAML file")
	extractCmd.Flags().Int("threshold", 0, "minimum score for product lines")
	extractCmd.Flags().Float64("vat-rate", 0, "default VAT rate percent for lines without one")
	extractCmd.Flags().String("pages", "", "PDF page range, e.g. 1,3-5 (PDF input only)")
	extractCmd.Flags().StringP("format", "f", "json", "output format (json, yaml, text)")
	extractCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	extractCmd.Flags().Bool("pretty", true, "pretty-print JSON output")
}
