package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-parser/internal/appcontext"
	"github.com/insightdelivered/statement-parser/internal/extractor"
	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/pipeline"
	"github.com/insightdelivered/statement-parser/internal/writer"
)

type parseOptions struct {
	kind          string
	output        string
	format        string
	includeHeader bool
}

func newParseCommand(a *app) *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse <file> [file...]",
		Short: "Parse statement files into CSV or JSON",
		Example: `  # Auto-detect the file type and write march.csv next to the input
  statement-parser parse march.pdf

  # Treat an export with an odd extension as CSV and print JSON
  statement-parser parse --kind csv --format json --output - export.dat

  # Convert several statements at once
  statement-parser parse jan.xlsx feb.xlsx mar.xlsx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "csv" && opts.format != "json" {
				return fmt.Errorf("unknown format %q: use csv or json", opts.format)
			}
			var kind models.Kind
			if opts.kind != "" {
				k, ok := models.ParseKind(opts.kind)
				if !ok {
					return fmt.Errorf("unknown kind %q: use csv, xlsx, text or pdf", opts.kind)
				}
				kind = k
			}
			if len(args) > 1 && opts.output != "" && opts.output != "-" {
				return errors.New("--output names a single file; omit it to write one output per input")
			}

			engine, err := a.engine()
			if err != nil {
				return err
			}
			for _, path := range args {
				if err := parseFile(cmd, engine, path, kind, opts); err != nil {
					return fmt.Errorf("processing %s: %w", path, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", "", "input kind: csv, xlsx, text or pdf (guessed from the extension if omitted)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output path, "-" for stdout (defaults to the input name with a .csv or .json extension)`)
	cmd.Flags().StringVar(&opts.format, "format", "csv", "output format: csv or json")
	cmd.Flags().BoolVar(&opts.includeHeader, "header", true, "include bank and account metadata rows in CSV output")

	return cmd
}

func parseFile(cmd *cobra.Command, engine *pipeline.Engine, path string, kind models.Kind, opts parseOptions) error {
	ctx := cmd.Context()
	logger := appcontext.LoggerFromContext(ctx)
	status := cmd.ErrOrStderr()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	var doc models.Document
	if kind != "" {
		doc, err = extractor.LoadKind(kind, filepath.Base(path), data)
	} else {
		doc, err = extractor.Load(filepath.Base(path), data)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(status, "Processing: %s (%s)\n", path, doc.Kind)

	res, err := engine.Parse(ctx, doc)
	if errors.Is(err, pipeline.ErrNoTransactions) {
		fmt.Fprintln(status, "  Warning: No transactions found. The statement format may not match expected patterns.")
		fmt.Fprintln(status, "  Try --kind if the file type was guessed wrongly.")
	} else if err != nil {
		return err
	}

	fmt.Fprintf(status, "  Bank: %s (account %s)\n", res.Bank.BankName, res.Bank.AccountNumber)
	fmt.Fprintf(status, "  Found %d transaction(s)\n", len(res.Transactions))
	if n := needsReview(res.Transactions); n > 0 {
		fmt.Fprintf(status, "  %d transaction(s) need review\n", n)
	}

	outPath := opts.output
	if outPath == "" {
		outPath = strings.TrimSuffix(path, filepath.Ext(path)) + "." + opts.format
	}
	if err := writeResult(cmd.OutOrStdout(), outPath, opts, res); err != nil {
		return err
	}

	if outPath != "-" {
		fmt.Fprintf(status, "  Output: %s\n", outPath)
	}
	logger.DebugContext(ctx, "file done", "path", path, "output", outPath)
	return nil
}

func writeResult(stdout io.Writer, outPath string, opts parseOptions, res *models.Result) error {
	csvWriter := &writer.CSVWriter{IncludeHeader: opts.includeHeader}
	switch {
	case outPath == "-" && opts.format == "json":
		return writer.WriteJSON(stdout, res)
	case outPath == "-":
		return csvWriter.Write(stdout, res)
	case opts.format == "csv":
		return csvWriter.WriteToFile(outPath, res)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", outPath, err)
	}
	defer f.Close()
	if err := writer.WriteJSON(f, res); err != nil {
		return err
	}
	return f.Close()
}

func needsReview(txns []models.Transaction) int {
	n := 0
	for _, t := range txns {
		if len(t.Warnings) > 0 {
			n++
		}
	}
	return n
}
