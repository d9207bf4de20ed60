package writer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// Columns written for every transaction.
var Columns = []string{"Date", "Description", "Type", "Amount", "Confidence", "Warnings"}

// CSVWriter writes transactions to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes the result to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, res *models.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := w.Write(f, res); err != nil {
		return err
	}
	return f.Close()
}

// Write writes the result in CSV format to out.
func (w *CSVWriter) Write(out io.Writer, res *models.Result) error {
	writer := csv.NewWriter(out)

	// Account metadata as leading "# key,value" rows
	if w.IncludeHeader {
		meta := [][]string{
			{"# Bank", res.Bank.BankName},
			{"# Account Number", res.Bank.AccountNumber},
		}
		for _, row := range meta {
			if row[1] == "" {
				continue
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV metadata: %w", err)
			}
		}
	}

	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range res.Transactions {
		row := []string{
			txn.Date,
			txn.Description,
			string(txn.Type),
			txn.Amount.StringFixed(2),
			strconv.FormatFloat(txn.Confidence, 'f', 2, 64),
			strings.Join(txn.Warnings, "; "),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteJSON writes the result as indented JSON.
func WriteJSON(out io.Writer, res *models.Result) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
