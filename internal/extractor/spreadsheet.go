package extractor

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/parser"
)

// headerScanRows is how far down the first sheet the column header may sit.
const headerScanRows = 25

// Spreadsheet reads the first sheet of an XLSX workbook into typed cells.
// Rows above the column header are kept only as text for bank detection.
func Spreadsheet(name string, data []byte) (models.Document, error) {
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return models.Document{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer xl.Close()

	sheet := xl.GetSheetName(0)
	raw, err := xl.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return models.Document{}, fmt.Errorf("%w: reading sheet %q: %v", ErrUnreadable, sheet, err)
	}

	var text strings.Builder
	for _, row := range raw {
		text.WriteString(strings.Join(row, " "))
		text.WriteByte('\n')
	}

	doc := models.Document{Kind: models.KindSpreadsheet, Name: name, Text: text.String()}
	if len(raw) == 0 {
		return doc, nil
	}

	start := headerRow(raw)
	width := len(raw[start])
	for i := start; i < len(raw); i++ {
		row := make([]models.Cell, max(width, len(raw[i])))
		for j := range row {
			row[j] = models.EmptyCell{}
			if j >= len(raw[i]) {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return models.Document{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
			}
			typ, err := xl.GetCellType(sheet, cellName)
			if err != nil {
				return models.Document{}, fmt.Errorf("%w: cell %s: %v", ErrUnreadable, cellName, err)
			}
			row[j] = typedCell(typ, raw[i][j])
		}
		doc.Rows = append(doc.Rows, row)
	}
	return doc, nil
}

// headerRow returns the index of the first row that names the required
// columns, or 0 when none within the scan limit does.
func headerRow(rows [][]string) int {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		if _, err := parser.DetectColumns(rows[i]); err == nil {
			return i
		}
	}
	return 0
}

// typedCell maps a raw cell value onto the cell union. Strings stay text
// even when they look numeric, so reference numbers keep leading zeros.
func typedCell(typ excelize.CellType, v string) models.Cell {
	if strings.TrimSpace(v) == "" {
		return models.EmptyCell{}
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeBool, excelize.CellTypeError:
		return models.TextCell(v)
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return models.DateCell(t)
			}
		}
		return models.TextCell(v)
	default:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return models.NumberCell(f)
		}
		return models.TextCell(v)
	}
}
