package models

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the input shape declared by the caller.
type Kind string

const (
	KindDelimited   Kind = "delimited"
	KindSpreadsheet Kind = "spreadsheet"
	KindText        Kind = "text"
	KindPaged       Kind = "paged"
)

// ParseKind maps a user-supplied name onto a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "delimited", "csv":
		return KindDelimited, true
	case "spreadsheet", "xlsx", "excel":
		return KindSpreadsheet, true
	case "text", "txt":
		return KindText, true
	case "paged", "pdf":
		return KindPaged, true
	}
	return "", false
}

// Fragment is a piece of positioned text from a page. Y grows upwards.
type Fragment struct {
	Text string
	X    float64
	Y    float64
}

// Document is the raw input handed to the engine. Text holds delimited and
// free-form content, Rows the spreadsheet cells (row 0 is the header) and
// Pages the positioned fragments of a paged document. For spreadsheets Text
// may carry the whole sheet, preamble included, for bank detection.
type Document struct {
	Kind  Kind
	Name  string
	Text  string
	Rows  [][]Cell
	Pages [][]Fragment
}

// Cell is a spreadsheet or delimited-text cell. The concrete types are
// TextCell, NumberCell, DateCell and EmptyCell.
type Cell interface {
	isCell()
}

type (
	TextCell   string
	NumberCell float64
	DateCell   time.Time
	EmptyCell  struct{}
)

func (TextCell) isCell()   {}
func (NumberCell) isCell() {}
func (DateCell) isCell()   {}
func (EmptyCell) isCell()  {}

// CellString renders a cell as plain text.
func CellString(c Cell) string {
	switch v := c.(type) {
	case TextCell:
		return strings.TrimSpace(string(v))
	case NumberCell:
		return strconv.FormatFloat(float64(v), 'f', -1, 64)
	case DateCell:
		return time.Time(v).Format("2006-01-02")
	case EmptyCell, nil:
		return ""
	default:
		return ""
	}
}

// IsBlank reports whether a cell carries no value.
func IsBlank(c Cell) bool {
	switch v := c.(type) {
	case EmptyCell, nil:
		return true
	case TextCell:
		return strings.TrimSpace(string(v)) == ""
	case NumberCell, DateCell:
		return false
	default:
		return true
	}
}

// TextRow builds a row of TextCell/EmptyCell values from strings.
func TextRow(fields []string) []Cell {
	row := make([]Cell, len(fields))
	for i, f := range fields {
		if strings.TrimSpace(f) == "" {
			row[i] = EmptyCell{}
		} else {
			row[i] = TextCell(f)
		}
	}
	return row
}

// ColumnRoles maps logical roles to zero-based column indexes; -1 means the
// role is absent.
type ColumnRoles struct {
	Date        int
	Description int
	Debit       int
	Credit      int
	Amount      int
	Balance     int
}
