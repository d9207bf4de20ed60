package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/normalize"
)

var (
	dateLabels        = []string{"date"}
	descriptionLabels = []string{"description", "narration", "particulars", "remarks", "details"}
	debitLabels       = []string{"debit", "withdrawal", "paid out", "money out"}
	creditLabels      = []string{"credit", "deposit", "paid in", "money in"}
	amountLabels      = []string{"amount"}
	balanceLabels     = []string{"balance"}
)

// DetectColumns assigns roles to header labels. Matching is a
// case-insensitive substring test and the first matching column wins each
// role. A table needs a date and a description column plus at least one of
// debit, credit or amount.
func DetectColumns(header []string) (models.ColumnRoles, error) {
	roles := models.ColumnRoles{Date: -1, Description: -1, Debit: -1, Credit: -1, Amount: -1, Balance: -1}

	assign := func(slot *int, i int) {
		if *slot < 0 {
			*slot = i
		}
	}

	for i, label := range header {
		l := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(label, "\ufeff")))
		if l == "" {
			continue
		}
		switch {
		case containsAny(l, dateLabels):
			assign(&roles.Date, i)
		case containsAny(l, descriptionLabels):
			assign(&roles.Description, i)
		case containsAny(l, debitLabels):
			assign(&roles.Debit, i)
		case containsAny(l, creditLabels):
			assign(&roles.Credit, i)
		case containsAny(l, balanceLabels):
			assign(&roles.Balance, i)
		case containsAny(l, amountLabels):
			assign(&roles.Amount, i)
		}
	}

	if roles.Date < 0 || roles.Description < 0 {
		return roles, fmt.Errorf("%w: statement must have Date and Description columns", ErrMissingColumns)
	}
	if roles.Debit < 0 && roles.Credit < 0 && roles.Amount < 0 {
		return roles, fmt.Errorf("%w: statement must have Debit, Credit, or Amount column", ErrMissingColumns)
	}
	return roles, nil
}

// ParseRows extracts one transaction per usable row. Rows shorter than the
// header or without a description or positive amount are dropped.
func (p *Parser) ParseRows(header []string, rows [][]models.Cell) ([]models.Transaction, error) {
	roles, err := DetectColumns(header)
	if err != nil {
		return nil, err
	}

	var txns []models.Transaction
	for _, row := range rows {
		if len(row) < len(header) {
			continue
		}
		if txn, ok := p.parseRow(roles, row); ok {
			txns = append(txns, txn)
		}
	}
	return txns, nil
}

func (p *Parser) parseRow(roles models.ColumnRoles, row []models.Cell) (models.Transaction, bool) {
	desc := cleanDescription(models.CellString(row[roles.Description]), p.opts.MaxDescriptionLength)
	if runeLen(desc) < minDescriptionLength {
		return models.Transaction{}, false
	}

	txn := models.Transaction{Description: desc, Warnings: []string{}}

	switch {
	case roles.Debit >= 0 && hasValue(row[roles.Debit]):
		amt, ok := cellAmount(row[roles.Debit])
		if !ok {
			return models.Transaction{}, false
		}
		txn.Amount, txn.Type, txn.Confidence = amt.Abs(), models.Debit, 0.9
	case roles.Credit >= 0 && hasValue(row[roles.Credit]):
		amt, ok := cellAmount(row[roles.Credit])
		if !ok {
			return models.Transaction{}, false
		}
		txn.Amount, txn.Type, txn.Confidence = amt.Abs(), models.Credit, 0.9
	case roles.Amount >= 0 && hasValue(row[roles.Amount]):
		amt, ok := cellAmount(row[roles.Amount])
		if !ok {
			return models.Transaction{}, false
		}
		txn.Type = models.Credit
		if amt.IsNegative() {
			txn.Type = models.Debit
		}
		txn.Amount, txn.Confidence = amt.Abs(), 0.7
		txn.Warnings = append(txn.Warnings, WarnSignInferred)
	default:
		return models.Transaction{}, false
	}
	if !txn.Amount.IsPositive() {
		return models.Transaction{}, false
	}

	if date, ok := cellDate(row[roles.Date]); ok {
		txn.Date = date
	} else {
		txn.Date = p.today()
		txn.Warnings = append(txn.Warnings, WarnDateUnparsable)
		if txn.Confidence > 0.5 {
			txn.Confidence = 0.5
		}
	}
	return txn, true
}

// hasValue treats blank, zero-valued and digitless cells as empty, so a
// "0.00" or "-" placeholder in the debit column of a credit row does not
// shadow the credit.
func hasValue(c models.Cell) bool {
	if models.IsBlank(c) {
		return false
	}
	if v, ok := c.(models.TextCell); ok && !strings.ContainsAny(string(v), "0123456789") {
		return false
	}
	amt, ok := cellAmount(c)
	return !ok || !amt.IsZero()
}

func cellAmount(c models.Cell) (decimal.Decimal, bool) {
	switch v := c.(type) {
	case models.NumberCell:
		return normalize.FromFloat(float64(v)), true
	case models.TextCell:
		amt, err := normalize.Amount(string(v))
		if err != nil {
			return decimal.Zero, false
		}
		return amt, true
	case models.DateCell, models.EmptyCell, nil:
		return decimal.Zero, false
	default:
		return decimal.Zero, false
	}
}

func cellDate(c models.Cell) (string, bool) {
	switch v := c.(type) {
	case models.DateCell:
		return normalize.FormatDate(time.Time(v)), true
	case models.NumberCell:
		return normalize.SerialDate(float64(v))
	case models.TextCell:
		return normalize.Date(string(v))
	case models.EmptyCell, nil:
		return "", false
	default:
		return "", false
	}
}

// ParseDelimited splits comma-separated text and parses it as a table whose
// first record is the header.
func (p *Parser) ParseDelimited(text string) ([]models.Transaction, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(text, "\ufeff")))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var rows [][]models.Cell
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading rows: %w", err)
		}
		rows = append(rows, models.TextRow(record))
	}
	return p.ParseRows(header, rows)
}
