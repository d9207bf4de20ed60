// Package pipeline routes a statement document through bank detection and
// the matching extraction path.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/insightdelivered/statement-parser/internal/appcontext"
	"github.com/insightdelivered/statement-parser/internal/detect"
	"github.com/insightdelivered/statement-parser/internal/layout"
	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/parser"
	"github.com/insightdelivered/statement-parser/internal/registry"
)

var (
	// ErrNoTransactions means the document parsed but yielded nothing.
	ErrNoTransactions = errors.New("no transactions found in statement")
	// ErrUnsupportedKind means the document kind has no extraction path.
	ErrUnsupportedKind = errors.New("unsupported document kind")
)

// Engine parses documents. It holds only read-only state and is safe for
// concurrent use.
type Engine struct {
	reg    *registry.Registry
	parser *parser.Parser
}

// New returns an Engine. A nil registry selects the built-in table.
func New(reg *registry.Registry, opts parser.Options) *Engine {
	if reg == nil {
		reg = registry.Default()
	}
	return &Engine{reg: reg, parser: parser.New(opts)}
}

// Parse extracts the transactions of one document and identifies its bank.
// Bank detection runs exactly once, over the document's full text.
func (e *Engine) Parse(ctx context.Context, doc models.Document) (*models.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := appcontext.LoggerFromContext(ctx).With("document", doc.Name, "kind", doc.Kind)

	res := &models.Result{Kind: doc.Kind}
	var err error

	switch doc.Kind {
	case models.KindDelimited:
		res.Bank = detect.Bank(doc.Text, e.reg)
		res.Transactions, err = e.parser.ParseDelimited(doc.Text)

	case models.KindSpreadsheet:
		text := doc.Text
		if text == "" {
			text = rowsText(doc.Rows)
		}
		res.Bank = detect.Bank(text, e.reg)
		if len(doc.Rows) == 0 {
			err = parser.ErrEmptyTable
			break
		}
		header := make([]string, len(doc.Rows[0]))
		for i, c := range doc.Rows[0] {
			header[i] = models.CellString(c)
		}
		res.Transactions, err = e.parser.ParseRows(header, doc.Rows[1:])

	case models.KindText:
		res.Bank = detect.Bank(doc.Text, e.reg)
		res.Transactions, res.Lines = e.parser.ParseText(doc.Text)

	case models.KindPaged:
		text := layout.Reconstruct(doc.Pages)
		res.Bank = detect.Bank(text, e.reg)
		res.Transactions, res.Lines = e.parser.ParseText(text)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, doc.Kind)
	}

	if err != nil {
		logger.DebugContext(ctx, "document rejected", "error", err)
		return nil, fmt.Errorf("parsing %s document: %w", doc.Kind, err)
	}

	logger.DebugContext(ctx, "document parsed",
		"bank", res.Bank.BankName,
		"transactions", len(res.Transactions),
		"lines", len(res.Lines),
	)

	if len(res.Transactions) == 0 {
		return res, ErrNoTransactions
	}
	return res, nil
}

// rowsText flattens spreadsheet rows for bank detection.
func rowsText(rows [][]models.Cell) string {
	var b strings.Builder
	for _, row := range rows {
		for i, c := range row {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(models.CellString(c))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
