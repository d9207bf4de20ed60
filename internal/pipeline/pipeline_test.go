package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-parser/internal/appcontext"
	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/parser"
	"github.com/insightdelivered/statement-parser/internal/registry"
)

func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return appcontext.WithLogger(context.Background(), logger)
}

func testEngine() *Engine {
	return New(nil, parser.Options{
		Now: func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) },
	})
}

func TestParse_Delimited(t *testing.T) {
	doc := models.Document{
		Kind: models.KindDelimited,
		Name: "march.csv",
		Text: "Date,Description,Debit,Credit\n01-03-2024,Coffee Shop,150.00,\n",
	}

	res, err := testEngine().Parse(testContext(), doc)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)

	txn := res.Transactions[0]
	assert.Equal(t, "2024-03-01", txn.Date)
	assert.Equal(t, "Coffee Shop", txn.Description)
	assert.True(t, decimal.NewFromInt(150).Equal(txn.Amount))
	assert.Equal(t, models.Debit, txn.Type)
	assert.InDelta(t, 0.9, txn.Confidence, 1e-9)
	assert.Empty(t, txn.Warnings)

	assert.Equal(t, models.UnknownBank, res.Bank.BankName)
	assert.Equal(t, models.UnknownAccount, res.Bank.AccountNumber)
	assert.InDelta(t, 0.1, res.Bank.Confidence, 1e-9)
	assert.Equal(t, models.KindDelimited, res.Kind)
}

func TestParse_MissingColumn(t *testing.T) {
	doc := models.Document{Kind: models.KindDelimited, Text: "Narration,Amount\nCoffee Shop,150.00\n"}

	res, err := testEngine().Parse(testContext(), doc)
	assert.ErrorIs(t, err, parser.ErrMissingColumns)
	assert.Nil(t, res)
}

func TestParse_Text(t *testing.T) {
	doc := models.Document{
		Kind: models.KindText,
		Text: "HDFC BANK STATEMENT Account No: 123456789012\n" +
			"Date Narration Withdrawal Deposit Balance\n" +
			"02-03-2024 Payment XYZ 500 1500\n" +
			"Closing Balance 1,000.00\n",
	}

	res, err := testEngine().Parse(testContext(), doc)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)

	assert.Equal(t, models.BankDetection{BankName: "HDFC Bank", AccountNumber: "9012", Confidence: 0.9}, res.Bank)
	txn := res.Transactions[0]
	assert.True(t, decimal.NewFromInt(500).Equal(txn.Amount))
	assert.Equal(t, models.Debit, txn.Type)
	assert.Contains(t, txn.Warnings, parser.WarnTwoAmounts)
	assert.NotEmpty(t, res.Lines)
}

func TestParse_Paged(t *testing.T) {
	doc := models.Document{
		Kind: models.KindPaged,
		Pages: [][]models.Fragment{
			{
				{Text: "ICICI Bank", X: 40, Y: 800},
				{Text: "A/c No: XXXX4321", X: 300, Y: 800},
				{Text: "Date", X: 40, Y: 760},
				{Text: "Particulars", X: 120, Y: 760},
				{Text: "Amount", X: 400, Y: 760},
				{Text: "150.00", X: 400, Y: 740.3},
				{Text: "01-03-2024", X: 40, Y: 740},
				{Text: "POS Coffee Shop", X: 120, Y: 739.8},
				{Text: "DR", X: 460, Y: 740},
			},
			{
				{Text: "05-03-2024", X: 40, Y: 780},
				{Text: "Salary credit", X: 120, Y: 780},
				{Text: "50,000.00", X: 400, Y: 780},
			},
		},
	}

	res, err := testEngine().Parse(testContext(), doc)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)

	assert.Equal(t, "ICICI Bank", res.Bank.BankName)
	assert.Equal(t, "4321", res.Bank.AccountNumber)

	assert.Equal(t, "POS Coffee Shop", res.Transactions[0].Description)
	assert.Equal(t, models.Debit, res.Transactions[0].Type)
	assert.InDelta(t, 0.95, res.Transactions[0].Confidence, 1e-9)
	assert.Equal(t, models.Credit, res.Transactions[1].Type)
	assert.Equal(t, "2024-03-05", res.Transactions[1].Date)
}

func TestParse_Spreadsheet(t *testing.T) {
	doc := models.Document{
		Kind: models.KindSpreadsheet,
		Text: "Kotak Mahindra Bank\nAccount Number: 556677889900\n",
		Rows: [][]models.Cell{
			models.TextRow([]string{"Date", "Description", "Amount"}),
			{models.NumberCell(45352), models.TextCell("UPI refund"), models.NumberCell(120)},
			{models.NumberCell(45353), models.TextCell("Card purchase"), models.NumberCell(-42.5)},
		},
	}

	res, err := testEngine().Parse(testContext(), doc)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "Kotak Mahindra Bank", res.Bank.BankName)
	assert.Equal(t, "9900", res.Bank.AccountNumber)
	assert.Equal(t, models.Credit, res.Transactions[0].Type)
	assert.Equal(t, models.Debit, res.Transactions[1].Type)
	assert.Equal(t, "2024-03-02", res.Transactions[1].Date)
}

func TestParse_EmptySpreadsheet(t *testing.T) {
	_, err := testEngine().Parse(testContext(), models.Document{Kind: models.KindSpreadsheet})
	assert.ErrorIs(t, err, parser.ErrEmptyTable)
}

func TestParse_NoTransactions(t *testing.T) {
	doc := models.Document{Kind: models.KindText, Text: "Statement of Account\nNothing to see here\n"}

	res, err := testEngine().Parse(testContext(), doc)
	assert.ErrorIs(t, err, ErrNoTransactions)
	require.NotNil(t, res)
	assert.Equal(t, models.UnknownBank, res.Bank.BankName)
	assert.Empty(t, res.Transactions)
}

func TestParse_UnsupportedKind(t *testing.T) {
	_, err := testEngine().Parse(testContext(), models.Document{Kind: "image"})
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestParse_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(testContext())
	cancel()

	_, err := testEngine().Parse(ctx, models.Document{Kind: models.KindText, Text: "01-03-2024 Coffee 1.00"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParse_SubstituteRegistry(t *testing.T) {
	reg := registry.New([]registry.Entry{{Name: "Acme Savings", Keywords: []string{"acme"}}})
	e := New(reg, parser.Options{})

	doc := models.Document{Kind: models.KindText, Text: "ACME statement\n01-03-2024 Coffee shop purchase 12.00\n"}
	res, err := e.Parse(testContext(), doc)
	require.NoError(t, err)
	assert.Equal(t, "Acme Savings", res.Bank.BankName)
}
