package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-parser/internal/parser"
	"github.com/insightdelivered/statement-parser/internal/pipeline"
)

func setupTestApp() *fiber.App {
	h := &Handler{
		Engine: pipeline.New(nil, parser.Options{}),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return NewApp(h, 4<<20)
}

type formField struct {
	name, filename, value string
}

func postForm(t *testing.T, app *fiber.App, fields ...formField) (int, ParseResponse, map[string]any) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range fields {
		if f.filename != "" {
			part, err := mw.CreateFormFile(f.name, f.filename)
			require.NoError(t, err)
			_, err = part.Write([]byte(f.value))
			require.NoError(t, err)
			continue
		}
		require.NoError(t, mw.WriteField(f.name, f.value))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/parse", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed ParseResponse
	require.NoError(t, json.Unmarshal(data, &parsed))
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	return resp.StatusCode, parsed, raw
}

func TestHealthEndpoint(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest("GET", "/api/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var result map[string]string
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "ok", result["status"])
	assert.Equal(t, "fiber", result["engine"])
	assert.Equal(t, Version, result["version"])
}

func TestParseEndpointRequiresInput(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest("POST", "/api/parse", nil)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=----test")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestParseEndpoint_CSVUpload(t *testing.T) {
	csv := "Date,Description,Debit,Credit\n" +
		"01-03-2024,Coffee Shop,150.00,\n" +
		"02-03-2024,Salary,,50000.00\n"

	status, resp, raw := postForm(t, setupTestApp(), formField{name: "file", filename: "march.csv", value: csv})
	require.Equal(t, fiber.StatusOK, status, resp.Error)

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.DocumentID)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 0, resp.LowConfidence)
	assert.Equal(t, "150", resp.TotalDebit.String())
	assert.Equal(t, "50000", resp.TotalCredit.String())
	assert.Equal(t, "Unknown Bank", resp.Bank.BankName)
	assert.Contains(t, resp.CSV, "2024-03-01,Coffee Shop,debit,150.00,0.90,")
	assert.Contains(t, raw, "totalDebit")
	assert.Contains(t, raw, "lowConfidence")
}

func TestParseEndpoint_PastedText(t *testing.T) {
	text := "HDFC BANK STATEMENT Account No: 123456789012\n02-03-2024 Payment XYZ 500 1500\n"

	status, resp, _ := postForm(t, setupTestApp(),
		formField{name: "text", value: text},
		formField{name: "header", value: "false"},
	)
	require.Equal(t, fiber.StatusOK, status, resp.Error)

	assert.Equal(t, "HDFC Bank", resp.Bank.BankName)
	assert.Equal(t, "9012", resp.Bank.AccountNumber)
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, 1, resp.LowConfidence)
	assert.NotContains(t, resp.CSV, "# Bank")
	assert.NotEmpty(t, resp.DebugLines)
}

func TestParseEndpoint_Failures(t *testing.T) {
	tests := []struct {
		name   string
		fields []formField
		status int
	}{
		{
			name:   "missing column",
			fields: []formField{{name: "file", filename: "bad.csv", value: "Narration,Amount\nCoffee Shop,150.00\n"}},
			status: fiber.StatusUnprocessableEntity,
		},
		{
			name:   "unsupported file",
			fields: []formField{{name: "file", filename: "scan.png", value: "PNG"}},
			status: fiber.StatusBadRequest,
		},
		{
			name:   "unknown kind",
			fields: []formField{{name: "kind", value: "docx"}, {name: "text", value: "hello"}},
			status: fiber.StatusBadRequest,
		},
		{
			name:   "no transactions",
			fields: []formField{{name: "text", value: "Statement of Account\nNothing to see here\n"}},
			status: fiber.StatusUnprocessableEntity,
		},
		{
			name:   "unreadable pdf",
			fields: []formField{{name: "file", filename: "statement.pdf", value: "not a pdf"}},
			status: fiber.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp, _ := postForm(t, setupTestApp(), tt.fields...)
			assert.Equal(t, tt.status, status)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
			assert.NotNil(t, resp.Transactions)
		})
	}
}

func TestParseEndpoint_KindOverride(t *testing.T) {
	csv := "Date,Description,Amount\n01-03-2024,Refund from store,25.00\n"

	status, resp, _ := postForm(t, setupTestApp(),
		formField{name: "kind", value: "csv"},
		formField{name: "file", filename: "export.dat", value: csv},
	)
	require.Equal(t, fiber.StatusOK, status, resp.Error)
	assert.Equal(t, "delimited", string(resp.Kind))
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, "credit", string(resp.Transactions[0].Type))
}
