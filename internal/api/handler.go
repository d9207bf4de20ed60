package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-parser/internal/appcontext"
	"github.com/insightdelivered/statement-parser/internal/extractor"
	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/parser"
	"github.com/insightdelivered/statement-parser/internal/pipeline"
	"github.com/insightdelivered/statement-parser/internal/writer"
)

// Version is reported by the health endpoint.
const Version = "2.0.0"

// lowConfidence is the threshold under which a transaction needs review.
const lowConfidence = 0.7

// ParseResponse is the JSON response from the /api/parse endpoint.
type ParseResponse struct {
	Success       bool                  `json:"success"`
	Error         string                `json:"error,omitempty"`
	DocumentID    string                `json:"documentId,omitempty"`
	Kind          models.Kind           `json:"kind,omitempty"`
	Bank          *models.BankDetection `json:"bank,omitempty"`
	Transactions  []models.Transaction  `json:"transactions"`
	CSV           string                `json:"csv,omitempty"`
	TotalDebit    decimal.Decimal       `json:"totalDebit"`
	TotalCredit   decimal.Decimal       `json:"totalCredit"`
	Count         int                   `json:"count"`
	LowConfidence int                   `json:"lowConfidence"`
	Version       string                `json:"version,omitempty"`
	DebugLines    []models.DebugLine    `json:"debugLines,omitempty"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Engine *pipeline.Engine
	Logger *slog.Logger
}

// NewApp builds the fiber app with all routes registered.
func NewApp(h *Handler, bodyLimit int) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "statement-parser",
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	h.Register(app)
	return app
}

// Register sets up the HTTP routes.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/api/health", h.Health)
	app.Post("/api/parse", h.Parse)
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Health reports liveness.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
		"engine":  "fiber",
	})
}

// Parse accepts a multipart "file" upload, or pasted statement text in the
// "text" field, and returns the extracted transactions. An optional "kind"
// overrides the file-extension guess; "header=false" drops the metadata rows
// from the CSV rendition.
func (h *Handler) Parse(c *fiber.Ctx) error {
	id := uuid.NewString()
	logger := h.logger().With("documentId", id)
	ctx := appcontext.WithLogger(c.UserContext(), logger)

	var kind models.Kind
	if v := c.FormValue("kind"); v != "" {
		k, ok := models.ParseKind(v)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Unknown kind %q. Use csv, xlsx, text or pdf.", v))
		}
		kind = k
	}

	doc, err := h.readDocument(c, kind)
	if err != nil {
		status := fiber.StatusUnprocessableEntity
		if errors.Is(err, extractor.ErrUnsupportedFile) || errors.Is(err, errNoInput) {
			status = fiber.StatusBadRequest
		}
		logger.WarnContext(ctx, "statement rejected", "error", err)
		return writeError(c, status, err.Error())
	}

	res, err := h.Engine.Parse(ctx, doc)
	switch {
	case errors.Is(err, pipeline.ErrNoTransactions):
		logger.WarnContext(ctx, "no transactions", "name", doc.Name, "bank", res.Bank.BankName)
		resp := ParseResponse{
			Error:        "No transactions found. The statement format may not match expected patterns.",
			DocumentID:   id,
			Kind:         res.Kind,
			Bank:         &res.Bank,
			Transactions: []models.Transaction{},
			DebugLines:   res.Lines,
			Version:      Version,
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	case errors.Is(err, parser.ErrMissingColumns), errors.Is(err, parser.ErrEmptyTable):
		logger.WarnContext(ctx, "statement rejected", "name", doc.Name, "error", err)
		return writeError(c, fiber.StatusUnprocessableEntity, err.Error())
	case err != nil:
		logger.ErrorContext(ctx, "parsing failed", "name", doc.Name, "error", err)
		return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("Parsing failed: %v", err))
	}

	var csvBuf bytes.Buffer
	csvWriter := &writer.CSVWriter{IncludeHeader: c.FormValue("header") != "false"}
	if err := csvWriter.Write(&csvBuf, res); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	resp := ParseResponse{
		Success:      true,
		DocumentID:   id,
		Kind:         res.Kind,
		Bank:         &res.Bank,
		Transactions: res.Transactions,
		CSV:          csvBuf.String(),
		TotalDebit:   decimal.Zero,
		TotalCredit:  decimal.Zero,
		Count:        len(res.Transactions),
		Version:      Version,
		DebugLines:   res.Lines,
	}
	for _, txn := range res.Transactions {
		if txn.Type == models.Debit {
			resp.TotalDebit = resp.TotalDebit.Add(txn.Amount)
		} else {
			resp.TotalCredit = resp.TotalCredit.Add(txn.Amount)
		}
		if txn.Confidence < lowConfidence {
			resp.LowConfidence++
		}
	}

	logger.InfoContext(ctx, "statement parsed",
		"name", doc.Name,
		"kind", res.Kind,
		"bank", res.Bank.BankName,
		"count", resp.Count,
		"lowConfidence", resp.LowConfidence,
	)
	return c.JSON(resp)
}

var errNoInput = errors.New("no file uploaded. Use form field 'file', or 'text' for pasted statements")

// readDocument loads the uploaded file, or the pasted text when no file was
// sent.
func (h *Handler) readDocument(c *fiber.Ctx, kind models.Kind) (models.Document, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		text := c.FormValue("text")
		if text == "" {
			return models.Document{}, errNoInput
		}
		if kind == "" {
			kind = models.KindText
		}
		return extractor.LoadKind(kind, "pasted text", []byte(text))
	}

	f, err := fh.Open()
	if err != nil {
		return models.Document{}, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.Document{}, fmt.Errorf("reading upload: %w", err)
	}
	if kind != "" {
		return extractor.LoadKind(kind, fh.Filename, data)
	}
	return extractor.Load(fh.Filename, data)
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ParseResponse{
		Success:      false,
		Error:        msg,
		Transactions: []models.Transaction{},
	})
}
