package parser

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/normalize"
)

// Header words: a header line has a date word plus a column word.
var (
	headerDateWords   = []string{"date"}
	headerColumnWords = []string{
		"description", "narration", "particulars", "details", "remarks",
		"transaction", "amount", "debit", "credit", "withdrawal", "deposit",
		"balance", "paid out", "paid in", "money",
	}
)

// Summary and boundary lines that are never transactions.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bopening\s+balance\b`),
	regexp.MustCompile(`(?i)\bclosing\s+balance\b`),
	regexp.MustCompile(`(?i)\b(?:brought|carried)\s+forward\b`),
	regexp.MustCompile(`(?i)^totals?\b`),
	regexp.MustCompile(`(?i)\btotals\b`),
	regexp.MustCompile(`(?i)\btotal\s+(?:debits?|credits?|withdrawals?|deposits?|amount|balance|transactions?)\b`),
	regexp.MustCompile(`(?i)\bstatement\s+(?:period|of\s+account)\b`),
	regexp.MustCompile(`(?i)\bpage\s+\d+(?:\s*(?:of|/)\s*\d+)?\b`),
	regexp.MustCompile(`(?i)\bcontinued\b`),
}

// Type markers. Bare "payment" is not a marker: it shows up on both sides
// ("payment received", "payment to").
var (
	creditKeywords = []string{"credit", "deposit", "received", "salary", "refund", "interest credited"}
	debitKeywords  = []string{
		"debit", "withdrawal", "purchase", "transfer to", "paid to",
		"payment to", "bill payment", "card payment",
	}
	crToken = regexp.MustCompile(`(?i)\bcr\b`)
	drToken = regexp.MustCompile(`(?i)\bdr\b`)
)

func isNoiseLine(line string) bool {
	for _, re := range noisePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// isHeaderLine reports a column header row. Lines holding a date token are
// data, even when a word like "mandate" contains "date".
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	return containsAny(lower, headerDateWords) &&
		containsAny(lower, headerColumnWords) &&
		!hasDate(line)
}

// markers scans text for credit and debit evidence.
func markers(text string) (credit, debit bool) {
	lower := strings.ToLower(text)
	credit = containsAny(lower, creditKeywords) || crToken.MatchString(lower)
	debit = containsAny(lower, debitKeywords) || drToken.MatchString(lower)
	return credit, debit
}

// headerEnd returns the index of the first data line: the line after the
// column header when one appears within the scan limit, otherwise 0.
func (p *Parser) headerEnd(lines []string) int {
	limit := p.opts.HeaderScanLines
	if limit > len(lines) {
		limit = len(lines)
	}
	for i := 0; i < limit; i++ {
		if isHeaderLine(normalizeLine(lines[i])) {
			return i + 1
		}
	}
	return 0
}

// lineParts splits the text of one line into description words and amount
// candidates. A "Cr"/"Dr" suffix on an amount is reported as a marker.
func lineParts(text string) (words []string, amounts []string, credit, debit bool) {
	for _, f := range strings.Fields(text) {
		if _, marker, ok := amountToken(f); ok {
			amounts = append(amounts, f)
			switch marker {
			case "cr":
				credit = true
			case "dr":
				debit = true
			}
			continue
		}
		switch strings.Trim(strings.ToLower(f), "().") {
		case "cr", "dr":
			continue
		}
		words = append(words, f)
	}
	return words, amounts, credit, debit
}

// ParseText extracts transactions from free-form statement text, one per
// dated line (plus any continuation lines it absorbs), in document order.
// The returned trace records what happened to every non-blank line.
func (p *Parser) ParseText(text string) ([]models.Transaction, []models.DebugLine) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	start := p.headerEnd(lines)

	var txns []models.Transaction
	var trace []models.DebugLine

	for i := 0; i < start; i++ {
		line := normalizeLine(lines[i])
		if line == "" {
			continue
		}
		result := "preamble"
		if i == start-1 {
			result = "header"
		}
		trace = append(trace, debugLine(i, line, result))
	}

	for i := start; i < len(lines); i++ {
		line := normalizeLine(lines[i])
		if line == "" {
			continue
		}
		dl := debugLine(i, line, "")

		if isNoiseLine(line) {
			dl.Result = "noise"
			trace = append(trace, dl)
			continue
		}
		if isHeaderLine(line) {
			dl.Result = "header"
			trace = append(trace, dl)
			continue
		}

		rawDate, loc := findDate(line)
		if loc == nil {
			dl.Result = "no-date"
			trace = append(trace, dl)
			continue
		}
		dl.HasDate = true

		cand := models.Candidate{RawDate: rawDate}
		rest := datePattern.ReplaceAllString(line, " ")
		words, amounts, cr, dr := lineParts(rest)
		cand.Description = append(cand.Description, strings.Join(words, " "))
		cand.Amounts = append(cand.Amounts, amounts...)
		cand.CreditMarker, cand.DebitMarker = cr, dr
		markerText := line

		// A short description usually means the narration wrapped onto the
		// following undated lines.
		var absorbed []models.DebugLine
		if runeLen(cleanDescription(strings.Join(cand.Description, " "), 0)) < minDescriptionLength {
			last := i
			for j := i + 1; j < len(lines) && j <= i+p.opts.ContinuationLookahead; j++ {
				next := normalizeLine(lines[j])
				if next == "" {
					continue
				}
				if hasDate(next) || isNoiseLine(next) || isHeaderLine(next) {
					break
				}
				w, a, c, d := lineParts(next)
				cand.Description = append(cand.Description, strings.Join(w, " "))
				cand.Amounts = append(cand.Amounts, a...)
				cand.CreditMarker = cand.CreditMarker || c
				cand.DebitMarker = cand.DebitMarker || d
				markerText += " " + next
				absorbed = append(absorbed, debugLine(j, next, "continuation"))
				last = j
				if runeLen(cleanDescription(strings.Join(cand.Description, " "), 0)) >= minDescriptionLength {
					break
				}
			}
			i = last
		}

		cr, dr = markers(markerText)
		cand.CreditMarker = cand.CreditMarker || cr
		cand.DebitMarker = cand.DebitMarker || dr
		dl.Amounts = len(cand.Amounts)

		txn, ok := p.fromCandidate(cand)
		if ok {
			dl.Result = "parsed"
			txns = append(txns, txn)
		} else {
			dl.Result = "dropped"
		}
		trace = append(trace, dl)
		trace = append(trace, absorbed...)
	}

	return txns, trace
}

// fromCandidate resolves and normalizes one candidate. ok is false when the
// candidate has no usable description or positive amount.
func (p *Parser) fromCandidate(c models.Candidate) (models.Transaction, bool) {
	desc := cleanDescription(strings.Join(c.Description, " "), p.opts.MaxDescriptionLength)
	if runeLen(desc) < minDescriptionLength {
		return models.Transaction{}, false
	}

	amounts := make([]decimal.Decimal, 0, len(c.Amounts))
	for _, raw := range c.Amounts {
		if amt, _, ok := amountToken(raw); ok {
			amounts = append(amounts, amt)
		}
	}
	res := Resolve(amounts, c.CreditMarker, c.DebitMarker)
	if !res.OK {
		return models.Transaction{}, false
	}

	txn := models.Transaction{
		Description: desc,
		Amount:      res.Amount,
		Type:        res.Type,
		Confidence:  res.Confidence,
		Warnings:    append([]string{}, res.Warnings...),
	}

	date, ok := normalize.Date(c.RawDate)
	switch {
	case !ok:
		txn.Date = p.today()
		txn.Warnings = append(txn.Warnings, WarnDateUnparsable)
		txn.Confidence = math.Min(txn.Confidence, 0.5)
	case !p.plausible(date):
		txn.Date = date
		txn.Warnings = append(txn.Warnings, WarnUnusualDate)
		txn.Confidence = math.Min(txn.Confidence, 0.6)
	default:
		txn.Date = date
	}
	return txn, true
}

func debugLine(i int, line, result string) models.DebugLine {
	dl := models.DebugLine{LineNum: i + 1, Text: line, Result: result}
	// Truncate long lines for debug display
	if r := []rune(line); len(r) > 120 {
		dl.Text = string(r[:120]) + "..."
	}
	return dl
}
