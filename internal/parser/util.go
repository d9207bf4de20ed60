package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-parser/internal/normalize"
)

// Date tokens recognized on free-form lines.
var datePattern = regexp.MustCompile(
	`(?i)\b(\d{4}[-/.]\d{1,2}[-/.]\d{1,2}` +
		`|\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}` +
		`|\d{1,2}[-\s](?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*[-\s]\d{2,4})\b`,
)

// amountTokenPattern matches a whole token that is a thousands-grouped
// (Western or lakh) or plain decimal number.
var amountTokenPattern = regexp.MustCompile(`^-?(?:\d{1,3}(?:,\d{2,3})+|\d+)(?:\.\d+)?$`)

var (
	minAmount = decimal.RequireFromString("0.01")
	maxAmount = decimal.NewFromInt(100_000_000)
)

var currencyPrefixes = []string{"₹", "$", "£", "€", "rs.", "rs", "inr"}

var whitespace = regexp.MustCompile(`\s+`)

// findDate returns the first date token in line and its byte span.
func findDate(line string) (string, []int) {
	loc := datePattern.FindStringIndex(line)
	if loc == nil {
		return "", nil
	}
	return line[loc[0]:loc[1]], loc
}

func hasDate(line string) bool {
	return datePattern.MatchString(line)
}

// amountToken reports whether field is a numeric amount, returning its
// magnitude. A currency prefix and a trailing "/-" are ignored. A trailing
// "Cr"/"Dr", bare or bracketed, is stripped and reported as a marker.
func amountToken(field string) (amt decimal.Decimal, marker string, ok bool) {
	f := strings.Trim(field, "(),;:")
	lower := strings.ToLower(f)
	for _, pre := range currencyPrefixes {
		if strings.HasPrefix(lower, pre) {
			f = f[len(pre):]
			lower = lower[len(pre):]
			break
		}
	}
	if strings.HasSuffix(f, "/-") {
		f = f[:len(f)-2]
		lower = lower[:len(lower)-2]
	}
	if strings.HasSuffix(lower, "cr") || strings.HasSuffix(lower, "dr") {
		marker = lower[len(lower)-2:]
		f = strings.TrimRight(f[:len(f)-2], ". (")
	}
	if !amountTokenPattern.MatchString(f) {
		return decimal.Zero, "", false
	}
	d, err := normalize.Amount(f)
	if err != nil {
		return decimal.Zero, "", false
	}
	d = d.Abs()
	if !d.GreaterThan(minAmount) || !d.LessThan(maxAmount) {
		return decimal.Zero, "", false
	}
	return d, marker, true
}

// cleanDescription trims, drops decorative characters, collapses
// whitespace and caps the length in runes.
func cleanDescription(s string, maxLen int) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '*', '#', '@':
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	if r := []rune(s); maxLen > 0 && len(r) > maxLen {
		s = strings.TrimSpace(string(r[:maxLen]))
	}
	return s
}

// normalizeLine cleans up common extraction artifacts.
func normalizeLine(line string) string {
	line = strings.ReplaceAll(line, "\u200B", "")
	line = strings.ReplaceAll(line, "\u00A0", " ")
	line = strings.ReplaceAll(line, "\t", " ")
	return strings.TrimSpace(line)
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func runeLen(s string) int { return len([]rune(s)) }
