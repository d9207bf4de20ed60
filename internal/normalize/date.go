// Package normalize converts raw date and amount tokens from bank
// statements into canonical values.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoLayout = "2006-01-02"

var (
	// DD-MM-YYYY, DD/MM/YYYY, DD.MM.YYYY
	dmyLong = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})\b`)
	// DD-MM-YY
	dmyShort = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{2})\b`)
	// YYYY-MM-DD
	ymd = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})\b`)
	// DD-Mon-YYYY, DD Mon YY, 5 January 2024
	dMonY = regexp.MustCompile(`(?i)^(\d{1,2})[-\s]+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?[-,\s]+(\d{4}|\d{2})\b`)
	// spreadsheet serial, optionally with a time fraction
	serial = regexp.MustCompile(`^\d{1,7}(?:\.\d+)?$`)
)

var monthMap = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// Spreadsheet serial day 0 is 1899-12-30, which absorbs the 1900 leap-year
// bug for every serial after February 1900.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

const maxSerial = 2958465 // 9999-12-31

// Date converts a date token to YYYY-MM-DD. Attempts run in a fixed order
// and the first match wins. ok is false when nothing matched; the caller
// decides what to fall back to.
func Date(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if m := dmyLong.FindStringSubmatch(s); m != nil {
		if d, ok := build(m[3], m[2], m[1]); ok {
			return d, true
		}
	}
	if m := dmyShort.FindStringSubmatch(s); m != nil {
		if d, ok := build("20"+m[3], m[2], m[1]); ok {
			return d, true
		}
	}
	if m := ymd.FindStringSubmatch(s); m != nil {
		if d, ok := build(m[1], m[2], m[3]); ok {
			return d, true
		}
	}
	if m := dMonY.FindStringSubmatch(s); m != nil {
		year := m[3]
		if len(year) == 2 {
			year = "20" + year
		}
		month := monthMap[strings.ToLower(m[2])]
		if d, ok := build(year, strconv.Itoa(int(month)), m[1]); ok {
			return d, true
		}
	}
	if serial.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err == nil {
			return SerialDate(f)
		}
	}
	return "", false
}

// SerialDate converts a spreadsheet serial day number to YYYY-MM-DD. Any
// time-of-day fraction is dropped.
func SerialDate(v float64) (string, bool) {
	if v < 1 || v > maxSerial {
		return "", false
	}
	days := int(v)
	return serialEpoch.AddDate(0, 0, days).Format(isoLayout), true
}

// FormatDate renders the calendar date of t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(isoLayout)
}

// ParseISO parses a YYYY-MM-DD string produced by this package.
func ParseISO(s string) (time.Time, error) {
	return time.Parse(isoLayout, s)
}

// build validates the parts as a real calendar date and zero-pads them.
func build(year, month, day string) (string, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	mo, err := strconv.Atoi(month)
	if err != nil || mo < 1 || mo > 12 {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return "", false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes 31-02 into March; reject that.
	if t.Day() != d || int(t.Month()) != mo {
		return "", false
	}
	return t.Format(isoLayout), true
}
