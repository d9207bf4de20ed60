package parser

import (
	"errors"
	"time"
)

// Warnings attached to individual transactions.
const (
	WarnTypeUnclear    = "Transaction type unclear - please verify"
	WarnTwoAmounts     = "Multiple amounts found - using first amount, please verify"
	WarnManyAmounts    = "Multiple amounts detected - please verify amount"
	WarnSignInferred   = "Transaction type inferred from amount sign"
	WarnUnusualDate    = "Date seems unusual - please verify"
	WarnDateUnparsable = "Date could not be parsed - using processing date"
)

var (
	// ErrMissingColumns means a tabular header lacks a mandatory role.
	ErrMissingColumns = errors.New("missing required columns")
	// ErrEmptyTable means delimited input had no header row.
	ErrEmptyTable = errors.New("no header row")
)

const minDescriptionLength = 3

// Options tunes the heuristics. Zero fields take the defaults.
type Options struct {
	// Now supplies "today" for unparseable dates and the plausibility window.
	Now func() time.Time
	// MaxDescriptionLength caps descriptions, in characters.
	MaxDescriptionLength int
	// HeaderScanLines is how many leading lines may hold the column header.
	HeaderScanLines int
	// ContinuationLookahead is how many lines may extend a short description.
	ContinuationLookahead int
	// PastWindowYears and FutureWindowYears bound plausible dates.
	PastWindowYears   int
	FutureWindowYears int
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		Now:                   time.Now,
		MaxDescriptionLength:  100,
		HeaderScanLines:       25,
		ContinuationLookahead: 3,
		PastWindowYears:       2,
		FutureWindowYears:     1,
	}
}

// Parser extracts transactions from tabular rows and free-form text. It
// keeps no state between calls and is safe for concurrent use.
type Parser struct {
	opts Options
}

// New returns a Parser; zero-valued options fall back to DefaultOptions.
func New(opts Options) *Parser {
	def := DefaultOptions()
	if opts.Now == nil {
		opts.Now = def.Now
	}
	if opts.MaxDescriptionLength <= 0 {
		opts.MaxDescriptionLength = def.MaxDescriptionLength
	}
	if opts.HeaderScanLines <= 0 {
		opts.HeaderScanLines = def.HeaderScanLines
	}
	if opts.ContinuationLookahead <= 0 {
		opts.ContinuationLookahead = def.ContinuationLookahead
	}
	if opts.PastWindowYears <= 0 {
		opts.PastWindowYears = def.PastWindowYears
	}
	if opts.FutureWindowYears <= 0 {
		opts.FutureWindowYears = def.FutureWindowYears
	}
	return &Parser{opts: opts}
}

func (p *Parser) today() string {
	return p.opts.Now().Format("2006-01-02")
}

// plausible reports whether an ISO date falls inside the configured window
// around the processing time.
func (p *Parser) plausible(iso string) bool {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return false
	}
	now := p.opts.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	lower := today.AddDate(-p.opts.PastWindowYears, 0, 0)
	upper := today.AddDate(p.opts.FutureWindowYears, 0, 0)
	return !t.Before(lower) && !t.After(upper)
}
