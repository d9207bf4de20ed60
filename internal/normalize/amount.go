package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNoAmount means the token had nothing numeric left after cleaning.
var ErrNoAmount = errors.New("no amount")

// Amount parses a raw amount token such as "1,234.56", "-£25.99" or
// "INR 1,50,000.00". Everything other than digits, '.' and a leading '-'
// is stripped first.
func Amount(raw string) (decimal.Decimal, error) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}

	s := b.String()
	if s == "" || s == "-" || s == "." || s == "-." {
		return decimal.Zero, ErrNoAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNoAmount, raw)
	}
	return d, nil
}

// FromFloat converts a native spreadsheet number.
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
