package parser

import (
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// Resolution is the outcome of choosing an amount and type for one line.
type Resolution struct {
	Amount     decimal.Decimal
	Type       models.TxnType
	Confidence float64
	Warnings   []string
	OK         bool
}

// Resolve picks the amount and type for a line from its numeric candidates
// and the credit/debit markers seen on it. The first candidate is always the
// amount; more candidates and missing or conflicting markers only lower the
// confidence. OK is false when no positive amount exists.
func Resolve(candidates []decimal.Decimal, credit, debit bool) Resolution {
	if len(candidates) == 0 || !candidates[0].IsPositive() {
		return Resolution{}
	}

	res := Resolution{Amount: candidates[0], Type: models.Debit, OK: true}

	// Exactly one marker kind is usable evidence; both cancel out.
	marked := credit != debit
	if marked && credit {
		res.Type = models.Credit
	}

	switch n := len(candidates); {
	case n == 1 && marked:
		res.Confidence = 0.95
	case n == 1:
		res.Confidence = 0.6
		res.Warnings = append(res.Warnings, WarnTypeUnclear)
	case n == 2 && marked:
		res.Confidence = 0.85
	case n == 2:
		res.Confidence = 0.65
		res.Warnings = append(res.Warnings, WarnTwoAmounts)
	case marked:
		res.Confidence = 0.75
		res.Warnings = append(res.Warnings, WarnManyAmounts)
	default:
		res.Confidence = 0.5
		res.Warnings = append(res.Warnings, WarnManyAmounts)
	}
	return res
}
