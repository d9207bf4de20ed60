package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/insightdelivered/statement-parser/internal/models"
)

func amounts(vals ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		candidates []decimal.Decimal
		credit     bool
		debit      bool
		wantAmount string
		wantType   models.TxnType
		wantConf   float64
		wantWarn   []string
	}{
		{"single credit", amounts("500"), true, false, "500", models.Credit, 0.95, nil},
		{"single debit", amounts("500"), false, true, "500", models.Debit, 0.95, nil},
		{"single unmarked", amounts("500"), false, false, "500", models.Debit, 0.6, []string{WarnTypeUnclear}},
		{"single conflicting", amounts("500"), true, true, "500", models.Debit, 0.6, []string{WarnTypeUnclear}},
		{"two with marker", amounts("500", "1500"), true, false, "500", models.Credit, 0.85, nil},
		{"two unmarked", amounts("500", "1500"), false, false, "500", models.Debit, 0.65, []string{WarnTwoAmounts}},
		{"many with marker", amounts("10", "20", "30"), false, true, "10", models.Debit, 0.75, []string{WarnManyAmounts}},
		{"many unmarked", amounts("10", "20", "30"), false, false, "10", models.Debit, 0.5, []string{WarnManyAmounts}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.candidates, tt.credit, tt.debit)
			assert.True(t, got.OK)
			assert.True(t, decimal.RequireFromString(tt.wantAmount).Equal(got.Amount), "amount %s", got.Amount)
			assert.Equal(t, tt.wantType, got.Type)
			assert.InDelta(t, tt.wantConf, got.Confidence, 1e-9)
			assert.Equal(t, tt.wantWarn, got.Warnings)
		})
	}
}

func TestResolve_NoAmount(t *testing.T) {
	assert.False(t, Resolve(nil, true, false).OK)
	assert.False(t, Resolve(amounts("0"), true, false).OK)
	assert.False(t, Resolve(amounts("-5"), false, true).OK)
}

func TestResolve_ConfidenceOrdering(t *testing.T) {
	for _, n := range [][]decimal.Decimal{amounts("1"), amounts("1", "2"), amounts("1", "2", "3")} {
		marked := Resolve(n, true, false)
		unmarked := Resolve(n, false, false)
		assert.Greater(t, marked.Confidence, unmarked.Confidence, "%d candidates", len(n))
	}

	one := Resolve(amounts("1"), false, true).Confidence
	two := Resolve(amounts("1", "2"), false, true).Confidence
	three := Resolve(amounts("1", "2", "3"), false, true).Confidence
	assert.Greater(t, one, two)
	assert.Greater(t, two, three)
}
