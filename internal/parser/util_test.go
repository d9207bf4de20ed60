package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmountToken(t *testing.T) {
	tests := []struct {
		input      string
		want       string
		wantMarker string
		wantOK     bool
	}{
		{"25.99", "25.99", "", true},
		{"1,234.56", "1234.56", "", true},
		{"1,00,000.00", "100000", "", true},
		{"£1,234,567.89", "1234567.89", "", true},
		{"Rs.1,500", "1500", "", true},
		{"₹500", "500", "", true},
		{"(250.00)", "250", "", true},
		{"-45.00", "45", "", true},
		{"500.00Cr", "500", "cr", true},
		{"1,200.00DR", "1200", "dr", true},
		{"Rs.500/-", "500", "", true},
		{"1,500/-", "1500", "", true},
		{"1,500.00(Cr)", "1500", "cr", true},
		{"1,500.00Cr)", "1500", "cr", true},
		{"750.25(Dr)", "750.25", "dr", true},
		{"(Cr)", "", "", false},
		{"/-", "", "", false},
		{"0.00", "", "", false},
		{"0.01", "", "", false},
		{"100000000", "", "", false},
		{"DR", "", "", false},
		{"1.2.3", "", "", false},
		{"TESCO", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, marker, ok := amountToken(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
			assert.Equal(t, tt.wantMarker, marker)
		})
	}
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "Coffee Shop", cleanDescription("  Coffee   *Shop#@  ", 100))
	assert.Equal(t, "UPI", cleanDescription("UPI/ ", 3))
	assert.Equal(t, "abcde", cleanDescription("abcdefgh", 5))
	assert.Equal(t, "", cleanDescription(" ** ", 100))
}

func TestFindDate(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"01-03-2024 Coffee Shop 150.00", "01-03-2024"},
		{"Txn on 2024-03-01 POS", "2024-03-01"},
		{"5 Jan 2024 CARD PAYMENT", "5 Jan 2024"},
		{"12-Feb-24 NEFT", "12-Feb-24"},
		{"15/01/24 DD", "15/01/24"},
		{"no date here 150.00", ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, loc := findDate(tt.line)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want != "", loc != nil)
		})
	}
}

func TestNormalizeLine(t *testing.T) {
	assert.Equal(t, "a b  c", normalizeLine("\u200B a b \tc\t"))
}
