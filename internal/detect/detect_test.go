package detect

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/registry"
)

func TestBank(t *testing.T) {
	reg := registry.Default()

	tests := []struct {
		name string
		text string
		want models.BankDetection
	}{
		{
			name: "hdfc with account",
			text: "HDFC BANK STATEMENT Account No: 123456789012",
			want: models.BankDetection{BankName: "HDFC Bank", AccountNumber: "9012", Confidence: 0.9},
		},
		{
			name: "keyword split over lines",
			text: "STATE\n   BANK OF INDIA\nA/C No. 30012345678",
			want: models.BankDetection{BankName: "State Bank of India", AccountNumber: "5678", Confidence: 0.9},
		},
		{
			name: "known bank without account",
			text: "ICICI Bank savings statement",
			want: models.BankDetection{BankName: "ICICI Bank", AccountNumber: "XXXX", Confidence: 0.9},
		},
		{
			name: "masked account",
			text: "Kotak Mahindra Bank\nAccount Number: XXXXXXXX7788",
			want: models.BankDetection{BankName: "Kotak Mahindra Bank", AccountNumber: "7788", Confidence: 0.9},
		},
		{
			name: "unknown bank",
			text: "MONTHLY STATEMENT\nAccount No: 55512345",
			want: models.BankDetection{BankName: "Unknown Bank", AccountNumber: "XXXX", Confidence: 0.1},
		},
		{
			name: "empty",
			text: "",
			want: models.BankDetection{BankName: "Unknown Bank", AccountNumber: "XXXX", Confidence: 0.1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Bank(tt.text, reg))
		})
	}
}

func TestBank_SubstituteRegistry(t *testing.T) {
	reg := registry.New([]registry.Entry{
		{Name: "Tiny Bank", Keywords: []string{"tiny"}, AccountPattern: regexp.MustCompile(`ref\s*(\d+)`)},
	})

	got := Bank("TINY savings ref 99887766", reg)
	assert.Equal(t, "Tiny Bank", got.BankName)
	assert.Equal(t, "7766", got.AccountNumber)

	got = Bank("HDFC BANK STATEMENT", reg)
	assert.Equal(t, models.UnknownBank, got.BankName)
}
