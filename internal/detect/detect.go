// Package detect identifies the issuing bank and account number from the
// free-form text of a statement.
package detect

import (
	"strings"

	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/registry"
)

const (
	hitConfidence  = 0.9
	missConfidence = 0.1
)

// Bank scans text against reg. The keyword search runs on a lowercased,
// whitespace-collapsed copy; the account pattern runs on the original text.
func Bank(text string, reg *registry.Registry) models.BankDetection {
	lower := strings.ToLower(strings.Join(strings.Fields(text), " "))

	entry, ok := reg.Lookup(lower)
	if !ok {
		return models.BankDetection{
			BankName:      models.UnknownBank,
			AccountNumber: models.UnknownAccount,
			Confidence:    missConfidence,
		}
	}

	return models.BankDetection{
		BankName:      entry.Name,
		AccountNumber: lastFour(entry, text),
		Confidence:    hitConfidence,
	}
}

func lastFour(entry registry.Entry, text string) string {
	if entry.AccountPattern == nil {
		return models.UnknownAccount
	}
	m := entry.AccountPattern.FindStringSubmatch(text)
	if len(m) < 2 || m[1] == "" {
		return models.UnknownAccount
	}
	digits := m[1]
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return digits
}
