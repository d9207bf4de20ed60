package models

import "github.com/shopspring/decimal"

// TxnType is the direction of a transaction.
type TxnType string

const (
	Debit  TxnType = "debit"
	Credit TxnType = "credit"
)

// Transaction is a single normalized statement transaction.
type Transaction struct {
	Date        string          `json:"date"` // YYYY-MM-DD
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"` // always positive
	Type        TxnType         `json:"type"`
	Confidence  float64         `json:"confidence"`
	Warnings    []string        `json:"warnings"`
}

// Candidate is a line-level extraction before type and amount are resolved.
type Candidate struct {
	RawDate      string
	Description  []string
	Amounts      []string
	CreditMarker bool
	DebitMarker  bool
}

// Sentinels reported when no registry entry matches.
const (
	UnknownBank    = "Unknown Bank"
	UnknownAccount = "XXXX"
)

// BankDetection is the best guess at the issuing bank and account.
type BankDetection struct {
	BankName      string  `json:"bankName"`
	AccountNumber string  `json:"accountNumber"`
	Confidence    float64 `json:"confidence"`
}

// DebugLine captures what the line extractor did with each input line.
type DebugLine struct {
	LineNum int    `json:"lineNum"`
	Text    string `json:"text"`
	HasDate bool   `json:"hasDate"`
	Result  string `json:"result"` // "header", "noise", "parsed", "continuation", "no-date", "dropped"
	Amounts int    `json:"amounts,omitempty"`
}

// Result is everything the engine returns for one document.
type Result struct {
	Kind         Kind          `json:"kind"`
	Transactions []Transaction `json:"transactions"`
	Bank         BankDetection `json:"bank"`
	Lines        []DebugLine   `json:"debugLines,omitempty"`
}
