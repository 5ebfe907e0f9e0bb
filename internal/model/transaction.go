package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one signed posting against an account.
// Amounts carry the natural sign of the account: revenue earned and
// expenses incurred are positive, reversals negative.
type Transaction struct {
	ID            string
	CompanyID     string
	Date          time.Time
	Amount        decimal.Decimal
	AccountNumber int
	Description   string
	Reference     string
}

// BankTransaction represents a parsed bank CSV row.
type BankTransaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal // negative = money out, positive = money in
	Reference   string
	Type        string // bank transaction type (ACH_DEBIT, etc.)
}
