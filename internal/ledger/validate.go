package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// Rules checked by ValidateTransactions.
const (
	RuleAccount   = "account"
	RuleAmount    = "amount"
	RulePrecision = "precision"
	RuleDate      = "date"
	RuleID        = "id"
)

// Violation describes a single rule a transaction breaks.
type Violation struct {
	Rule          string
	TransactionID string
	Description   string
}

func (v Violation) String() string {
	if v.TransactionID == "" {
		return fmt.Sprintf("%s: %s", v.Rule, v.Description)
	}
	return fmt.Sprintf("%s [%s]: %s", v.Rule, v.TransactionID, v.Description)
}

// ValidationError collects every violation found in a batch.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return "ledger validation failed: " + strings.Join(msgs, "; ")
}

// AccountChecker tests whether an account number exists in the chart of accounts.
type AccountChecker interface {
	Exists(number int) bool
}

var hundred = decimal.NewFromInt(100)

// ValidateTransactions checks a batch of transactions. It returns nil or a
// *ValidationError listing every problem.
func ValidateTransactions(txns []model.Transaction, accounts AccountChecker) error {
	var vs []Violation
	add := func(rule string, txn model.Transaction, format string, args ...any) {
		vs = append(vs, Violation{Rule: rule, TransactionID: txn.ID, Description: fmt.Sprintf(format, args...)})
	}

	seen := make(map[string]bool)
	for _, txn := range txns {
		if txn.Date.IsZero() {
			add(RuleDate, txn, "date is required")
		}
		if txn.Amount.IsZero() {
			add(RuleAmount, txn, "amount must not be zero")
		}
		cents := txn.Amount.Mul(hundred)
		if !cents.Equal(cents.Truncate(0)) {
			add(RulePrecision, txn, "amount %s has more than 2 decimal places", txn.Amount)
		}
		if !accounts.Exists(txn.AccountNumber) {
			add(RuleAccount, txn, "unknown account %d", txn.AccountNumber)
		}
		if txn.ID != "" {
			if seen[txn.ID] {
				add(RuleID, txn, "duplicate transaction ID")
			}
			seen[txn.ID] = true
		}
	}

	if len(vs) == 0 {
		return nil
	}
	return &ValidationError{Violations: vs}
}
