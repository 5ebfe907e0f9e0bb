package model

import "strconv"

// Classification places an account on the balance sheet or income statement.
type Classification string

const (
	ClassCurrentAsset      Classification = "current-asset"
	ClassFixedAsset        Classification = "fixed-asset"
	ClassOtherAsset        Classification = "other-asset"
	ClassCurrentLiability  Classification = "current-liability"
	ClassLongTermLiability Classification = "long-term-liability"
	ClassCapital           Classification = "capital"
	ClassRevenue           Classification = "revenue"
	ClassCostOfSales       Classification = "cost-of-sales"
	ClassExpense           Classification = "expense"
)

// Classifications lists every known classification in chart order.
var Classifications = []Classification{
	ClassCurrentAsset,
	ClassFixedAsset,
	ClassOtherAsset,
	ClassCurrentLiability,
	ClassLongTermLiability,
	ClassCapital,
	ClassRevenue,
	ClassCostOfSales,
	ClassExpense,
}

// Valid reports whether c is a known classification.
func (c Classification) Valid() bool {
	for _, known := range Classifications {
		if c == known {
			return true
		}
	}
	return false
}

// IncomeStatement reports whether accounts of this class appear on the income statement.
func (c Classification) IncomeStatement() bool {
	return c == ClassRevenue || c == ClassCostOfSales || c == ClassExpense
}

// Account represents a row in the chart of accounts.
type Account struct {
	Number         int
	Name           string
	Classification Classification
	// Contra marks accumulated depreciation (fixed assets) or
	// accumulated amortization (other assets).
	Contra      bool
	Description string
}

// DisplayName returns the account name, or the raw number when the name is empty.
func (a Account) DisplayName() string {
	if a.Name == "" {
		return strconv.Itoa(a.Number)
	}
	return a.Name
}
