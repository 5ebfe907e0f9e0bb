package statements

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// BalanceLine is one account's running balance.
type BalanceLine struct {
	AccountNumber int
	Name          string
	Balance       decimal.Decimal
}

// BalanceGroup is a titled block of the balance sheet.
type BalanceGroup struct {
	Lines []BalanceLine
	Total decimal.Decimal
}

func (g *BalanceGroup) add(line BalanceLine) {
	g.Lines = append(g.Lines, line)
	g.Total = g.Total.Add(line.Balance)
}

// BalanceSheet is the position of the business as of one day.
type BalanceSheet struct {
	AsOf time.Time

	CurrentAssets       BalanceGroup
	FixedAssets         BalanceGroup
	Depreciation        BalanceGroup // contra fixed-asset accounts
	OtherAssets         BalanceGroup
	Amortization        BalanceGroup // contra other-asset accounts
	CurrentLiabilities  BalanceGroup
	LongTermLiabilities BalanceGroup
	Capital             BalanceGroup

	// Unclassified holds balances posted to account numbers missing from
	// the chart; they are shown but excluded from every total.
	Unclassified BalanceGroup

	TotalAssets                decimal.Decimal
	TotalLiabilities           decimal.Decimal
	TotalCapital               decimal.Decimal
	TotalLiabilitiesAndCapital decimal.Decimal
}

// BalanceCheck is the result of comparing both sides of a balance sheet.
type BalanceCheck struct {
	Balanced   bool
	Difference decimal.Decimal // TotalAssets - TotalLiabilitiesAndCapital
}

// Check reports whether assets equal liabilities plus capital. It never
// alters the sheet.
func (b BalanceSheet) Check() BalanceCheck {
	diff := b.TotalAssets.Sub(b.TotalLiabilitiesAndCapital)
	return BalanceCheck{Balanced: diff.IsZero(), Difference: diff}
}

// BuildBalanceSheet sums every transaction dated on or before asOf into its
// account and groups the balances by classification.
func BuildBalanceSheet(txns []model.Transaction, accounts []model.Account, asOf time.Time) BalanceSheet {
	cutoff := model.Day(asOf)

	balances := make(map[int]decimal.Decimal)
	for _, txn := range txns {
		if model.Day(txn.Date).After(cutoff) {
			continue
		}
		balances[txn.AccountNumber] = balances[txn.AccountNumber].Add(txn.Amount)
	}

	chart := make([]model.Account, len(accounts))
	copy(chart, accounts)
	sort.SliceStable(chart, func(i, j int) bool { return chart[i].Number < chart[j].Number })

	sheet := BalanceSheet{AsOf: cutoff}
	known := make(map[int]bool, len(chart))
	for _, acct := range chart {
		known[acct.Number] = true
		group := sheet.groupFor(acct)
		if group == nil {
			continue
		}
		group.add(BalanceLine{
			AccountNumber: acct.Number,
			Name:          acct.DisplayName(),
			Balance:       balances[acct.Number],
		})
	}

	var orphans []int
	for number := range balances {
		if !known[number] {
			orphans = append(orphans, number)
		}
	}
	sort.Ints(orphans)
	for _, number := range orphans {
		sheet.Unclassified.add(BalanceLine{
			AccountNumber: number,
			Name:          strconv.Itoa(number),
			Balance:       balances[number],
		})
	}

	sheet.TotalAssets = sheet.CurrentAssets.Total.
		Add(sheet.FixedAssets.Total.Sub(sheet.Depreciation.Total)).
		Add(sheet.OtherAssets.Total.Sub(sheet.Amortization.Total))
	sheet.TotalLiabilities = sheet.CurrentLiabilities.Total.Add(sheet.LongTermLiabilities.Total)
	sheet.TotalCapital = sheet.Capital.Total
	sheet.TotalLiabilitiesAndCapital = sheet.TotalLiabilities.Add(sheet.TotalCapital)
	return sheet
}

func (b *BalanceSheet) groupFor(acct model.Account) *BalanceGroup {
	switch acct.Classification {
	case model.ClassCurrentAsset:
		return &b.CurrentAssets
	case model.ClassFixedAsset:
		if acct.Contra {
			return &b.Depreciation
		}
		return &b.FixedAssets
	case model.ClassOtherAsset:
		if acct.Contra {
			return &b.Amortization
		}
		return &b.OtherAssets
	case model.ClassCurrentLiability:
		return &b.CurrentLiabilities
	case model.ClassLongTermLiability:
		return &b.LongTermLiabilities
	case model.ClassCapital:
		return &b.Capital
	}
	return nil
}
