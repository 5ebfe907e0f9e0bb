// Package statements aggregates a transaction ledger into an income
// statement and a balance sheet. Everything here is a pure function of
// its inputs.
package statements

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// Category is an income statement section.
type Category string

const (
	CategoryRevenue     Category = "revenue"
	CategoryCostOfSales Category = "cost-of-sales"
	CategoryExpenses    Category = "expenses"
	CategoryOther       Category = "other"
)

// Line is one account's row on the income statement.
type Line struct {
	AccountNumber int
	Name          string
	Amounts       Amounts
	Percent       Amounts
}

// Section groups the lines of one category.
type Section struct {
	Category Category
	Lines    []Line
	Total    Amounts
	Percent  Amounts
}

// Figure is a summary amount with its percent of revenue.
type Figure struct {
	Amounts Amounts
	Percent Amounts
}

// Summary holds the income statement totals.
type Summary struct {
	Revenue     Figure
	CostOfSales Figure
	GrossProfit Figure
	Expenses    Figure
	NetIncome   Figure
}

// IncomeStatement is the aggregated report for one period.
type IncomeStatement struct {
	Period      Period
	Revenue     Section
	CostOfSales Section
	Expenses    Section
	// Other collects transactions whose account is unknown or is not an
	// income statement account. It does not affect net income.
	Other   Section
	Summary Summary
}

func categoryFor(acct model.Account, known bool) Category {
	if !known || !acct.Classification.IncomeStatement() {
		return CategoryOther
	}
	switch acct.Classification {
	case model.ClassRevenue:
		return CategoryRevenue
	case model.ClassCostOfSales:
		return CategoryCostOfSales
	default:
		return CategoryExpenses
	}
}

// BuildIncomeStatement buckets txns by account classification and sums each
// account for the current month of period.End and for the whole period.
func BuildIncomeStatement(txns []model.Transaction, accounts []model.Account, period Period) IncomeStatement {
	byNumber := make(map[int]model.Account, len(accounts))
	for _, a := range accounts {
		byNumber[a.Number] = a
	}

	type bucketKey struct {
		category Category
		number   int
	}
	lines := make(map[bucketKey]*Line)

	for _, txn := range txns {
		inMonth := period.InCurrentMonth(txn.Date)
		inPeriod := period.Contains(txn.Date)
		if !inMonth && !inPeriod {
			continue
		}

		acct, known := byNumber[txn.AccountNumber]
		key := bucketKey{category: categoryFor(acct, known), number: txn.AccountNumber}
		line, ok := lines[key]
		if !ok {
			name := strconv.Itoa(txn.AccountNumber)
			if known {
				name = acct.DisplayName()
			}
			line = &Line{AccountNumber: txn.AccountNumber, Name: name}
			lines[key] = line
		}
		if inMonth {
			line.Amounts.CurrentMonth = line.Amounts.CurrentMonth.Add(txn.Amount)
		}
		if inPeriod {
			line.Amounts.YearToDate = line.Amounts.YearToDate.Add(txn.Amount)
		}
	}

	sections := map[Category]*Section{
		CategoryRevenue:     {Category: CategoryRevenue},
		CategoryCostOfSales: {Category: CategoryCostOfSales},
		CategoryExpenses:    {Category: CategoryExpenses},
		CategoryOther:       {Category: CategoryOther},
	}
	for key, line := range lines {
		sec := sections[key.category]
		sec.Lines = append(sec.Lines, *line)
		sec.Total = sec.Total.Add(line.Amounts)
	}

	revenue := sections[CategoryRevenue].Total
	for _, sec := range sections {
		sortLines(sec.Lines)
		sec.Percent = sec.Total.PercentOf(revenue)
		for i := range sec.Lines {
			sec.Lines[i].Percent = sec.Lines[i].Amounts.PercentOf(revenue)
		}
	}

	cos := sections[CategoryCostOfSales].Total
	expenses := sections[CategoryExpenses].Total
	grossProfit := revenue.Sub(cos)
	netIncome := grossProfit.Sub(expenses)

	figure := func(a Amounts) Figure {
		return Figure{Amounts: a, Percent: a.PercentOf(revenue)}
	}

	return IncomeStatement{
		Period:      period,
		Revenue:     *sections[CategoryRevenue],
		CostOfSales: *sections[CategoryCostOfSales],
		Expenses:    *sections[CategoryExpenses],
		Other:       *sections[CategoryOther],
		Summary: Summary{
			Revenue:     figure(revenue),
			CostOfSales: figure(cos),
			GrossProfit: figure(grossProfit),
			Expenses:    figure(expenses),
			NetIncome:   figure(netIncome),
		},
	}
}

// sortLines orders by display name ignoring case, then by account number.
func sortLines(lines []Line) {
	sort.Slice(lines, func(i, j int) bool {
		a, b := strings.ToLower(lines[i].Name), strings.ToLower(lines[j].Name)
		if a != b {
			return a < b
		}
		return lines[i].AccountNumber < lines[j].AccountNumber
	})
}
