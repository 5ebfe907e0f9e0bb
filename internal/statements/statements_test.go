package statements

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/format"
	"github.com/tally-dev/tally/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func txn(d time.Time, acct int, amount string) model.Transaction {
	return model.Transaction{Date: d, AccountNumber: acct, Amount: dec(amount)}
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

var chart = []model.Account{
	{Number: 1010, Name: "Checking", Classification: model.ClassCurrentAsset},
	{Number: 1500, Name: "Equipment", Classification: model.ClassFixedAsset},
	{Number: 1510, Name: "Accumulated Depreciation", Classification: model.ClassFixedAsset, Contra: true},
	{Number: 1800, Name: "Organization Costs", Classification: model.ClassOtherAsset},
	{Number: 1810, Name: "Accumulated Amortization", Classification: model.ClassOtherAsset, Contra: true},
	{Number: 2010, Name: "Credit Card", Classification: model.ClassCurrentLiability},
	{Number: 2500, Name: "Equipment Loan", Classification: model.ClassLongTermLiability},
	{Number: 3010, Name: "Owner's Capital", Classification: model.ClassCapital},
	{Number: 4010, Name: "service revenue", Classification: model.ClassRevenue},
	{Number: 4020, Name: "Product Revenue", Classification: model.ClassRevenue},
	{Number: 5010, Name: "Materials", Classification: model.ClassCostOfSales},
	{Number: 6010, Name: "Rent", Classification: model.ClassExpense},
	{Number: 6020, Name: "Advertising", Classification: model.ClassExpense},
}

var q1 = Period{Start: date(2025, 1, 1), End: date(2025, 3, 31)}

func TestIncomeStatement_Buckets(t *testing.T) {
	txns := []model.Transaction{
		txn(date(2025, 1, 10), 4010, "1000"),
		txn(date(2025, 3, 5), 4010, "500"),
		txn(date(2025, 3, 20), 4020, "500"),
		txn(date(2025, 2, 1), 5010, "300"),
		txn(date(2025, 3, 2), 5010, "100"),
		txn(date(2025, 3, 1), 6010, "200"),
		txn(date(2025, 1, 15), 6020, "50"),
		txn(date(2024, 12, 31), 4010, "9999"), // before the period
	}
	is := BuildIncomeStatement(txns, chart, q1)

	require.Len(t, is.Revenue.Lines, 2)
	assertDec(t, "1000", is.Summary.Revenue.Amounts.CurrentMonth)
	assertDec(t, "2000", is.Summary.Revenue.Amounts.YearToDate)
	assertDec(t, "100", is.Summary.CostOfSales.Amounts.CurrentMonth)
	assertDec(t, "400", is.Summary.CostOfSales.Amounts.YearToDate)
	assertDec(t, "900", is.Summary.GrossProfit.Amounts.CurrentMonth)
	assertDec(t, "1600", is.Summary.GrossProfit.Amounts.YearToDate)
	assertDec(t, "200", is.Summary.Expenses.Amounts.CurrentMonth)
	assertDec(t, "250", is.Summary.Expenses.Amounts.YearToDate)
	assertDec(t, "700", is.Summary.NetIncome.Amounts.CurrentMonth)
	assertDec(t, "1350", is.Summary.NetIncome.Amounts.YearToDate)

	assertDec(t, "20", is.Summary.CostOfSales.Percent.YearToDate)
	assertDec(t, "70", is.Summary.NetIncome.Percent.CurrentMonth)
	assertDec(t, "100", is.Summary.Revenue.Percent.YearToDate)
	assert.Empty(t, is.Other.Lines)
}

func TestIncomeStatement_SortsByNameCaseInsensitive(t *testing.T) {
	txns := []model.Transaction{
		txn(date(2025, 3, 1), 4010, "1"),
		txn(date(2025, 3, 1), 4020, "1"),
		txn(date(2025, 3, 1), 6010, "1"),
		txn(date(2025, 3, 1), 6020, "1"),
	}
	is := BuildIncomeStatement(txns, chart, q1)

	require.Len(t, is.Revenue.Lines, 2)
	assert.Equal(t, "Product Revenue", is.Revenue.Lines[0].Name)
	assert.Equal(t, "service revenue", is.Revenue.Lines[1].Name)
	require.Len(t, is.Expenses.Lines, 2)
	assert.Equal(t, "Advertising", is.Expenses.Lines[0].Name)
	assert.Equal(t, "Rent", is.Expenses.Lines[1].Name)
}

func TestIncomeStatement_ZeroRevenuePercentages(t *testing.T) {
	txns := []model.Transaction{
		txn(date(2025, 3, 1), 6010, "200"),
		txn(date(2025, 2, 1), 5010, "75"),
	}
	is := BuildIncomeStatement(txns, chart, q1)

	cells := []Amounts{
		is.Summary.Revenue.Percent,
		is.Summary.CostOfSales.Percent,
		is.Summary.GrossProfit.Percent,
		is.Summary.Expenses.Percent,
		is.Summary.NetIncome.Percent,
		is.Expenses.Percent,
		is.CostOfSales.Percent,
	}
	for _, line := range is.Expenses.Lines {
		cells = append(cells, line.Percent)
	}
	for _, line := range is.CostOfSales.Lines {
		cells = append(cells, line.Percent)
	}
	for i, c := range cells {
		assert.Equal(t, "0.00", format.Percent(c.CurrentMonth), "cell %d current month", i)
		assert.Equal(t, "0.00", format.Percent(c.YearToDate), "cell %d year to date", i)
	}
}

func TestIncomeStatement_UnknownAccountFallsBackToNumber(t *testing.T) {
	txns := []model.Transaction{
		txn(date(2025, 3, 1), 4010, "100"),
		txn(date(2025, 3, 1), 7777, "40"),
		txn(date(2025, 3, 1), 1010, "100"), // balance sheet account
	}
	is := BuildIncomeStatement(txns, chart, q1)

	require.Len(t, is.Other.Lines, 2)
	assert.Equal(t, "7777", is.Other.Lines[0].Name)
	assert.Equal(t, "Checking", is.Other.Lines[1].Name)
	assertDec(t, "100", is.Summary.NetIncome.Amounts.YearToDate)
	assertDec(t, "40", is.Other.Lines[0].Percent.CurrentMonth)
}

func TestIncomeStatement_CurrentMonthUsesEndDateMonth(t *testing.T) {
	p := Period{Start: date(2025, 1, 1), End: date(2025, 2, 15)}
	txns := []model.Transaction{
		txn(date(2025, 2, 1), 4010, "10"),
		txn(date(2025, 2, 15), 4010, "20"),
		txn(date(2025, 1, 31), 4010, "40"),
		txn(date(2024, 2, 10), 4010, "80"), // same month, wrong year
	}
	is := BuildIncomeStatement(txns, chart, p)

	assertDec(t, "30", is.Summary.Revenue.Amounts.CurrentMonth)
	assertDec(t, "70", is.Summary.Revenue.Amounts.YearToDate)
}

func TestIncomeStatement_Empty(t *testing.T) {
	is := BuildIncomeStatement(nil, nil, q1)
	assert.True(t, is.Summary.NetIncome.Amounts.YearToDate.IsZero())
	assert.Equal(t, "0.00", format.Percent(is.Summary.NetIncome.Percent.YearToDate))
}

func TestPercentOfRevenue(t *testing.T) {
	assertDec(t, "25", PercentOfRevenue(dec("50"), dec("200")))
	assertDec(t, "0", PercentOfRevenue(dec("50"), decimal.Zero))
	assertDec(t, "-10", PercentOfRevenue(dec("-20"), dec("200")))
}

func TestPeriodContains(t *testing.T) {
	assert.True(t, q1.Contains(date(2025, 1, 1)))
	assert.True(t, q1.Contains(time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, q1.Contains(date(2025, 4, 1)))
	assert.False(t, q1.Contains(date(2024, 12, 31)))
}

func balanceTxns() []model.Transaction {
	return []model.Transaction{
		txn(date(2025, 1, 1), 3010, "10000"),
		txn(date(2025, 1, 1), 1010, "10000"),
		txn(date(2025, 1, 5), 1500, "6000"),
		txn(date(2025, 1, 5), 1010, "-1000"),
		txn(date(2025, 1, 5), 2500, "5000"),
		txn(date(2025, 1, 31), 1510, "100"),
		txn(date(2025, 1, 31), 1800, "1200"),
		txn(date(2025, 1, 31), 1810, "20"),
		txn(date(2025, 2, 10), 2010, "300"),
		txn(date(2025, 3, 1), 1010, "500"), // after cutoff
		txn(date(2025, 1, 20), 9999, "12"), // not in chart
	}
}

func TestBalanceSheet_Totals(t *testing.T) {
	bs := BuildBalanceSheet(balanceTxns(), chart, date(2025, 2, 28))

	assertDec(t, "9000", bs.CurrentAssets.Total)
	assertDec(t, "6000", bs.FixedAssets.Total)
	assertDec(t, "100", bs.Depreciation.Total)
	assertDec(t, "1200", bs.OtherAssets.Total)
	assertDec(t, "20", bs.Amortization.Total)
	assertDec(t, "16080", bs.TotalAssets)

	assertDec(t, "300", bs.CurrentLiabilities.Total)
	assertDec(t, "5000", bs.LongTermLiabilities.Total)
	assertDec(t, "5300", bs.TotalLiabilities)
	assertDec(t, "10000", bs.TotalCapital)
	assertDec(t, "15300", bs.TotalLiabilitiesAndCapital)

	require.Len(t, bs.Unclassified.Lines, 1)
	assert.Equal(t, "9999", bs.Unclassified.Lines[0].Name)
	assert.Equal(t, date(2025, 2, 28), bs.AsOf)
}

func TestBalanceSheet_CheckReportsWithoutCorrecting(t *testing.T) {
	bs := BuildBalanceSheet(balanceTxns(), chart, date(2025, 2, 28))
	before := bs.TotalAssets

	check := bs.Check()
	assert.False(t, check.Balanced)
	assertDec(t, "780", check.Difference)
	assert.True(t, before.Equal(bs.TotalAssets))

	balanced := BuildBalanceSheet([]model.Transaction{
		txn(date(2025, 1, 1), 1010, "500"),
		txn(date(2025, 1, 1), 3010, "500"),
	}, chart, date(2025, 1, 1))
	assert.True(t, balanced.Check().Balanced)
}

func TestBalanceSheet_CutoffInclusive(t *testing.T) {
	txns := []model.Transaction{
		txn(time.Date(2025, 1, 31, 18, 0, 0, 0, time.UTC), 1010, "50"),
		txn(date(2025, 2, 1), 1010, "25"),
	}
	bs := BuildBalanceSheet(txns, chart, date(2025, 1, 31))
	assertDec(t, "50", bs.CurrentAssets.Total)
}

func TestBalanceSheet_Idempotent(t *testing.T) {
	txns := balanceTxns()
	a := BuildBalanceSheet(txns, chart, date(2025, 2, 28))
	b := BuildBalanceSheet(txns, chart, date(2025, 2, 28))

	assert.Equal(t, a.TotalAssets.String(), b.TotalAssets.String())
	assert.Equal(t, a.TotalLiabilities.String(), b.TotalLiabilities.String())
	assert.Equal(t, a.TotalCapital.String(), b.TotalCapital.String())
	assert.Equal(t, a.TotalLiabilitiesAndCapital.String(), b.TotalLiabilitiesAndCapital.String())
	assert.Equal(t, a, b)
}

func TestBalanceSheet_ChartOrderAndZeroBalances(t *testing.T) {
	reversed := make([]model.Account, len(chart))
	for i, a := range chart {
		reversed[len(chart)-1-i] = a
	}
	bs := BuildBalanceSheet(nil, reversed, date(2025, 1, 1))

	require.Len(t, bs.FixedAssets.Lines, 1)
	require.Len(t, bs.Depreciation.Lines, 1)
	assert.Equal(t, 1500, bs.FixedAssets.Lines[0].AccountNumber)
	assert.True(t, bs.TotalAssets.IsZero())
	assert.True(t, bs.Check().Balanced)
}
