package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/statements"
)

const (
	incomeSheet  = "Income Statement"
	balanceSheet = "Balance Sheet"
)

// sheetWriter fills one sheet top to bottom.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func newSheet(name string) *sheetWriter {
	f := excelize.NewFile()
	w := &sheetWriter{f: f, sheet: name}
	w.err = f.SetSheetName("Sheet1", name)
	return w
}

// line writes values starting at column A. Decimals become numbers.
func (w *sheetWriter) line(values ...any) {
	w.row++
	if w.err != nil {
		return
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, w.row)
		if err != nil {
			w.err = err
			return
		}
		switch v := v.(type) {
		case decimal.Decimal:
			w.err = w.f.SetCellFloat(w.sheet, cell, v.Round(2).InexactFloat64(), -1, 64)
		case nil:
			continue
		default:
			w.err = w.f.SetCellValue(w.sheet, cell, v)
		}
		if w.err != nil {
			return
		}
	}
}

func (w *sheetWriter) blank() { w.row++ }

func (w *sheetWriter) bold(cells ...string) {
	if w.err != nil {
		return
	}
	style, err := w.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		w.err = err
		return
	}
	for _, c := range cells {
		if w.err = w.f.SetCellStyle(w.sheet, c, c, style); w.err != nil {
			return
		}
	}
}

func (w *sheetWriter) writeTo(out io.Writer) error {
	defer w.f.Close()
	if w.err != nil {
		return fmt.Errorf("building %s sheet: %w", w.sheet, w.err)
	}
	if err := w.f.SetColWidth(w.sheet, "B", "B", 36); err != nil {
		return err
	}
	if _, err := w.f.WriteTo(out); err != nil {
		return fmt.Errorf("writing %s workbook: %w", w.sheet, err)
	}
	return nil
}

// WriteIncomeXLSX writes the income statement with current-month and
// year-to-date columns.
func WriteIncomeXLSX(out io.Writer, companyName string, is statements.IncomeStatement) error {
	w := newSheet(incomeSheet)
	w.line(companyName)
	w.line("Income Statement", fmt.Sprintf("%s to %s", is.Period.Start.Format(model.DateFormat), is.Period.End.Format(model.DateFormat)))
	w.bold("A1", "A2")
	w.blank()
	w.line("Account", "Name", "Current Month", "%", "Year to Date", "%")
	w.bold("A4", "B4", "C4", "D4", "E4", "F4")

	for _, sec := range []struct {
		title string
		s     statements.Section
	}{
		{"Revenue", is.Revenue},
		{"Cost of Sales", is.CostOfSales},
		{"Expenses", is.Expenses},
		{"Other", is.Other},
	} {
		if len(sec.s.Lines) == 0 && sec.title == "Other" {
			continue
		}
		w.blank()
		w.line(sec.title)
		w.bold("A" + strconv.Itoa(w.row))
		for _, l := range sec.s.Lines {
			w.line(l.AccountNumber, l.Name,
				l.Amounts.CurrentMonth, l.Percent.CurrentMonth,
				l.Amounts.YearToDate, l.Percent.YearToDate)
		}
		w.line(nil, "Total "+sec.title,
			sec.s.Total.CurrentMonth, sec.s.Percent.CurrentMonth,
			sec.s.Total.YearToDate, sec.s.Percent.YearToDate)
	}

	w.blank()
	sum := is.Summary
	for _, f := range []struct {
		label string
		fig   statements.Figure
	}{
		{"Gross Profit", sum.GrossProfit},
		{"Net Income", sum.NetIncome},
	} {
		w.line(nil, f.label,
			f.fig.Amounts.CurrentMonth, f.fig.Percent.CurrentMonth,
			f.fig.Amounts.YearToDate, f.fig.Percent.YearToDate)
		w.bold("B" + strconv.Itoa(w.row))
	}
	return w.writeTo(out)
}

// WriteBalanceXLSX writes the balance sheet groups and totals.
func WriteBalanceXLSX(out io.Writer, companyName string, bs statements.BalanceSheet) error {
	w := newSheet(balanceSheet)
	w.line(companyName)
	w.line("Balance Sheet", "As of "+bs.AsOf.Format(model.DateFormat))
	w.bold("A1", "A2")

	group := func(title string, g statements.BalanceGroup) {
		if len(g.Lines) == 0 {
			return
		}
		w.blank()
		w.line(title)
		w.bold("A" + strconv.Itoa(w.row))
		for _, l := range g.Lines {
			w.line(l.AccountNumber, l.Name, l.Balance)
		}
		w.line(nil, "Total "+title, g.Total)
	}
	total := func(label string, amount decimal.Decimal) {
		w.blank()
		w.line(nil, label, amount)
		w.bold("B" + strconv.Itoa(w.row))
	}

	group("Current Assets", bs.CurrentAssets)
	group("Fixed Assets", bs.FixedAssets)
	group("Depreciation", bs.Depreciation)
	group("Other Assets", bs.OtherAssets)
	group("Amortization", bs.Amortization)
	total("Total Assets", bs.TotalAssets)

	group("Current Liabilities", bs.CurrentLiabilities)
	group("Long-Term Liabilities", bs.LongTermLiabilities)
	total("Total Liabilities", bs.TotalLiabilities)

	group("Capital", bs.Capital)
	total("Total Capital", bs.TotalCapital)
	total("Total Liabilities and Capital", bs.TotalLiabilitiesAndCapital)

	group("Unclassified", bs.Unclassified)

	if check := bs.Check(); !check.Balanced {
		w.blank()
		w.line(nil, "Out of balance by", check.Difference)
	}
	return w.writeTo(out)
}
