package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/auditlog"
	"github.com/tally-dev/tally/internal/export"
	"github.com/tally-dev/tally/internal/format"
	"github.com/tally-dev/tally/internal/log"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/statements"
)

func newReportCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Financial statements",
	}
	cmd.AddCommand(newIncomeReportCommand(opts), newBalanceReportCommand(opts))
	return cmd
}

func newIncomeReportCommand(opts *rootOptions) *cobra.Command {
	var from, to, xlsxPath string
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Income statement: current month and year to date",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			end, err := parseDay("to", to)
			if err != nil {
				return err
			}
			if end.IsZero() {
				end = model.Day(time.Now())
			}
			start, err := parseDay("from", from)
			if err != nil {
				return err
			}
			if start.IsZero() {
				start = a.cfg.Fiscal.YearStartFor(end)
			}
			if start.After(end) {
				return fmt.Errorf("--from %s is after --to %s", start.Format(model.DateFormat), end.Format(model.DateFormat))
			}

			txns, chart, err := loadBooks(ctx, a)
			if err != nil {
				return err
			}
			is := statements.BuildIncomeStatement(txns, chart, statements.Period{Start: start, End: end})
			a.log.WithComponent(log.ComponentReports).Debug("income statement built",
				log.FieldCompany, a.company, log.FieldPeriodEnd, end.Format(model.DateFormat))

			if xlsxPath != "" {
				path, err := writeExport(a.dir, xlsxPath, func(f *os.File) error {
					return export.WriteIncomeXLSX(f, a.cfg.Business.Name, is)
				})
				if err != nil {
					return err
				}
				a.record(auditlog.ActionReportExport, "income statement", path)
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				return nil
			}
			return printIncome(cmd.OutOrStdout(), a.cfg.Business.Name, is)
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "period start YYYY-MM-DD (default: fiscal year start)")
	cmd.Flags().StringVar(&to, "to", "", "period end YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write an Excel workbook to this path instead")
	return cmd
}

func newBalanceReportCommand(opts *rootOptions) *cobra.Command {
	var asOf, xlsxPath string
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Balance sheet as of a date",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			day, err := parseDay("as-of", asOf)
			if err != nil {
				return err
			}
			if day.IsZero() {
				day = model.Day(time.Now())
			}

			txns, chart, err := loadBooks(ctx, a)
			if err != nil {
				return err
			}
			bs := statements.BuildBalanceSheet(txns, chart, day)
			if check := bs.Check(); !check.Balanced {
				a.log.WithComponent(log.ComponentReports).Warn("balance sheet out of balance",
					log.FieldCompany, a.company,
					log.FieldAsOf, day.Format(model.DateFormat),
					log.FieldDifference, check.Difference.String())
			}

			if xlsxPath != "" {
				path, err := writeExport(a.dir, xlsxPath, func(f *os.File) error {
					return export.WriteBalanceXLSX(f, a.cfg.Business.Name, bs)
				})
				if err != nil {
					return err
				}
				a.record(auditlog.ActionReportExport, "balance sheet", path)
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				return nil
			}
			return printBalance(cmd.OutOrStdout(), a.cfg.Business.Name, bs)
		}),
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "balance date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write an Excel workbook to this path instead")
	return cmd
}

func loadBooks(ctx context.Context, a *app) ([]model.Transaction, []model.Account, error) {
	txns, err := a.store.ListTransactions(ctx, a.company)
	if err != nil {
		return nil, nil, fmt.Errorf("loading transactions: %w", err)
	}
	chart, err := a.store.ListAccounts(ctx, a.company)
	if err != nil {
		return nil, nil, fmt.Errorf("loading chart of accounts: %w", err)
	}
	return txns, chart, nil
}

func printIncome(out io.Writer, company string, is statements.IncomeStatement) error {
	fmt.Fprintf(out, "%s\nIncome Statement, %s to %s\n\n", company,
		is.Period.Start.Format(model.DateFormat), is.Period.End.Format(model.DateFormat))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\tCurrent Month\t%\tYear to Date\t%\t")
	section := func(title string, s statements.Section) {
		fmt.Fprintf(tw, "%s\t\t\t\t\t\n", title)
		for _, l := range s.Lines {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t\n", l.Name,
				format.Currency(l.Amounts.CurrentMonth, false), format.Percent(l.Percent.CurrentMonth),
				format.Currency(l.Amounts.YearToDate, false), format.Percent(l.Percent.YearToDate))
		}
		fmt.Fprintf(tw, "Total %s\t%s\t%s\t%s\t%s\t\n", title,
			format.Currency(s.Total.CurrentMonth, false), format.Percent(s.Percent.CurrentMonth),
			format.Currency(s.Total.YearToDate, false), format.Percent(s.Percent.YearToDate))
	}
	figure := func(title string, f statements.Figure) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", title,
			format.Currency(f.Amounts.CurrentMonth, false), format.Percent(f.Percent.CurrentMonth),
			format.Currency(f.Amounts.YearToDate, false), format.Percent(f.Percent.YearToDate))
	}

	section("Revenue", is.Revenue)
	section("Cost of Sales", is.CostOfSales)
	figure("Gross Profit", is.Summary.GrossProfit)
	section("Expenses", is.Expenses)
	figure("Net Income", is.Summary.NetIncome)
	if len(is.Other.Lines) > 0 {
		fmt.Fprintln(tw, "\t\t\t\t\t")
		section("Other (not in net income)", is.Other)
	}
	return tw.Flush()
}

func printBalance(out io.Writer, company string, bs statements.BalanceSheet) error {
	fmt.Fprintf(out, "%s\nBalance Sheet as of %s\n\n", company, bs.AsOf.Format(model.DateFormat))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	group := func(title string, g statements.BalanceGroup, contra bool) {
		if len(g.Lines) == 0 {
			return
		}
		fmt.Fprintf(tw, "%s\t\t\n", title)
		for _, l := range g.Lines {
			fmt.Fprintf(tw, "  %s\t%s\t\n", l.Name, format.Currency(l.Balance, contra))
		}
	}
	group("Current Assets", bs.CurrentAssets, false)
	group("Fixed Assets", bs.FixedAssets, false)
	group("Less Depreciation", bs.Depreciation, true)
	group("Other Assets", bs.OtherAssets, false)
	group("Less Amortization", bs.Amortization, true)
	fmt.Fprintf(tw, "Total Assets\t%s\t\n\t\t\n", format.Currency(bs.TotalAssets, false))

	group("Current Liabilities", bs.CurrentLiabilities, false)
	group("Long-Term Liabilities", bs.LongTermLiabilities, false)
	fmt.Fprintf(tw, "Total Liabilities\t%s\t\n\t\t\n", format.Currency(bs.TotalLiabilities, false))

	group("Capital", bs.Capital, false)
	fmt.Fprintf(tw, "Total Capital\t%s\t\n", format.Currency(bs.TotalCapital, false))
	fmt.Fprintf(tw, "Total Liabilities and Capital\t%s\t\n", format.Currency(bs.TotalLiabilitiesAndCapital, false))

	if len(bs.Unclassified.Lines) > 0 {
		fmt.Fprintf(tw, "\t\t\n")
		group("Unclassified (not in totals)", bs.Unclassified, false)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if check := bs.Check(); !check.Balanced {
		fmt.Fprintf(out, "\nOut of balance by %s\n", format.Currency(check.Difference, false))
	}
	return nil
}
