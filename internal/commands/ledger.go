package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/accounts"
	"github.com/tally-dev/tally/internal/auditlog"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/format"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/log"
	"github.com/tally-dev/tally/internal/model"
)

func newLedgerCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Record, list and import transactions",
	}
	cmd.AddCommand(newLedgerAddCommand(opts), newLedgerListCommand(opts), newLedgerImportCommand(opts))
	return cmd
}

// parseLine parses "1010=-25.00" into an account number and amount.
func parseLine(s string) (int, string, error) {
	acct, amount, ok := strings.Cut(s, "=")
	if !ok {
		return 0, "", fmt.Errorf("--line %q: expected ACCOUNT=AMOUNT", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(acct))
	if err != nil {
		return 0, "", fmt.Errorf("--line %q: invalid account number", s)
	}
	return n, strings.TrimSpace(amount), nil
}

func newLedgerAddCommand(opts *rootOptions) *cobra.Command {
	var (
		date, description, reference string
		lines                        []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record one or more postings on a date",
		Example: `  tally ledger add --date 2025-01-05 --description "Owner investment" \
    --line 1010=5000 --line 3010=5000`,
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			day, err := parseDay("date", date)
			if err != nil {
				return err
			}
			if day.IsZero() {
				return fmt.Errorf("--date is required")
			}
			if len(lines) == 0 {
				return fmt.Errorf("at least one --line is required")
			}

			txns := make([]model.Transaction, 0, len(lines))
			for _, l := range lines {
				acct, raw, err := parseLine(l)
				if err != nil {
					return err
				}
				amount, err := parseAmount("line", raw)
				if err != nil {
					return err
				}
				txns = append(txns, model.Transaction{
					Date:          day,
					AccountNumber: acct,
					Amount:        amount,
					Description:   description,
					Reference:     reference,
				})
			}

			added, err := a.ledger().Add(ctx, a.company, txns)
			if err != nil {
				return err
			}
			ids := make([]string, len(added))
			for i, t := range added {
				ids[i] = t.ID
			}
			a.record(auditlog.ActionLedgerAdd, description, strings.Join(ids, " "))
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d transaction(s): %s\n", len(added), strings.Join(ids, ", "))
			return nil
		}),
	}
	cmd.Flags().StringVar(&date, "date", "", "transaction date YYYY-MM-DD")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&reference, "reference", "", "external reference (check number, invoice)")
	cmd.Flags().StringArrayVar(&lines, "line", nil, "posting as ACCOUNT=AMOUNT (repeatable)")
	return cmd
}

func newLedgerListCommand(opts *rootOptions) *cobra.Command {
	var from, to string
	var account int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			f := ledger.Filter{Account: account}
			var err error
			if f.From, err = parseDay("from", from); err != nil {
				return err
			}
			if f.To, err = parseDay("to", to); err != nil {
				return err
			}
			txns, err := a.ledger().List(ctx, a.company, f)
			if err != nil {
				return err
			}
			chart, err := a.store.ListAccounts(ctx, a.company)
			if err != nil {
				return err
			}
			names := accounts.NewService(chart)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tACCOUNT\tAMOUNT\tDESCRIPTION")
			for _, t := range txns {
				fmt.Fprintf(tw, "%s\t%s\t%d %s\t%s\t%s\n", t.ID, t.Date.Format(model.DateFormat),
					t.AccountNumber, names.DisplayName(t.AccountNumber), format.Currency(t.Amount, false), t.Description)
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "first date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last date YYYY-MM-DD")
	cmd.Flags().IntVar(&account, "account", 0, "only this account number")
	return cmd
}

func newLedgerImportCommand(opts *rootOptions) *cobra.Command {
	var (
		bankName, fileFormat    string
		incomeAcct, expenseAcct int
	)
	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import bank CSV exports into the ledger",
		Long: `Import bank CSV exports. With no arguments every CSV in import/ is
imported and then moved to import/processed/. Rows already in the ledger
(same reference) are skipped.`,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			bank, ok := a.cfg.BankAccount(bankName)
			if !ok {
				if bankName != "" {
					return fmt.Errorf("no bank account named %q in %s", bankName, config.FileName)
				}
				bank = config.BankAccount{Name: "operating", Format: "chase", AccountNumber: accounts.OperatingChecking}
			}
			if fileFormat == "" {
				fileFormat = bank.Format
			}
			registry := importer.DefaultRegistry()
			parser := registry.Get(fileFormat)
			if parser == nil {
				return fmt.Errorf("unknown import format %q (known: %s)", fileFormat, strings.Join(registry.Formats(), ", "))
			}

			files := args
			fromInbox := len(args) == 0
			if fromInbox {
				found, err := importer.Scan(a.dir)
				if err != nil {
					return err
				}
				for _, f := range found {
					files = append(files, f.Path)
				}
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to import")
				return nil
			}

			existing, err := a.store.ListTransactions(ctx, a.company)
			if err != nil {
				return err
			}
			seen := importer.References(existing)
			plan := importer.Plan{BankAccount: bank.AccountNumber, IncomeAccount: incomeAcct, ExpenseAccount: expenseAcct}
			logger := a.log.WithComponent(log.ComponentImporter)

			for _, path := range files {
				rows, err := parseFile(parser, path)
				if err != nil {
					return err
				}
				txns := importer.ToTransactions(rows, plan, seen)
				added, err := a.ledger().Add(ctx, a.company, txns)
				if err != nil {
					return fmt.Errorf("importing %s: %w", filepath.Base(path), err)
				}
				for ref := range importer.References(added) {
					seen[ref] = true
				}
				skipped := len(rows) - len(added)/2
				logger.Info("bank file imported", log.FieldPath, path, log.FieldCount, len(added))
				a.record(auditlog.ActionBankImport, fmt.Sprintf("%d rows, %d skipped", len(rows), skipped), filepath.Base(path))
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows, %d postings added, %d rows skipped\n", filepath.Base(path), len(rows), len(added), skipped)

				if fromInbox {
					if err := importer.MarkProcessed(a.dir, filepath.Base(path)); err != nil {
						return err
					}
				}
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&bankName, "bank", "", "bank account name from "+config.FileName+" (default: first configured)")
	cmd.Flags().StringVar(&fileFormat, "format", "", "file format (default: the bank account's format)")
	cmd.Flags().IntVar(&incomeAcct, "income-account", accounts.SalesRevenue, "account credited for deposits")
	cmd.Flags().IntVar(&expenseAcct, "expense-account", accounts.UncategorizedExpense, "account debited for withdrawals")
	return cmd
}

func parseFile(p importer.Parser, path string) ([]model.BankTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	rows, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}
