package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/auditlog"
	"github.com/tally-dev/tally/internal/export"
	"github.com/tally-dev/tally/internal/format"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/payroll"
)

func newPayrollCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Run payroll and pay contractors",
	}
	cmd.AddCommand(
		newPayrollRunCommand(opts),
		newPayContractorCommand(opts),
		newPayrollRegisterCommand(opts),
		newPayrollStubCommand(opts),
	)
	return cmd
}

// payDates are the date flags shared by both kinds of run.
type payDates struct {
	periodEnd, payDate, method string
}

func (p *payDates) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.periodEnd, "period-end", "", "pay period end date YYYY-MM-DD (default: pay date)")
	cmd.Flags().StringVar(&p.payDate, "pay-date", "", "pay date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&p.method, "method", "", "payment method: direct-deposit, check or cash (default from config)")
}

func (p *payDates) parse() (periodEnd, payDate time.Time, method model.PaymentMethod, err error) {
	if periodEnd, err = parseDay("period-end", p.periodEnd); err != nil {
		return
	}
	if payDate, err = parseDay("pay-date", p.payDate); err != nil {
		return
	}
	method = model.PaymentMethod(p.method)
	if method != "" && !method.Valid() {
		err = fmt.Errorf("--method must be direct-deposit, check or cash, got %q", p.method)
	}
	return
}

func printRun(cmd *cobra.Command, run model.PayrollRun, payee string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Payroll run %s for %s\n", run.ID, payee)
	fmt.Fprintf(out, "  Pay date:   %s (period ending %s)\n", run.PayDate.Format(model.DateFormat), run.PayPeriodEnd.Format(model.DateFormat))
	fmt.Fprintf(out, "  Gross pay:  %s\n", format.Currency(run.GrossPay, false))
	if run.Taxes != nil {
		fmt.Fprintf(out, "  Taxes:      %s\n", format.Currency(run.Taxes.Total, true))
	}
	fmt.Fprintf(out, "  Net pay:    %s\n", format.Currency(run.NetPay, false))
}

func newPayrollRunCommand(opts *rootOptions) *cobra.Command {
	var (
		dates                                  payDates
		hours, overtime, additional, addLabel string
	)
	cmd := &cobra.Command{
		Use:   "run <employee-id>",
		Short: "Compute and record a paycheck for an employee",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			periodEnd, payDate, method, err := dates.parse()
			if err != nil {
				return err
			}
			req := payroll.EmployeeRun{
				EmployeeID:         args[0],
				PayPeriodEnd:       periodEnd,
				PayDate:            payDate,
				AdditionalPayLabel: addLabel,
				PaymentMethod:      method,
			}
			if req.HoursWorked, err = parseAmount("hours", hours); err != nil {
				return err
			}
			if req.OvertimeHours, err = parseAmount("overtime", overtime); err != nil {
				return err
			}
			if req.AdditionalPay, err = parseAmount("additional", additional); err != nil {
				return err
			}

			run, err := a.payroll().RunEmployee(ctx, a.company, req)
			if run.ID == "" {
				return err
			}
			a.record(auditlog.ActionPayrollRun, fmt.Sprintf("paid employee %s gross %s", args[0], run.GrossPay.StringFixed(2)), run.ID)
			printRun(cmd, run, args[0])
			return err
		}),
	}
	dates.register(cmd)
	cmd.Flags().StringVar(&hours, "hours", "", "regular hours worked (hourly employees)")
	cmd.Flags().StringVar(&overtime, "overtime", "", "overtime hours, paid at 1.5x")
	cmd.Flags().StringVar(&additional, "additional", "", "bonus or other additional pay")
	cmd.Flags().StringVar(&addLabel, "additional-label", "", "label for the additional pay")
	return cmd
}

func newPayContractorCommand(opts *rootOptions) *cobra.Command {
	var (
		dates        payDates
		amount, memo string
	)
	cmd := &cobra.Command{
		Use:   "pay-contractor <contractor-id>",
		Short: "Record a contractor payment (no withholding)",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			periodEnd, payDate, method, err := dates.parse()
			if err != nil {
				return err
			}
			amt, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}
			run, err := a.payroll().RunContractor(ctx, a.company, payroll.ContractorRun{
				ContractorID:  args[0],
				Amount:        amt,
				PayPeriodEnd:  periodEnd,
				PayDate:       payDate,
				Memo:          memo,
				PaymentMethod: method,
			})
			if run.ID == "" {
				return err
			}
			a.record(auditlog.ActionContractorPaid, fmt.Sprintf("paid contractor %s %s", args[0], run.GrossPay.StringFixed(2)), run.ID)
			printRun(cmd, run, args[0])
			return err
		}),
	}
	dates.register(cmd)
	cmd.Flags().StringVar(&amount, "amount", "", "payment amount")
	cmd.Flags().StringVar(&memo, "memo", "", "what the payment is for")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newPayrollRegisterCommand(opts *rootOptions) *cobra.Command {
	var from, to, csvPath string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "List stored payroll runs in a date range",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			start, err := parseDay("from", from)
			if err != nil {
				return err
			}
			end, err := parseDay("to", to)
			if err != nil {
				return err
			}
			if end.IsZero() {
				end = model.Day(time.Now())
			}
			if start.IsZero() {
				start = a.cfg.Fiscal.YearStartFor(end)
			}

			reg, err := a.payroll().Register(ctx, a.company, start, end)
			if err != nil {
				return err
			}

			if csvPath != "" {
				path, err := writeExport(a.dir, csvPath, func(f *os.File) error { return export.WriteRegisterCSV(f, reg) })
				if err != nil {
					return err
				}
				a.record(auditlog.ActionReportExport, "payroll register", path)
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "PAY DATE\tPAYEE\tGROSS\tTAXES\tNET\tRUN\t")
			for _, l := range reg.Lines {
				taxes := "-"
				if l.Run.Taxes != nil {
					taxes = format.Currency(l.Run.Taxes.Total, false)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n", l.Run.PayDate.Format(model.DateFormat), l.PayeeName,
					format.Currency(l.Run.GrossPay, false), taxes, format.Currency(l.Run.NetPay, false), l.Run.ID)
			}
			fmt.Fprintf(tw, "TOTAL\t\t%s\t%s\t%s\t\t\n", format.Currency(reg.Gross, false), format.Currency(reg.Taxes, false), format.Currency(reg.Net, false))
			return tw.Flush()
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "first pay date YYYY-MM-DD (default: fiscal year start)")
	cmd.Flags().StringVar(&to, "to", "", "last pay date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write the register to this CSV file instead")
	return cmd
}

func newPayrollStubCommand(opts *rootOptions) *cobra.Command {
	var pdfPath string
	cmd := &cobra.Command{
		Use:   "stub <run-id>",
		Short: "Write a PDF pay stub for a run",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			stub, err := a.payroll().Stub(ctx, a.company, args[0])
			if err != nil {
				return err
			}
			if pdfPath == "" {
				pdfPath = filepath.Join("exports", "stub-"+stub.Run.ID+".pdf")
			}
			path, err := writeExport(a.dir, pdfPath, func(f *os.File) error {
				return export.WritePayStubPDF(f, a.cfg.Business.Name, stub)
			})
			if err != nil {
				return err
			}
			a.record(auditlog.ActionReportExport, "pay stub for "+stub.PayeeName, path)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		}),
	}
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "output path (default exports/stub-<run-id>.pdf)")
	return cmd
}

// writeExport creates path (relative to dir unless absolute) and fills it.
func writeExport(dir, path string, fill func(*os.File) error) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if err := fill(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}
