package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/auditlog"
	"github.com/tally-dev/tally/internal/format"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

func shortID(prefix string) string {
	return prefix + "-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
}

func newEmployeeCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Manage employees",
	}
	cmd.AddCommand(newEmployeeAddCommand(opts), newEmployeeListCommand(opts), newEmployeeDeactivateCommand(opts))
	return cmd
}

func newEmployeeAddCommand(opts *rootOptions) *cobra.Command {
	var (
		id, first, last, email, payType, rate string
		ss, medicare, federal, state          string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an employee",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			e := model.Employee{
				ID:        id,
				CompanyID: a.company,
				FirstName: first,
				LastName:  last,
				Email:     email,
				Active:    true,
			}
			if e.ID == "" {
				e.ID = shortID("emp")
			}
			switch strings.ToLower(payType) {
			case "hourly":
				e.PayType = model.PayTypeHourly
			case "salary":
				e.PayType = model.PayTypeSalary
			default:
				return fmt.Errorf("--pay-type must be hourly or salary, got %q", payType)
			}

			var err error
			if e.PayRate, err = parseAmount("rate", rate); err != nil {
				return err
			}
			if e.TaxRates.SocialSecurity, err = parseAmount("social-security", ss); err != nil {
				return err
			}
			if e.TaxRates.Medicare, err = parseAmount("medicare", medicare); err != nil {
				return err
			}
			if e.TaxRates.FederalWithholding, err = parseAmount("federal", federal); err != nil {
				return err
			}
			if e.TaxRates.StateWithholding, err = parseAmount("state", state); err != nil {
				return err
			}
			if err := e.Validate(); err != nil {
				return err
			}
			if _, err := store.FindEmployee(ctx, a.store, a.company, e.ID); err == nil {
				return fmt.Errorf("employee %s already exists", e.ID)
			}

			if err := a.store.SaveEmployee(ctx, a.company, e); err != nil {
				return err
			}
			a.record(auditlog.ActionEmployeeChange, "added employee "+e.FullName(), e.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Added employee %s (%s)\n", e.FullName(), e.ID)
			return nil
		}),
	}
	f := cmd.Flags()
	f.StringVar(&id, "id", "", "employee ID (generated when empty)")
	f.StringVar(&first, "first", "", "first name")
	f.StringVar(&last, "last", "", "last name")
	f.StringVar(&email, "email", "", "email address")
	f.StringVar(&payType, "pay-type", "hourly", "hourly or salary")
	f.StringVar(&rate, "rate", "", "hourly rate, or annual salary")
	f.StringVar(&ss, "social-security", "", "Social Security rate in percent (blank uses the project default)")
	f.StringVar(&medicare, "medicare", "", "Medicare rate in percent")
	f.StringVar(&federal, "federal", "", "federal withholding rate in percent")
	f.StringVar(&state, "state", "", "state withholding rate in percent")
	_ = cmd.MarkFlagRequired("first")
	_ = cmd.MarkFlagRequired("rate")
	return cmd
}

func newEmployeeListCommand(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List employees",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			emps, err := a.store.ListEmployees(ctx, a.company)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPAY TYPE\tRATE\tTAX RATES\tSTATUS")
			for _, e := range emps {
				if !e.Active && !all {
					continue
				}
				rates := "default"
				if !e.TaxRates.IsZero() {
					rates = format.Percent(e.TaxRates.Sum()) + "%"
				}
				status := "active"
				if !e.Active {
					status = "inactive"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.FullName(), e.PayType, format.Currency(e.PayRate, false), rates, status)
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().BoolVar(&all, "all", false, "include inactive employees")
	return cmd
}

func newEmployeeDeactivateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Mark an employee inactive",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			e, err := store.FindEmployee(ctx, a.store, a.company, args[0])
			if err != nil {
				return fmt.Errorf("employee %s: %w", args[0], err)
			}
			e.Active = false
			if err := a.store.SaveEmployee(ctx, a.company, e); err != nil {
				return err
			}
			a.record(auditlog.ActionEmployeeChange, "deactivated employee "+e.FullName(), e.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Deactivated %s\n", e.FullName())
			return nil
		}),
	}
}

func newContractorCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contractor",
		Short: "Manage contractors",
	}
	cmd.AddCommand(newContractorAddCommand(opts), newContractorListCommand(opts))
	return cmd
}

func newContractorAddCommand(opts *rootOptions) *cobra.Command {
	var c model.Contractor
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contractor",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			c.CompanyID = a.company
			if c.ID == "" {
				c.ID = shortID("con")
			}
			if err := c.Validate(); err != nil {
				return err
			}
			if _, err := store.FindContractor(ctx, a.store, a.company, c.ID); err == nil {
				return fmt.Errorf("contractor %s already exists", c.ID)
			}
			if err := a.store.SaveContractor(ctx, a.company, c); err != nil {
				return err
			}
			a.record(auditlog.ActionEmployeeChange, "added contractor "+c.DisplayName(), c.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Added contractor %s (%s)\n", c.DisplayName(), c.ID)
			return nil
		}),
	}
	f := cmd.Flags()
	f.StringVar(&c.ID, "id", "", "contractor ID (generated when empty)")
	f.StringVar(&c.Name, "name", "", "contact name")
	f.StringVar(&c.BusinessName, "business", "", "business name")
	f.StringVar(&c.Bank.BankName, "bank", "", "bank name")
	f.StringVar(&c.Bank.RoutingNumber, "routing", "", "routing number")
	f.StringVar(&c.Bank.AccountLastFour, "account-last-four", "", "last four digits of the account")
	return cmd
}

func newContractorListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List contractors",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			cons, err := a.store.ListContractors(ctx, a.company)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCONTACT\tBANK")
			for _, c := range cons {
				bank := ""
				if c.Bank.AccountLastFour != "" {
					bank = c.Bank.BankName + " ****" + c.Bank.AccountLastFour
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.DisplayName(), c.Name, bank)
			}
			return tw.Flush()
		}),
	}
}
