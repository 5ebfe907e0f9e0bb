package payroll

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/accounts"
	"github.com/tally-dev/tally/internal/log"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
	"github.com/tally-dev/tally/internal/tax"
)

// Store is the persistence payroll reads payees from and writes runs to.
type Store interface {
	store.Reader
	store.PayrollWriter
}

// Poster records the accounting side of a payment.
type Poster interface {
	Add(ctx context.Context, companyID string, txns []model.Transaction) ([]model.Transaction, error)
}

// Options configures a Service. Zero values fall back to sensible defaults.
type Options struct {
	Ledger        Poster // nil disables ledger posting
	DefaultRates  tax.Rates
	DefaultMethod model.PaymentMethod
	YearStart     func(time.Time) time.Time
	Now           func() time.Time
	NewID         func() string
}

// Service runs payroll for one or more companies.
type Service struct {
	store Store
	log   *log.Logger
	opts  Options
}

// NewService creates a payroll Service.
func NewService(st Store, logger *log.Logger, opts Options) *Service {
	if opts.DefaultMethod == "" {
		opts.DefaultMethod = model.PaymentDirectDeposit
	}
	if opts.YearStart == nil {
		opts.YearStart = func(t time.Time) time.Time {
			return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Service{store: st, log: logger.WithComponent(log.ComponentPayroll), opts: opts}
}

// EmployeeRun describes one employee paycheck.
type EmployeeRun struct {
	EmployeeID         string
	PayPeriodEnd       time.Time
	PayDate            time.Time
	HoursWorked        decimal.Decimal
	OvertimeHours      decimal.Decimal // overtime applies when positive
	AdditionalPay      decimal.Decimal
	AdditionalPayLabel string
	PaymentMethod      model.PaymentMethod
}

// ContractorRun describes one contractor payment.
type ContractorRun struct {
	ContractorID  string
	Amount        decimal.Decimal
	PayPeriodEnd  time.Time
	PayDate       time.Time
	Memo          string
	PaymentMethod model.PaymentMethod
}

// RunEmployee computes and stores a paycheck for an active employee.
// The returned run is a snapshot; later changes to the employee do not
// alter it. When ledger posting fails the stored run is still returned.
func (s *Service) RunEmployee(ctx context.Context, companyID string, req EmployeeRun) (model.PayrollRun, error) {
	emp, err := store.FindEmployee(ctx, s.store, companyID, req.EmployeeID)
	if errors.Is(err, store.ErrNotFound) {
		return model.PayrollRun{}, fmt.Errorf("%w: employee %s", ErrPayeeNotFound, req.EmployeeID)
	}
	if err != nil {
		return model.PayrollRun{}, fmt.Errorf("loading employee: %w", err)
	}
	if !emp.Active {
		return model.PayrollRun{}, fmt.Errorf("%w: %s", ErrInactiveEmployee, emp.ID)
	}

	rates := emp.TaxRates
	if rates.IsZero() {
		rates = s.opts.DefaultRates
	}

	res, err := CalculateEmployee(EmployeeRequest{
		PayType:         emp.PayType,
		PayRate:         emp.PayRate,
		HoursWorked:     req.HoursWorked,
		OvertimeEnabled: req.OvertimeHours.IsPositive(),
		OvertimeHours:   req.OvertimeHours,
		AdditionalPay:   req.AdditionalPay,
		TaxRates:        rates,
	})
	if err != nil {
		s.log.Warn("rejected payroll input", log.FieldCompany, companyID, log.FieldPayee, emp.ID, log.FieldError, err)
		return model.PayrollRun{}, err
	}

	run := s.newRun(companyID, model.Payee{Kind: model.PayeeEmployee, ID: emp.ID}, req.PayPeriodEnd, req.PayDate, req.PaymentMethod)
	run.HoursWorked = req.HoursWorked
	run.OvertimeHours = req.OvertimeHours
	run.AdditionalPay = req.AdditionalPay
	run.AdditionalPayLabel = req.AdditionalPayLabel
	run.GrossPay = res.GrossPay
	run.NetPay = res.NetPay
	run.Taxes = res.Taxes

	return s.save(ctx, run, emp.FullName())
}

// RunContractor stores a contractor payment. No tax is withheld.
func (s *Service) RunContractor(ctx context.Context, companyID string, req ContractorRun) (model.PayrollRun, error) {
	con, err := store.FindContractor(ctx, s.store, companyID, req.ContractorID)
	if errors.Is(err, store.ErrNotFound) {
		return model.PayrollRun{}, fmt.Errorf("%w: contractor %s", ErrPayeeNotFound, req.ContractorID)
	}
	if err != nil {
		return model.PayrollRun{}, fmt.Errorf("loading contractor: %w", err)
	}

	res, err := CalculateContractor(req.Amount)
	if err != nil {
		return model.PayrollRun{}, err
	}

	run := s.newRun(companyID, model.Payee{Kind: model.PayeeContractor, ID: con.ID}, req.PayPeriodEnd, req.PayDate, req.PaymentMethod)
	run.AdditionalPayLabel = req.Memo
	run.GrossPay = res.GrossPay
	run.NetPay = res.NetPay

	return s.save(ctx, run, con.DisplayName())
}

func (s *Service) newRun(companyID string, payee model.Payee, periodEnd, payDate time.Time, method model.PaymentMethod) model.PayrollRun {
	now := s.opts.Now().UTC()
	if payDate.IsZero() {
		payDate = now
	}
	if periodEnd.IsZero() {
		periodEnd = payDate
	}
	if method == "" {
		method = s.opts.DefaultMethod
	}
	return model.PayrollRun{
		ID:            s.opts.NewID(),
		CompanyID:     companyID,
		Payee:         payee,
		PayPeriodEnd:  model.Day(periodEnd),
		PayDate:       model.Day(payDate),
		PaymentMethod: method,
		CreatedAt:     now,
	}
}

func (s *Service) save(ctx context.Context, run model.PayrollRun, payeeName string) (model.PayrollRun, error) {
	if err := run.Validate(); err != nil {
		return model.PayrollRun{}, err
	}
	if err := s.store.SavePayrollRun(ctx, run.CompanyID, run); err != nil {
		return model.PayrollRun{}, fmt.Errorf("saving payroll run: %w", err)
	}
	s.log.Info("payroll run created",
		log.FieldCompany, run.CompanyID,
		log.FieldRunID, run.ID,
		log.FieldPayeeKind, string(run.Payee.Kind),
		log.FieldPayee, payeeName,
		log.FieldGross, run.GrossPay.StringFixed(2),
		log.FieldNet, run.NetPay.StringFixed(2),
	)

	if s.opts.Ledger == nil {
		return run, nil
	}
	if postings := Postings(run, payeeName); len(postings) > 0 {
		if _, err := s.opts.Ledger.Add(ctx, run.CompanyID, postings); err != nil {
			return run, fmt.Errorf("posting payroll run %s to ledger: %w", run.ID, err)
		}
	}
	return run, nil
}

// Postings returns the ledger transactions for a run, rounded to cents:
// gross to the labor expense, withholding to payroll liabilities and net
// out of operating checking. Zero amounts are omitted.
func Postings(run model.PayrollRun, payeeName string) []model.Transaction {
	gross := run.GrossPay.Round(2)
	withheld := decimal.Zero
	if run.Taxes != nil {
		withheld = run.Taxes.Total.Round(2)
	}
	net := gross.Sub(withheld)

	expense := accounts.WagesExpense
	if run.Payee.Kind == model.PayeeContractor {
		expense = accounts.ContractLabor
	}

	desc := "Payroll: " + payeeName
	ref := "payroll:" + run.ID
	var out []model.Transaction
	add := func(account int, amount decimal.Decimal) {
		if amount.IsZero() {
			return
		}
		out = append(out, model.Transaction{
			Date:          run.PayDate,
			Amount:        amount,
			AccountNumber: account,
			Description:   desc,
			Reference:     ref,
		})
	}
	add(expense, gross)
	add(accounts.PayrollLiabilities, withheld)
	add(accounts.OperatingChecking, net.Neg())
	return out
}

// RegisterLine is one run in a payroll register.
type RegisterLine struct {
	Run       model.PayrollRun
	PayeeName string
}

// Register lists stored runs paid in a window with their totals. Figures
// come from the stored snapshots and are never recomputed.
type Register struct {
	From  time.Time
	To    time.Time
	Lines []RegisterLine
	Gross decimal.Decimal
	Taxes decimal.Decimal
	Net   decimal.Decimal
}

// Register builds the payroll register for runs with a pay date in [from, to].
// A zero bound is open.
func (s *Service) Register(ctx context.Context, companyID string, from, to time.Time) (Register, error) {
	runs, err := s.store.ListPayrollRuns(ctx, companyID)
	if err != nil {
		return Register{}, fmt.Errorf("loading payroll runs: %w", err)
	}
	names, err := s.payeeNames(ctx, companyID)
	if err != nil {
		return Register{}, err
	}

	from, to = model.Day(from), model.Day(to)
	reg := Register{From: from, To: to}
	for _, run := range runs {
		if !from.IsZero() && run.PayDate.Before(from) {
			continue
		}
		if !to.IsZero() && run.PayDate.After(to) {
			continue
		}
		reg.Lines = append(reg.Lines, RegisterLine{Run: run, PayeeName: names.lookup(run.Payee)})
		reg.Gross = reg.Gross.Add(run.GrossPay)
		reg.Net = reg.Net.Add(run.NetPay)
		if run.Taxes != nil {
			reg.Taxes = reg.Taxes.Add(run.Taxes.Total)
		}
	}
	sort.SliceStable(reg.Lines, func(i, j int) bool {
		a, b := reg.Lines[i].Run, reg.Lines[j].Run
		if !a.PayDate.Equal(b.PayDate) {
			return a.PayDate.Before(b.PayDate)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return reg, nil
}

// Stub is a single run with the payee's year-to-date totals.
type Stub struct {
	Run        model.PayrollRun
	PayeeName  string
	YearStart  time.Time
	YTDGross   decimal.Decimal
	YTDTaxes   decimal.Decimal
	YTDNet     decimal.Decimal
	YTDDetails tax.Breakdown
}

// Stub returns the pay stub for a stored run. Year-to-date sums cover the
// same payee's runs from the start of the run's year through its pay date.
func (s *Service) Stub(ctx context.Context, companyID, runID string) (Stub, error) {
	run, err := store.FindPayrollRun(ctx, s.store, companyID, runID)
	if err != nil {
		return Stub{}, fmt.Errorf("loading payroll run %s: %w", runID, err)
	}
	runs, err := s.store.ListPayrollRuns(ctx, companyID)
	if err != nil {
		return Stub{}, fmt.Errorf("loading payroll runs: %w", err)
	}
	names, err := s.payeeNames(ctx, companyID)
	if err != nil {
		return Stub{}, err
	}

	stub := Stub{Run: run, PayeeName: names.lookup(run.Payee), YearStart: model.Day(s.opts.YearStart(run.PayDate))}
	for _, r := range runs {
		if r.Payee != run.Payee || r.PayDate.Before(stub.YearStart) || r.PayDate.After(run.PayDate) {
			continue
		}
		stub.YTDGross = stub.YTDGross.Add(r.GrossPay)
		stub.YTDNet = stub.YTDNet.Add(r.NetPay)
		if r.Taxes != nil {
			d := &stub.YTDDetails
			d.SocialSecurity = d.SocialSecurity.Add(r.Taxes.SocialSecurity)
			d.Medicare = d.Medicare.Add(r.Taxes.Medicare)
			d.FederalWithholding = d.FederalWithholding.Add(r.Taxes.FederalWithholding)
			d.StateWithholding = d.StateWithholding.Add(r.Taxes.StateWithholding)
			d.Total = d.Total.Add(r.Taxes.Total)
		}
	}
	stub.YTDTaxes = stub.YTDDetails.Total
	return stub, nil
}

type payeeNames map[model.Payee]string

func (n payeeNames) lookup(p model.Payee) string {
	if name, ok := n[p]; ok {
		return name
	}
	return p.ID
}

func (s *Service) payeeNames(ctx context.Context, companyID string) (payeeNames, error) {
	emps, err := s.store.ListEmployees(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("loading employees: %w", err)
	}
	cons, err := s.store.ListContractors(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("loading contractors: %w", err)
	}
	names := make(payeeNames, len(emps)+len(cons))
	for _, e := range emps {
		names[model.Payee{Kind: model.PayeeEmployee, ID: e.ID}] = e.FullName()
	}
	for _, c := range cons {
		names[model.Payee{Kind: model.PayeeContractor, ID: c.ID}] = c.DisplayName()
	}
	return names, nil
}
