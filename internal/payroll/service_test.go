package payroll

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/accounts"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/log"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store/memory"
	"github.com/tally-dev/tally/internal/tax"
)

const company = "acme"

var (
	jan15 = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	jan31 = time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	feb14 = time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc   *Service
	store *memory.Store
}

func newFixture(t *testing.T, withLedger bool) fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, st.SaveAccounts(ctx, company, accounts.DefaultChart("retail")))
	require.NoError(t, st.SaveEmployee(ctx, company, model.Employee{
		ID: "e1", CompanyID: company, FirstName: "Ada", LastName: "Lovelace",
		PayType: model.PayTypeHourly, PayRate: dec("20"), TaxRates: standardRates(), Active: true,
	}))
	require.NoError(t, st.SaveEmployee(ctx, company, model.Employee{
		ID: "e2", CompanyID: company, FirstName: "Grace", LastName: "Hopper",
		PayType: model.PayTypeSalary, PayRate: dec("104000"), Active: true,
	}))
	require.NoError(t, st.SaveEmployee(ctx, company, model.Employee{
		ID: "e3", CompanyID: company, FirstName: "Former", LastName: "Staff",
		PayType: model.PayTypeHourly, PayRate: dec("15"), Active: false,
	}))
	require.NoError(t, st.SaveContractor(ctx, company, model.Contractor{
		ID: "c1", CompanyID: company, Name: "Linus", BusinessName: "Kernel Consulting",
	}))

	seq := 0
	opts := Options{
		DefaultRates: tax.Rates{SocialSecurity: dec("6.2"), Medicare: dec("1.45")},
		Now:          func() time.Time { return jan31.Add(9 * time.Hour) },
		NewID: func() string {
			seq++
			return fmt.Sprintf("run-%d", seq)
		},
	}
	if withLedger {
		opts.Ledger = ledger.NewService(st, log.Discard())
	}
	return fixture{svc: NewService(st, log.Discard(), opts), store: st}
}

func TestRunEmployee_Hourly(t *testing.T) {
	f := newFixture(t, false)

	run, err := f.svc.RunEmployee(context.Background(), company, EmployeeRun{
		EmployeeID:   "e1",
		PayPeriodEnd: jan15.Add(20 * time.Hour),
		PayDate:      jan31,
		HoursWorked:  dec("80"),
	})
	require.NoError(t, err)

	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, model.Payee{Kind: model.PayeeEmployee, ID: "e1"}, run.Payee)
	assert.Equal(t, jan15, run.PayPeriodEnd, "normalized to the day")
	assert.Equal(t, model.PaymentDirectDeposit, run.PaymentMethod)
	assertDec(t, "1600", run.GrossPay, "gross")
	assertDec(t, "1157.60", run.NetPay, "net")
	require.NotNil(t, run.Taxes)
	assertDec(t, "442.40", run.Taxes.Total, "taxes")

	runs, err := f.store.ListPayrollRuns(context.Background(), company)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
}

func TestRunEmployee_DefaultRatesAndOvertime(t *testing.T) {
	f := newFixture(t, false)

	run, err := f.svc.RunEmployee(context.Background(), company, EmployeeRun{
		EmployeeID:    "e2",
		HoursWorked:   dec("80"),
		OvertimeHours: dec("4"),
		PaymentMethod: model.PaymentCheck,
	})
	require.NoError(t, err)

	// 80h at 50/h plus 4h at 75/h.
	assertDec(t, "4300", run.GrossPay, "gross")
	assertDec(t, "328.95", run.Taxes.Total, "default rates 7.65%")
	assert.Equal(t, jan31, run.PayDate, "defaults to today")
	assert.Equal(t, jan31, run.PayPeriodEnd)
	assert.Equal(t, model.PaymentCheck, run.PaymentMethod)
}

func TestRunEmployee_Errors(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.RunEmployee(ctx, company, EmployeeRun{EmployeeID: "nobody", HoursWorked: dec("1")})
	assert.ErrorIs(t, err, ErrPayeeNotFound)

	_, err = f.svc.RunEmployee(ctx, company, EmployeeRun{EmployeeID: "e3", HoursWorked: dec("1")})
	assert.ErrorIs(t, err, ErrInactiveEmployee)

	_, err = f.svc.RunEmployee(ctx, company, EmployeeRun{EmployeeID: "e1", HoursWorked: dec("-1")})
	var inErr *InputError
	require.True(t, errors.As(err, &inErr))
	assert.Equal(t, "hours_worked", inErr.Field)

	_, err = f.svc.RunEmployee(ctx, company, EmployeeRun{EmployeeID: "e1", HoursWorked: dec("1"), PaymentMethod: "wire"})
	var fe *model.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "payment_method", fe.Field)

	runs, err := f.store.ListPayrollRuns(ctx, company)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRunEmployee_SnapshotIsStable(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	run, err := f.svc.RunEmployee(ctx, company, EmployeeRun{EmployeeID: "e1", PayDate: jan31, HoursWorked: dec("80")})
	require.NoError(t, err)

	// Raise pay and change withholding after the fact.
	emp, err := f.store.ListEmployees(ctx, company)
	require.NoError(t, err)
	changed := emp[0]
	changed.PayRate = dec("35")
	changed.TaxRates = tax.Rates{FederalWithholding: dec("30")}
	require.NoError(t, f.store.SaveEmployee(ctx, company, changed))

	reg, err := f.svc.Register(ctx, company, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, reg.Lines, 1)
	stored := reg.Lines[0].Run
	assert.Equal(t, run.ID, stored.ID)
	assertDec(t, "1600", stored.GrossPay, "gross")
	assertDec(t, "1157.60", stored.NetPay, "net")
	assertDec(t, "99.20", stored.Taxes.SocialSecurity, "social security")
}

func TestRunContractor(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	run, err := f.svc.RunContractor(ctx, company, ContractorRun{ContractorID: "c1", Amount: dec("2500"), PayDate: jan31, Memo: "January retainer"})
	require.NoError(t, err)
	assert.Equal(t, model.PayeeContractor, run.Payee.Kind)
	assert.Nil(t, run.Taxes)
	assertDec(t, "2500", run.GrossPay, "gross")
	assertDec(t, "2500", run.NetPay, "net")
	assert.Equal(t, "January retainer", run.AdditionalPayLabel)

	_, err = f.svc.RunContractor(ctx, company, ContractorRun{ContractorID: "c1", Amount: dec("0")})
	var inErr *InputError
	assert.True(t, errors.As(err, &inErr))

	_, err = f.svc.RunContractor(ctx, company, ContractorRun{ContractorID: "e1", Amount: dec("1")})
	assert.ErrorIs(t, err, ErrPayeeNotFound)
}

func TestRun_PostsToLedger(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.svc.RunEmployee(ctx, company, EmployeeRun{EmployeeID: "e1", PayDate: jan31, HoursWorked: dec("80")})
	require.NoError(t, err)
	_, err = f.svc.RunContractor(ctx, company, ContractorRun{ContractorID: "c1", Amount: dec("500"), PayDate: feb14})
	require.NoError(t, err)

	txns, err := f.store.ListTransactions(ctx, company)
	require.NoError(t, err)
	require.Len(t, txns, 5)

	byAccount := map[int]string{}
	for _, txn := range txns {
		byAccount[txn.AccountNumber] = byAccount[txn.AccountNumber] + txn.Amount.StringFixed(2) + " "
	}
	assert.Equal(t, "1600.00 ", byAccount[accounts.WagesExpense])
	assert.Equal(t, "442.40 ", byAccount[accounts.PayrollLiabilities])
	assert.Equal(t, "-1157.60 -500.00 ", byAccount[accounts.OperatingChecking])
	assert.Equal(t, "500.00 ", byAccount[accounts.ContractLabor])
	assert.Equal(t, "2025-01-001", txns[0].ID)
	assert.Equal(t, "2025-02-001", txns[3].ID)
	assert.Equal(t, "payroll:run-1", txns[0].Reference)
}

func TestPostings_RoundsToCents(t *testing.T) {
	run := model.PayrollRun{
		ID:       "r",
		Payee:    model.Payee{Kind: model.PayeeEmployee, ID: "e"},
		PayDate:  jan31,
		GrossPay: dec("1923.076923"),
		Taxes:    &tax.Breakdown{Total: dec("147.115384")},
	}
	got := Postings(run, "E")
	require.Len(t, got, 3)
	assertDec(t, "1923.08", got[0].Amount, "gross")
	assertDec(t, "147.12", got[1].Amount, "withheld")
	assertDec(t, "-1775.96", got[2].Amount, "net")
	assert.True(t, got[0].Amount.Add(got[2].Amount).Sub(got[1].Amount).IsZero(), "postings balance")
}

func TestRegister(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.RunContractor(ctx, company, ContractorRun{ContractorID: "c1", Amount: dec("500"), PayDate: feb14})
	require.NoError(t, err)
	_, err = f.svc.RunEmployee(ctx, company, EmployeeRun{EmployeeID: "e1", PayDate: jan31, HoursWorked: dec("80")})
	require.NoError(t, err)
	_, err = f.svc.RunEmployee(ctx, company, EmployeeRun{EmployeeID: "e1", PayDate: jan15, HoursWorked: dec("40")})
	require.NoError(t, err)

	reg, err := f.svc.Register(ctx, company, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, reg.Lines, 3)
	assert.Equal(t, jan15, reg.Lines[0].Run.PayDate, "sorted by pay date")
	assert.Equal(t, "Ada Lovelace", reg.Lines[0].PayeeName)
	assert.Equal(t, "Kernel Consulting", reg.Lines[2].PayeeName)
	assertDec(t, "2900", reg.Gross, "gross")
	assertDec(t, "663.60", reg.Taxes, "taxes")
	assertDec(t, "2236.40", reg.Net, "net")

	reg, err = f.svc.Register(ctx, company, jan31, jan31)
	require.NoError(t, err)
	require.Len(t, reg.Lines, 1)
	assertDec(t, "1600", reg.Gross, "gross in window")
}

func TestStub_YearToDate(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.RunEmployee(ctx, company, EmployeeRun{EmployeeID: "e1", PayDate: jan15, HoursWorked: dec("40")})
	require.NoError(t, err)
	second, err := f.svc.RunEmployee(ctx, company, EmployeeRun{EmployeeID: "e1", PayDate: jan31, HoursWorked: dec("80")})
	require.NoError(t, err)
	_, err = f.svc.RunEmployee(ctx, company, EmployeeRun{EmployeeID: "e1", PayDate: feb14, HoursWorked: dec("80")})
	require.NoError(t, err)

	stub, err := f.svc.Stub(ctx, company, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", stub.PayeeName)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), stub.YearStart)
	assertDec(t, "2400", stub.YTDGross, "ytd gross")
	assertDec(t, "663.60", stub.YTDTaxes, "ytd taxes")
	assertDec(t, "148.80", stub.YTDDetails.SocialSecurity, "ytd social security")
	assertDec(t, "1736.40", stub.YTDNet, "ytd net")

	_, err = f.svc.Stub(ctx, company, "missing")
	assert.Error(t, err)
}
