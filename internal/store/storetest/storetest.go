// Package storetest is a conformance suite every store.Store backend runs.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
	"github.com/tally-dev/tally/internal/tax"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) store.Store

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// Run exercises the full Store contract.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(*testing.T, store.Store)
	}{
		{"Empty", testEmpty},
		{"Employees", testEmployees},
		{"Contractors", testContractors},
		{"PayrollRuns", testPayrollRuns},
		{"Transactions", testTransactions},
		{"Accounts", testAccounts},
		{"Work", testWork},
		{"CompanyIsolation", testCompanyIsolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func testEmpty(t *testing.T, s store.Store) {
	ctx := context.Background()
	emps, err := s.ListEmployees(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, emps)
	runs, err := s.ListPayrollRuns(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, runs)
	txns, err := s.ListTransactions(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, txns)
	accts, err := s.ListAccounts(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, accts)
	tasks, err := s.ListTasks(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = store.FindEmployee(ctx, s, "acme", "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testEmployees(t *testing.T, s store.Store) {
	ctx := context.Background()
	e := model.Employee{
		ID: "e1", CompanyID: "acme", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		PayType: model.PayTypeSalary, PayRate: dec("104000"),
		TaxRates: tax.Rates{SocialSecurity: dec("6.2"), Medicare: dec("1.45"), FederalWithholding: dec("12.5")},
		Active:   true,
	}
	require.NoError(t, s.SaveEmployee(ctx, "acme", e))
	require.NoError(t, s.SaveEmployee(ctx, "acme", model.Employee{
		ID: "e2", CompanyID: "acme", FirstName: "Bob", PayType: model.PayTypeHourly, PayRate: dec("18.5"),
	}))

	got, err := store.FindEmployee(ctx, s, "acme", "e1")
	require.NoError(t, err)
	assert.Equal(t, e.FullName(), got.FullName())
	assert.Equal(t, e.Email, got.Email)
	assert.Equal(t, e.PayType, got.PayType)
	assert.True(t, e.PayRate.Equal(got.PayRate))
	assert.True(t, e.TaxRates.FederalWithholding.Equal(got.TaxRates.FederalWithholding))
	assert.True(t, got.TaxRates.StateWithholding.IsZero())
	assert.True(t, got.Active)
	assert.Equal(t, "acme", got.CompanyID)

	// Deactivate replaces in place.
	e.Active = false
	require.NoError(t, s.SaveEmployee(ctx, "acme", e))
	emps, err := s.ListEmployees(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, emps, 2)
	got, err = store.FindEmployee(ctx, s, "acme", "e1")
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func testContractors(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := model.Contractor{
		ID: "c1", CompanyID: "acme", Name: "Linus", BusinessName: "Kernel Consulting",
		Bank: model.BankDetails{BankName: "First Bank", RoutingNumber: "021000021", AccountLastFour: "6789"},
	}
	require.NoError(t, s.SaveContractor(ctx, "acme", c))

	got, err := store.FindContractor(ctx, s, "acme", "c1")
	require.NoError(t, err)
	assert.Equal(t, c, got)

	c.BusinessName = ""
	require.NoError(t, s.SaveContractor(ctx, "acme", c))
	cons, err := s.ListContractors(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, cons, 1)
	assert.Equal(t, "Linus", cons[0].DisplayName())
}

func testPayrollRuns(t *testing.T, s store.Store) {
	ctx := context.Background()
	created := time.Date(2025, 1, 31, 9, 15, 0, 0, time.UTC)
	emp := model.PayrollRun{
		ID: "r1", CompanyID: "acme", Payee: model.Payee{Kind: model.PayeeEmployee, ID: "e1"},
		PayPeriodEnd: day(2025, 1, 31), PayDate: day(2025, 2, 3),
		HoursWorked: dec("80"), OvertimeHours: dec("2.5"), AdditionalPay: dec("100"), AdditionalPayLabel: "bonus",
		GrossPay: dec("1923.076923076923"), NetPay: dec("1775.961538461538"),
		Taxes: &tax.Breakdown{
			SocialSecurity: dec("119.230769230769"), Medicare: dec("27.884615384615"),
			FederalWithholding: dec("0"), StateWithholding: dec("0"), Total: dec("147.115384615384"),
		},
		PaymentMethod: model.PaymentCheck, CreatedAt: created,
	}
	con := model.PayrollRun{
		ID: "r2", CompanyID: "acme", Payee: model.Payee{Kind: model.PayeeContractor, ID: "c1"},
		PayPeriodEnd: day(2025, 1, 31), PayDate: day(2025, 2, 3),
		GrossPay: dec("500"), NetPay: dec("500"), PaymentMethod: model.PaymentDirectDeposit, CreatedAt: created,
	}
	require.NoError(t, s.SavePayrollRun(ctx, "acme", emp))
	require.NoError(t, s.SavePayrollRun(ctx, "acme", con))
	assert.ErrorIs(t, s.SavePayrollRun(ctx, "acme", emp), store.ErrDuplicate)

	got, err := store.FindPayrollRun(ctx, s, "acme", "r1")
	require.NoError(t, err)
	assert.Equal(t, emp.Payee, got.Payee)
	assert.True(t, got.PayDate.Equal(emp.PayDate))
	assert.True(t, got.PayPeriodEnd.Equal(emp.PayPeriodEnd))
	assert.True(t, got.CreatedAt.Equal(created))
	assert.True(t, got.GrossPay.Equal(emp.GrossPay), "stored gross is exact")
	assert.True(t, got.NetPay.Equal(emp.NetPay))
	assert.True(t, got.OvertimeHours.Equal(emp.OvertimeHours))
	assert.Equal(t, "bonus", got.AdditionalPayLabel)
	assert.Equal(t, model.PaymentCheck, got.PaymentMethod)
	require.NotNil(t, got.Taxes)
	assert.True(t, got.Taxes.Total.Equal(emp.Taxes.Total))
	assert.True(t, got.Taxes.SocialSecurity.Equal(emp.Taxes.SocialSecurity))

	got, err = store.FindPayrollRun(ctx, s, "acme", "r2")
	require.NoError(t, err)
	assert.Equal(t, model.PayeeContractor, got.Payee.Kind)
	assert.Nil(t, got.Taxes)

	// Mutating a returned run must not reach the store.
	got.GrossPay = dec("1")
	again, err := store.FindPayrollRun(ctx, s, "acme", "r2")
	require.NoError(t, err)
	assert.True(t, again.GrossPay.Equal(dec("500")))
}

func testTransactions(t *testing.T, s store.Store) {
	ctx := context.Background()
	first := []model.Transaction{
		{ID: "2025-01-001", CompanyID: "acme", Date: day(2025, 1, 5), Amount: dec("1200"), AccountNumber: 4010, Description: "Invoice 7", Reference: "inv-7"},
		{ID: "2025-01-002", CompanyID: "acme", Date: day(2025, 1, 6), Amount: dec("-45.10"), AccountNumber: 1010, Description: "Fees, bank"},
	}
	require.NoError(t, s.SaveTransactions(ctx, "acme", first))
	require.NoError(t, s.SaveTransactions(ctx, "acme", []model.Transaction{
		{ID: "2025-02-001", CompanyID: "acme", Date: day(2025, 2, 1), Amount: dec("99.99"), AccountNumber: 6030},
	}))

	got, err := s.ListTransactions(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2025-01-001", got[0].ID)
	assert.Equal(t, "acme", got[0].CompanyID)
	assert.True(t, got[0].Date.Equal(day(2025, 1, 5)))
	assert.True(t, got[1].Amount.Equal(dec("-45.10")))
	assert.Equal(t, "Fees, bank", got[1].Description)
	assert.Equal(t, "inv-7", got[0].Reference)
	assert.Equal(t, 6030, got[2].AccountNumber)
}

func testAccounts(t *testing.T, s store.Store) {
	ctx := context.Background()
	chart := []model.Account{
		{Number: 1010, Name: "Checking", Classification: model.ClassCurrentAsset, Description: "Operating"},
		{Number: 1510, Name: "Accumulated Depreciation", Classification: model.ClassFixedAsset, Contra: true},
	}
	require.NoError(t, s.SaveAccounts(ctx, "acme", chart))
	got, err := s.ListAccounts(ctx, "acme")
	require.NoError(t, err)
	assert.ElementsMatch(t, chart, got)

	require.NoError(t, s.SaveAccounts(ctx, "acme", chart[:1]))
	got, err = s.ListAccounts(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, chart[:1], got, "save replaces the chart")
}

func testWork(t *testing.T, s store.Store) {
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "t1", CompanyID: "acme", Title: "Collect W-9", Status: model.TaskTodo, Assignee: "sam", DueDate: day(2025, 3, 15), DocumentIDs: []string{"d1", "d2"}, CreatedAt: created},
		{ID: "t2", CompanyID: "acme", Title: "File 941", Status: model.TaskDone, CreatedAt: created},
	}
	docs := []model.Document{
		{ID: "d1", CompanyID: "acme", Name: "W-9 Linus", Kind: "w9", Status: model.DocumentReceived, UpdatedAt: created},
		{ID: "d2", CompanyID: "acme", Name: "I-9 Ada", Kind: "i9", Status: model.DocumentPending, UpdatedAt: created},
	}
	require.NoError(t, s.SaveWork(ctx, "acme", tasks, docs))

	gotTasks, err := s.ListTasks(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, gotTasks, 2)
	byID := map[string]model.Task{}
	for _, task := range gotTasks {
		byID[task.ID] = task
	}
	assert.Equal(t, []string{"d1", "d2"}, byID["t1"].DocumentIDs)
	assert.True(t, byID["t1"].DueDate.Equal(day(2025, 3, 15)))
	assert.Equal(t, "sam", byID["t1"].Assignee)
	assert.Empty(t, byID["t2"].DocumentIDs)
	assert.True(t, byID["t2"].DueDate.IsZero())

	gotDocs, err := s.ListDocuments(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, gotDocs, 2)

	require.NoError(t, s.SaveWork(ctx, "acme", tasks[1:], nil))
	gotTasks, err = s.ListTasks(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, gotTasks, 1, "save replaces tasks")
	gotDocs, err = s.ListDocuments(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, gotDocs)
}

func testCompanyIsolation(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveEmployee(ctx, "acme", model.Employee{ID: "e1", CompanyID: "acme", FirstName: "A", PayType: model.PayTypeHourly}))
	require.NoError(t, s.SaveTransactions(ctx, "acme", []model.Transaction{
		{ID: "2025-01-001", CompanyID: "acme", Date: day(2025, 1, 1), Amount: dec("1"), AccountNumber: 4010},
	}))

	emps, err := s.ListEmployees(ctx, "globex")
	require.NoError(t, err)
	assert.Empty(t, emps)
	txns, err := s.ListTransactions(ctx, "globex")
	require.NoError(t, err)
	assert.Empty(t, txns)
}
