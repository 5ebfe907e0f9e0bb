package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tally-dev/tally/internal/accounts"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/payroll"
	"github.com/tally-dev/tally/internal/statements"
	"github.com/tally-dev/tally/internal/tax"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func employeeRun() model.PayrollRun {
	taxes := tax.Withhold(dec("1600"), tax.Rates{
		SocialSecurity: dec("6.2"), Medicare: dec("1.45"),
		FederalWithholding: dec("15"), StateWithholding: dec("5"),
	})
	return model.PayrollRun{
		ID:            "run-1",
		Payee:         model.Payee{Kind: model.PayeeEmployee, ID: "e1"},
		PayPeriodEnd:  date(2025, 1, 15),
		PayDate:       date(2025, 1, 31),
		HoursWorked:   dec("80"),
		GrossPay:      dec("1600"),
		NetPay:        dec("1600").Sub(taxes.Total),
		Taxes:         &taxes,
		PaymentMethod: model.PaymentDirectDeposit,
	}
}

func contractorRun() model.PayrollRun {
	return model.PayrollRun{
		ID:            "run-2",
		Payee:         model.Payee{Kind: model.PayeeContractor, ID: "c1"},
		PayPeriodEnd:  date(2025, 1, 31),
		PayDate:       date(2025, 1, 31),
		AdditionalPay: dec("1300"),
		GrossPay:      dec("1300"),
		NetPay:        dec("1300"),
		PaymentMethod: model.PaymentCheck,
	}
}

func TestWriteRegisterCSV(t *testing.T) {
	emp, con := employeeRun(), contractorRun()
	reg := payroll.Register{
		From:  date(2025, 1, 1),
		To:    date(2025, 1, 31),
		Lines: []payroll.RegisterLine{{Run: emp, PayeeName: "Ada Lovelace"}, {Run: con, PayeeName: "Kernel Consulting"}},
		Gross: dec("2900"),
		Taxes: emp.Taxes.Total,
		Net:   emp.NetPay.Add(con.NetPay),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRegisterCSV(&buf, reg))
	assert.True(t, strings.HasPrefix(buf.String(), "run_id,pay_date,period_end,payee,kind,payment_method,gross,taxes,net\n"))

	var rows []registerRow
	require.NoError(t, gocsv.UnmarshalString(buf.String(), &rows))
	require.Len(t, rows, 3)

	assert.Equal(t, "Ada Lovelace", rows[0].Payee)
	assert.Equal(t, "2025-01-31", rows[0].PayDate)
	assert.Equal(t, "1600.00", rows[0].Gross)
	assert.Equal(t, "442.40", rows[0].Taxes)
	assert.Equal(t, "1157.60", rows[0].Net)

	assert.Equal(t, "contractor", rows[1].Kind)
	assert.Empty(t, rows[1].Taxes)

	assert.Equal(t, "TOTAL", rows[2].RunID)
	assert.Equal(t, "2900.00", rows[2].Gross)
	assert.Equal(t, "2457.60", rows[2].Net)
}

func TestWritePayStubPDF(t *testing.T) {
	emp := employeeRun()
	for _, stub := range []payroll.Stub{
		{Run: emp, PayeeName: "Ada Lovelace", YearStart: date(2025, 1, 1),
			YTDGross: emp.GrossPay, YTDTaxes: emp.Taxes.Total, YTDNet: emp.NetPay, YTDDetails: *emp.Taxes},
		{Run: contractorRun(), PayeeName: "Kernel Consulting", YearStart: date(2025, 1, 1),
			YTDGross: dec("1300"), YTDNet: dec("1300")},
	} {
		var buf bytes.Buffer
		require.NoError(t, WritePayStubPDF(&buf, "Acme Retail", stub), stub.PayeeName)
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), stub.PayeeName)
	}
}

func chartAndLedger() ([]model.Account, []model.Transaction) {
	txns := []model.Transaction{
		{ID: "2025-01-001", Date: date(2025, 1, 5), AccountNumber: 1010, Amount: dec("5000")},
		{ID: "2025-01-002", Date: date(2025, 1, 5), AccountNumber: 3010, Amount: dec("5000")},
		{ID: "2025-03-001", Date: date(2025, 3, 3), AccountNumber: accounts.SalesRevenue, Amount: dec("2000")},
		{ID: "2025-03-002", Date: date(2025, 3, 3), AccountNumber: 1010, Amount: dec("2000")},
		{ID: "2025-03-003", Date: date(2025, 3, 9), AccountNumber: accounts.WagesExpense, Amount: dec("500")},
		{ID: "2025-03-004", Date: date(2025, 3, 9), AccountNumber: 1010, Amount: dec("-500")},
	}
	return accounts.DefaultChart("retail"), txns
}

func TestWriteIncomeXLSX(t *testing.T) {
	chart, txns := chartAndLedger()
	is := statements.BuildIncomeStatement(txns, chart, statements.Period{Start: date(2025, 1, 1), End: date(2025, 3, 31)})

	var buf bytes.Buffer
	require.NoError(t, WriteIncomeXLSX(&buf, "Acme Retail", is))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{incomeSheet}, f.GetSheetList())
	rows, err := f.GetRows(incomeSheet)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "Acme Retail", rows[0][0])

	net := findRow(rows, "Net Income")
	require.NotNil(t, net, "net income row present")
	assert.Equal(t, "1500", net[2])
	assert.Equal(t, "75", net[3])
	assert.NotNil(t, findRow(rows, "Total Revenue"))
}

func TestWriteBalanceXLSX(t *testing.T) {
	chart, txns := chartAndLedger()
	bs := statements.BuildBalanceSheet(txns, chart, date(2025, 3, 31))

	var buf bytes.Buffer
	require.NoError(t, WriteBalanceXLSX(&buf, "Acme Retail", bs))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(balanceSheet)
	require.NoError(t, err)

	assets := findRow(rows, "Total Assets")
	require.NotNil(t, assets)
	assert.Equal(t, "6500", assets[2])
	assert.NotNil(t, findRow(rows, "Total Current Assets"))
	assert.Nil(t, findRow(rows, "Total Unclassified"), "empty groups are skipped")
}

func findRow(rows [][]string, label string) []string {
	for _, r := range rows {
		if len(r) > 1 && r[1] == label {
			return r
		}
	}
	return nil
}
