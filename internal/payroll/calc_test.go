package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/tax"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, name string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: want %s, got %s", name, want, got)
}

func standardRates() tax.Rates {
	return tax.Rates{
		SocialSecurity:     dec("6.2"),
		Medicare:           dec("1.45"),
		FederalWithholding: dec("15"),
		StateWithholding:   dec("5"),
	}
}

func TestCalculateEmployee_Hourly(t *testing.T) {
	res, err := CalculateEmployee(EmployeeRequest{
		PayType:     model.PayTypeHourly,
		PayRate:     dec("20"),
		HoursWorked: dec("80"),
		TaxRates:    standardRates(),
	})
	require.NoError(t, err)

	assertDec(t, "1600.00", res.GrossPay, "gross")
	require.NotNil(t, res.Taxes)
	assertDec(t, "99.20", res.Taxes.SocialSecurity, "social security")
	assertDec(t, "23.20", res.Taxes.Medicare, "medicare")
	assertDec(t, "240.00", res.Taxes.FederalWithholding, "federal")
	assertDec(t, "80.00", res.Taxes.StateWithholding, "state")
	assertDec(t, "1157.60", res.NetPay, "net")
	assertDec(t, "0", res.OvertimePay, "overtime")
}

func TestCalculateEmployee_Salary(t *testing.T) {
	res, err := CalculateEmployee(EmployeeRequest{
		PayType:     model.PayTypeSalary,
		PayRate:     dec("104000"),
		HoursWorked: dec("80"),
	})
	require.NoError(t, err)

	assertDec(t, "50.00", res.BaseRate, "base rate")
	assertDec(t, "4000.00", res.RegularPay, "regular")
	assertDec(t, "4000.00", res.GrossPay, "gross")
	assertDec(t, "4000.00", res.NetPay, "net with no rates")
}

func TestCalculateEmployee_Overtime(t *testing.T) {
	req := EmployeeRequest{
		PayType:         model.PayTypeHourly,
		PayRate:         dec("20"),
		HoursWorked:     dec("80"),
		OvertimeEnabled: true,
		OvertimeHours:   dec("10"),
	}
	res, err := CalculateEmployee(req)
	require.NoError(t, err)
	assertDec(t, "300.00", res.OvertimePay, "overtime")
	assertDec(t, "1900.00", res.GrossPay, "gross")

	// Hours supplied but overtime switched off are ignored.
	req.OvertimeEnabled = false
	res, err = CalculateEmployee(req)
	require.NoError(t, err)
	assertDec(t, "0", res.OvertimePay, "overtime disabled")
	assertDec(t, "1600.00", res.GrossPay, "gross without overtime")
}

func TestCalculateEmployee_AdditionalPay(t *testing.T) {
	res, err := CalculateEmployee(EmployeeRequest{
		PayType:       model.PayTypeHourly,
		PayRate:       dec("20"),
		HoursWorked:   dec("80"),
		AdditionalPay: dec("250.50"),
		TaxRates:      standardRates(),
	})
	require.NoError(t, err)
	assertDec(t, "1850.50", res.GrossPay, "gross")
	assertDec(t, "1850.50", res.NetPay.Add(res.Taxes.Total), "net + taxes")
}

func TestCalculateEmployee_InvalidInput(t *testing.T) {
	base := EmployeeRequest{
		PayType:     model.PayTypeHourly,
		PayRate:     dec("20"),
		HoursWorked: dec("80"),
	}
	tests := []struct {
		name  string
		mut   func(r *EmployeeRequest)
		field string
	}{
		{"unknown pay type", func(r *EmployeeRequest) { r.PayType = "" }, "pay_type"},
		{"negative rate", func(r *EmployeeRequest) { r.PayRate = dec("-1") }, "pay_rate"},
		{"negative hours", func(r *EmployeeRequest) { r.HoursWorked = dec("-8") }, "hours_worked"},
		{"negative overtime", func(r *EmployeeRequest) { r.OvertimeHours = dec("-1") }, "overtime_hours"},
		{"negative additional", func(r *EmployeeRequest) { r.AdditionalPay = dec("-5") }, "additional_pay"},
		{"rate over 100", func(r *EmployeeRequest) { r.TaxRates.FederalWithholding = dec("120") }, "tax_rates"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mut(&req)
			_, err := CalculateEmployee(req)
			var ierr *InputError
			require.ErrorAs(t, err, &ierr)
			assert.Equal(t, tt.field, ierr.Field)
		})
	}

	req := base
	req.TaxRates.Medicare = dec("-1")
	_, err := CalculateEmployee(req)
	var rerr *tax.RateError
	assert.ErrorAs(t, err, &rerr, "rate error is wrapped")
}

func TestCalculateEmployee_Deterministic(t *testing.T) {
	req := EmployeeRequest{
		PayType:         model.PayTypeSalary,
		PayRate:         dec("61234.56"),
		HoursWorked:     dec("86.67"),
		OvertimeEnabled: true,
		OvertimeHours:   dec("3.25"),
		TaxRates:        standardRates(),
	}
	a, err := CalculateEmployee(req)
	require.NoError(t, err)
	b, err := CalculateEmployee(req)
	require.NoError(t, err)
	assert.True(t, a.GrossPay.Equal(b.GrossPay))
	assert.True(t, a.NetPay.Equal(b.NetPay))
}

func TestCalculateContractor(t *testing.T) {
	res, err := CalculateContractor(dec("1500"))
	require.NoError(t, err)
	assertDec(t, "1500.00", res.GrossPay, "gross")
	assertDec(t, "1500.00", res.NetPay, "net")
	assert.Nil(t, res.Taxes)

	_, err = CalculateContractor(decimal.Zero)
	var ierr *InputError
	assert.ErrorAs(t, err, &ierr)
}
