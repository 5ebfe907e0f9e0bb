package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/tax"
)

// AnnualHours converts an annual salary to an hourly base rate.
const AnnualHours = 2080

var (
	annualHours        = decimal.NewFromInt(AnnualHours)
	overtimeMultiplier = decimal.RequireFromString("1.5")
)

// EmployeeRequest is the input to one employee pay calculation.
type EmployeeRequest struct {
	PayType         model.PayType
	PayRate         decimal.Decimal
	HoursWorked     decimal.Decimal
	OvertimeEnabled bool
	OvertimeHours   decimal.Decimal
	AdditionalPay   decimal.Decimal
	TaxRates        tax.Rates
}

// Result is the full breakdown of one pay calculation.
type Result struct {
	BaseRate      decimal.Decimal
	RegularPay    decimal.Decimal
	OvertimePay   decimal.Decimal
	AdditionalPay decimal.Decimal
	GrossPay      decimal.Decimal
	Taxes         *tax.Breakdown // nil for contractors
	NetPay        decimal.Decimal
}

// Validate rejects inputs that would produce a meaningless paycheck.
func (r EmployeeRequest) Validate() error {
	switch {
	case !r.PayType.Valid():
		return &InputError{Field: "pay_type", Reason: "must be Hourly or Salary"}
	case r.PayRate.IsNegative():
		return &InputError{Field: "pay_rate", Reason: "must not be negative"}
	case r.HoursWorked.IsNegative():
		return &InputError{Field: "hours_worked", Reason: "must not be negative"}
	case r.OvertimeHours.IsNegative():
		return &InputError{Field: "overtime_hours", Reason: "must not be negative"}
	case r.AdditionalPay.IsNegative():
		return &InputError{Field: "additional_pay", Reason: "must not be negative"}
	}
	if err := r.TaxRates.Validate(); err != nil {
		return &InputError{Field: "tax_rates", Reason: err.Error(), Err: err}
	}
	return nil
}

// BaseRate returns the hourly rate: the pay rate itself for hourly
// employees, the annual salary spread over AnnualHours otherwise.
func BaseRate(payType model.PayType, payRate decimal.Decimal) decimal.Decimal {
	if payType == model.PayTypeHourly {
		return payRate
	}
	return payRate.Div(annualHours)
}

// CalculateEmployee computes gross pay, withholding and net pay.
func CalculateEmployee(req EmployeeRequest) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	base := BaseRate(req.PayType, req.PayRate)
	regular := req.HoursWorked.Mul(base)

	overtime := decimal.Zero
	if req.OvertimeEnabled {
		overtime = req.OvertimeHours.Mul(base).Mul(overtimeMultiplier)
	}

	gross := regular.Add(overtime).Add(req.AdditionalPay)
	taxes := tax.Withhold(gross, req.TaxRates)

	return Result{
		BaseRate:      base,
		RegularPay:    regular,
		OvertimePay:   overtime,
		AdditionalPay: req.AdditionalPay,
		GrossPay:      gross,
		Taxes:         &taxes,
		NetPay:        gross.Sub(taxes.Total),
	}, nil
}

// CalculateContractor passes the payment through untaxed.
func CalculateContractor(amount decimal.Decimal) (Result, error) {
	if !amount.IsPositive() {
		return Result{}, &InputError{Field: "amount", Reason: "must be greater than zero"}
	}
	return Result{
		RegularPay: amount,
		GrossPay:   amount,
		NetPay:     amount,
	}, nil
}
