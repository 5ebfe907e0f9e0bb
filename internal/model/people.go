package model

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/tax"
)

// PayType selects how an employee's pay rate is interpreted.
type PayType string

const (
	PayTypeHourly PayType = "Hourly"
	PayTypeSalary PayType = "Salary"
)

// Valid reports whether p is a known pay type.
func (p PayType) Valid() bool {
	return p == PayTypeHourly || p == PayTypeSalary
}

// Employee is a person paid through payroll with tax withholding.
type Employee struct {
	ID        string
	CompanyID string
	FirstName string
	LastName  string
	Email     string
	PayType   PayType
	PayRate   decimal.Decimal // hourly rate, or annual salary for PayTypeSalary
	TaxRates  tax.Rates
	Active    bool
}

// FullName returns "First Last".
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Validate checks an employee record loaded from storage or a form.
func (e Employee) Validate() error {
	switch {
	case e.ID == "":
		return &FieldError{Entity: "employee", Field: "id", Reason: "is required"}
	case e.CompanyID == "":
		return &FieldError{Entity: "employee", ID: e.ID, Field: "company_id", Reason: "is required"}
	case e.FullName() == "":
		return &FieldError{Entity: "employee", ID: e.ID, Field: "name", Reason: "is required"}
	case !e.PayType.Valid():
		return &FieldError{Entity: "employee", ID: e.ID, Field: "pay_type", Reason: "must be Hourly or Salary, got " + string(e.PayType)}
	case e.PayRate.IsNegative():
		return &FieldError{Entity: "employee", ID: e.ID, Field: "pay_rate", Reason: "must not be negative"}
	}
	if err := e.TaxRates.Validate(); err != nil {
		return &FieldError{Entity: "employee", ID: e.ID, Field: "tax_rates", Reason: err.Error()}
	}
	return nil
}

// BankDetails is where a contractor payment is sent.
type BankDetails struct {
	BankName        string
	RoutingNumber   string
	AccountLastFour string
}

// Contractor is paid gross with no withholding.
type Contractor struct {
	ID           string
	CompanyID    string
	Name         string
	BusinessName string
	Bank         BankDetails
}

// DisplayName prefers the business name when one is set.
func (c Contractor) DisplayName() string {
	if c.BusinessName != "" {
		return c.BusinessName
	}
	return c.Name
}

// Validate checks a contractor record.
func (c Contractor) Validate() error {
	switch {
	case c.ID == "":
		return &FieldError{Entity: "contractor", Field: "id", Reason: "is required"}
	case c.CompanyID == "":
		return &FieldError{Entity: "contractor", ID: c.ID, Field: "company_id", Reason: "is required"}
	case c.Name == "":
		return &FieldError{Entity: "contractor", ID: c.ID, Field: "name", Reason: "is required"}
	case len(c.Bank.AccountLastFour) > 4:
		return &FieldError{Entity: "contractor", ID: c.ID, Field: "account_last_four", Reason: "must be at most 4 digits"}
	}
	return nil
}
