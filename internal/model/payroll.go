package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/tax"
)

// PayeeKind tags who a payroll run pays.
type PayeeKind string

const (
	PayeeEmployee   PayeeKind = "employee"
	PayeeContractor PayeeKind = "contractor"
)

// Payee references exactly one employee or contractor.
type Payee struct {
	Kind PayeeKind
	ID   string
}

// NewPayee builds a Payee from the two optional identifiers of a stored run.
func NewPayee(employeeID, contractorID string) (Payee, error) {
	switch {
	case employeeID != "" && contractorID != "":
		return Payee{}, ErrAmbiguousPayee
	case employeeID != "":
		return Payee{Kind: PayeeEmployee, ID: employeeID}, nil
	case contractorID != "":
		return Payee{Kind: PayeeContractor, ID: contractorID}, nil
	default:
		return Payee{}, ErrNoPayee
	}
}

// EmployeeID returns the employee identifier, or "" for contractor runs.
func (p Payee) EmployeeID() string {
	if p.Kind == PayeeEmployee {
		return p.ID
	}
	return ""
}

// ContractorID returns the contractor identifier, or "" for employee runs.
func (p Payee) ContractorID() string {
	if p.Kind == PayeeContractor {
		return p.ID
	}
	return ""
}

// PaymentMethod is how net pay reaches the payee.
type PaymentMethod string

const (
	PaymentDirectDeposit PaymentMethod = "direct-deposit"
	PaymentCheck         PaymentMethod = "check"
	PaymentCash          PaymentMethod = "cash"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentDirectDeposit || m == PaymentCheck || m == PaymentCash
}

// PayrollRun is the immutable record of one payment. Gross, net and taxes
// are the figures computed when the run was created and are never
// recomputed from the current employee record.
type PayrollRun struct {
	ID                 string
	CompanyID          string
	Payee              Payee
	PayPeriodEnd       time.Time
	PayDate            time.Time
	HoursWorked        decimal.Decimal
	OvertimeHours      decimal.Decimal
	AdditionalPay      decimal.Decimal
	AdditionalPayLabel string
	GrossPay           decimal.Decimal
	NetPay             decimal.Decimal
	Taxes              *tax.Breakdown // nil for contractor runs
	PaymentMethod      PaymentMethod
	CreatedAt          time.Time
}

// Validate checks the identifying fields of a run before it is stored.
func (r PayrollRun) Validate() error {
	if r.ID == "" {
		return &FieldError{Entity: "payroll run", Field: "id", Reason: "is required"}
	}
	if r.CompanyID == "" {
		return &FieldError{Entity: "payroll run", ID: r.ID, Field: "company_id", Reason: "is required"}
	}
	if _, err := NewPayee(r.Payee.EmployeeID(), r.Payee.ContractorID()); err != nil {
		return err
	}
	if r.Payee.Kind == PayeeContractor && r.Taxes != nil {
		return &FieldError{Entity: "payroll run", ID: r.ID, Field: "taxes", Reason: "must be empty for contractor payments"}
	}
	if r.PayDate.IsZero() {
		return &FieldError{Entity: "payroll run", ID: r.ID, Field: "pay_date", Reason: "is required"}
	}
	if !r.PaymentMethod.Valid() {
		return &FieldError{Entity: "payroll run", ID: r.ID, Field: "payment_method", Reason: "is not recognized: " + string(r.PaymentMethod)}
	}
	return nil
}
