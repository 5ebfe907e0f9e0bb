package filestore

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
	"github.com/tally-dev/tally/internal/tax"
)

// Row types mirror one CSV file each. Money is kept as decimal text so
// files stay exact and hand-editable.

type employeeRow struct {
	ID                 string `csv:"id"`
	FirstName          string `csv:"first_name"`
	LastName           string `csv:"last_name"`
	Email              string `csv:"email"`
	PayType            string `csv:"pay_type"`
	PayRate            string `csv:"pay_rate"`
	SocialSecurity     string `csv:"social_security_rate"`
	Medicare           string `csv:"medicare_rate"`
	FederalWithholding string `csv:"federal_withholding_rate"`
	StateWithholding   string `csv:"state_withholding_rate"`
	Active             bool   `csv:"active"`
}

type contractorRow struct {
	ID              string `csv:"id"`
	Name            string `csv:"name"`
	BusinessName    string `csv:"business_name"`
	BankName        string `csv:"bank_name"`
	RoutingNumber   string `csv:"routing_number"`
	AccountLastFour string `csv:"account_last_four"`
}

type payrollRunRow struct {
	ID                 string `csv:"id"`
	EmployeeID         string `csv:"employee_id"`
	ContractorID       string `csv:"contractor_id"`
	PayPeriodEnd       string `csv:"pay_period_end"`
	PayDate            string `csv:"pay_date"`
	HoursWorked        string `csv:"hours_worked"`
	OvertimeHours      string `csv:"overtime_hours"`
	AdditionalPay      string `csv:"additional_pay"`
	AdditionalPayLabel string `csv:"additional_pay_label"`
	GrossPay           string `csv:"gross_pay"`
	NetPay             string `csv:"net_pay"`
	SocialSecurity     string `csv:"social_security"`
	Medicare           string `csv:"medicare"`
	FederalWithholding string `csv:"federal_withholding"`
	StateWithholding   string `csv:"state_withholding"`
	TotalTaxes         string `csv:"total_taxes"` // empty for contractor runs
	PaymentMethod      string `csv:"payment_method"`
	CreatedAt          string `csv:"created_at"`
}

type taskRow struct {
	ID          string `csv:"id"`
	Title       string `csv:"title"`
	Status      string `csv:"status"`
	Assignee    string `csv:"assignee"`
	DueDate     string `csv:"due_date"`
	DocumentIDs string `csv:"document_ids"` // semicolon-separated
	CreatedAt   string `csv:"created_at"`
}

type documentRow struct {
	ID        string `csv:"id"`
	Name      string `csv:"name"`
	Kind      string `csv:"kind"`
	Status    string `csv:"status"`
	UpdatedAt string `csv:"updated_at"`
}

func decText(d decimal.Decimal) string {
	return d.String()
}

func toEmployeeRow(e model.Employee) employeeRow {
	return employeeRow{
		ID:                 e.ID,
		FirstName:          e.FirstName,
		LastName:           e.LastName,
		Email:              e.Email,
		PayType:            string(e.PayType),
		PayRate:            decText(e.PayRate),
		SocialSecurity:     decText(e.TaxRates.SocialSecurity),
		Medicare:           decText(e.TaxRates.Medicare),
		FederalWithholding: decText(e.TaxRates.FederalWithholding),
		StateWithholding:   decText(e.TaxRates.StateWithholding),
		Active:             e.Active,
	}
}

func (r employeeRow) model(companyID string) (model.Employee, error) {
	var d store.Decoder
	e := model.Employee{
		ID:        r.ID,
		CompanyID: companyID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		PayType:   model.PayType(r.PayType),
		PayRate:   d.Decimal("pay_rate", r.PayRate),
		TaxRates: tax.Rates{
			SocialSecurity:     d.Decimal("social_security_rate", r.SocialSecurity),
			Medicare:           d.Decimal("medicare_rate", r.Medicare),
			FederalWithholding: d.Decimal("federal_withholding_rate", r.FederalWithholding),
			StateWithholding:   d.Decimal("state_withholding_rate", r.StateWithholding),
		},
		Active: r.Active,
	}
	if err := d.Err(); err != nil {
		return model.Employee{}, fmt.Errorf("employee %s: %w", r.ID, err)
	}
	return e, nil
}

func toContractorRow(c model.Contractor) contractorRow {
	return contractorRow{
		ID:              c.ID,
		Name:            c.Name,
		BusinessName:    c.BusinessName,
		BankName:        c.Bank.BankName,
		RoutingNumber:   c.Bank.RoutingNumber,
		AccountLastFour: c.Bank.AccountLastFour,
	}
}

func (r contractorRow) model(companyID string) model.Contractor {
	return model.Contractor{
		ID:           r.ID,
		CompanyID:    companyID,
		Name:         r.Name,
		BusinessName: r.BusinessName,
		Bank: model.BankDetails{
			BankName:        r.BankName,
			RoutingNumber:   r.RoutingNumber,
			AccountLastFour: r.AccountLastFour,
		},
	}
}

func toPayrollRunRow(run model.PayrollRun) payrollRunRow {
	row := payrollRunRow{
		ID:                 run.ID,
		EmployeeID:         run.Payee.EmployeeID(),
		ContractorID:       run.Payee.ContractorID(),
		PayPeriodEnd:       store.FormatDay(run.PayPeriodEnd),
		PayDate:            store.FormatDay(run.PayDate),
		HoursWorked:        decText(run.HoursWorked),
		OvertimeHours:      decText(run.OvertimeHours),
		AdditionalPay:      decText(run.AdditionalPay),
		AdditionalPayLabel: run.AdditionalPayLabel,
		GrossPay:           decText(run.GrossPay),
		NetPay:             decText(run.NetPay),
		PaymentMethod:      string(run.PaymentMethod),
		CreatedAt:          store.FormatStamp(run.CreatedAt),
	}
	if t := run.Taxes; t != nil {
		row.SocialSecurity = decText(t.SocialSecurity)
		row.Medicare = decText(t.Medicare)
		row.FederalWithholding = decText(t.FederalWithholding)
		row.StateWithholding = decText(t.StateWithholding)
		row.TotalTaxes = decText(t.Total)
	}
	return row
}

func (r payrollRunRow) model(companyID string) (model.PayrollRun, error) {
	payee, err := model.NewPayee(r.EmployeeID, r.ContractorID)
	if err != nil {
		return model.PayrollRun{}, fmt.Errorf("payroll run %s: %w", r.ID, err)
	}
	var d store.Decoder
	run := model.PayrollRun{
		ID:                 r.ID,
		CompanyID:          companyID,
		Payee:              payee,
		PayPeriodEnd:       d.Day("pay_period_end", r.PayPeriodEnd),
		PayDate:            d.Day("pay_date", r.PayDate),
		HoursWorked:        d.Decimal("hours_worked", r.HoursWorked),
		OvertimeHours:      d.Decimal("overtime_hours", r.OvertimeHours),
		AdditionalPay:      d.Decimal("additional_pay", r.AdditionalPay),
		AdditionalPayLabel: r.AdditionalPayLabel,
		GrossPay:           d.Decimal("gross_pay", r.GrossPay),
		NetPay:             d.Decimal("net_pay", r.NetPay),
		PaymentMethod:      model.PaymentMethod(r.PaymentMethod),
		CreatedAt:          d.Stamp("created_at", r.CreatedAt),
	}
	if r.TotalTaxes != "" {
		run.Taxes = &tax.Breakdown{
			SocialSecurity:     d.Decimal("social_security", r.SocialSecurity),
			Medicare:           d.Decimal("medicare", r.Medicare),
			FederalWithholding: d.Decimal("federal_withholding", r.FederalWithholding),
			StateWithholding:   d.Decimal("state_withholding", r.StateWithholding),
			Total:              d.Decimal("total_taxes", r.TotalTaxes),
		}
	}
	if err := d.Err(); err != nil {
		return model.PayrollRun{}, fmt.Errorf("payroll run %s: %w", r.ID, err)
	}
	return run, nil
}

func toTaskRow(t model.Task) taskRow {
	return taskRow{
		ID:          t.ID,
		Title:       t.Title,
		Status:      string(t.Status),
		Assignee:    t.Assignee,
		DueDate:     store.FormatDay(t.DueDate),
		DocumentIDs: strings.Join(t.DocumentIDs, ";"),
		CreatedAt:   store.FormatStamp(t.CreatedAt),
	}
}

func (r taskRow) model(companyID string) (model.Task, error) {
	var d store.Decoder
	t := model.Task{
		ID:        r.ID,
		CompanyID: companyID,
		Title:     r.Title,
		Status:    model.TaskStatus(r.Status),
		Assignee:  r.Assignee,
		DueDate:   d.Day("due_date", r.DueDate),
		CreatedAt: d.Stamp("created_at", r.CreatedAt),
	}
	if r.DocumentIDs != "" {
		t.DocumentIDs = strings.Split(r.DocumentIDs, ";")
	}
	if err := d.Err(); err != nil {
		return model.Task{}, fmt.Errorf("task %s: %w", r.ID, err)
	}
	return t, nil
}

func toDocumentRow(doc model.Document) documentRow {
	return documentRow{
		ID:        doc.ID,
		Name:      doc.Name,
		Kind:      doc.Kind,
		Status:    string(doc.Status),
		UpdatedAt: store.FormatStamp(doc.UpdatedAt),
	}
}

func (r documentRow) model(companyID string) (model.Document, error) {
	var d store.Decoder
	updated := d.Stamp("updated_at", r.UpdatedAt)
	if err := d.Err(); err != nil {
		return model.Document{}, fmt.Errorf("document %s: %w", r.ID, err)
	}
	return model.Document{
		ID:        r.ID,
		CompanyID: companyID,
		Name:      r.Name,
		Kind:      r.Kind,
		Status:    model.DocumentStatus(r.Status),
		UpdatedAt: updated,
	}, nil
}
