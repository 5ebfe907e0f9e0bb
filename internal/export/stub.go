package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/format"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/payroll"
)

// WritePayStubPDF renders a single-page pay stub with current and
// year-to-date columns.
func WritePayStubPDF(w io.Writer, companyName string, stub payroll.Stub) error {
	run := stub.Run

	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetTitle("Pay stub "+run.ID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, companyName)
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Pay stub for %s", stub.PayeeName))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period ending %s, paid %s by %s",
		run.PayPeriodEnd.Format(model.DateFormat), run.PayDate.Format(model.DateFormat), run.PaymentMethod))
	pdf.Ln(6)
	pdf.Cell(0, 7, "Run "+run.ID)
	pdf.Ln(10)

	row := func(label, current, ytd string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 11)
		pdf.CellFormat(90, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, current, "", 0, "R", false, 0, "")
		pdf.CellFormat(45, 7, ytd, "", 1, "R", false, 0, "")
	}

	row("", "Current", "Year to date", true)
	if run.Payee.Kind == model.PayeeEmployee {
		row("Hours", run.HoursWorked.String(), "", false)
		if run.OvertimeHours.IsPositive() {
			row("Overtime hours", run.OvertimeHours.String(), "", false)
		}
	}
	if run.AdditionalPay.IsPositive() {
		label := run.AdditionalPayLabel
		if label == "" {
			label = "Additional pay"
		}
		row(label, format.Currency(run.AdditionalPay, false), "", false)
	}
	row("Gross pay", format.Currency(run.GrossPay, false), format.Currency(stub.YTDGross, false), true)

	if t := run.Taxes; t != nil {
		ytd := stub.YTDDetails
		for _, item := range []struct {
			label        string
			current, ytd decimal.Decimal
		}{
			{"Social Security", t.SocialSecurity, ytd.SocialSecurity},
			{"Medicare", t.Medicare, ytd.Medicare},
			{"Federal withholding", t.FederalWithholding, ytd.FederalWithholding},
			{"State withholding", t.StateWithholding, ytd.StateWithholding},
		} {
			row(item.label, format.Currency(item.current, true), format.Currency(item.ytd, true), false)
		}
		row("Total taxes", format.Currency(t.Total, true), format.Currency(stub.YTDTaxes, true), true)
	}
	row("Net pay", format.Currency(run.NetPay, false), format.Currency(stub.YTDNet, false), true)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pay stub: %w", err)
	}
	return nil
}
