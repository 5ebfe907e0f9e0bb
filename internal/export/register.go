// Package export writes payroll and statement data to CSV, PDF and XLSX.
package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/payroll"
)

type registerRow struct {
	RunID     string `csv:"run_id"`
	PayDate   string `csv:"pay_date"`
	PeriodEnd string `csv:"period_end"`
	Payee     string `csv:"payee"`
	Kind      string `csv:"kind"`
	Method    string `csv:"payment_method"`
	Gross     string `csv:"gross"`
	Taxes     string `csv:"taxes"`
	Net       string `csv:"net"`
}

// WriteRegisterCSV writes one row per run and a closing TOTAL row.
// Amounts are rounded to cents.
func WriteRegisterCSV(w io.Writer, reg payroll.Register) error {
	rows := make([]registerRow, 0, len(reg.Lines)+1)
	for _, l := range reg.Lines {
		taxes := ""
		if l.Run.Taxes != nil {
			taxes = l.Run.Taxes.Total.StringFixed(2)
		}
		rows = append(rows, registerRow{
			RunID:     l.Run.ID,
			PayDate:   l.Run.PayDate.Format(model.DateFormat),
			PeriodEnd: l.Run.PayPeriodEnd.Format(model.DateFormat),
			Payee:     l.PayeeName,
			Kind:      string(l.Run.Payee.Kind),
			Method:    string(l.Run.PaymentMethod),
			Gross:     l.Run.GrossPay.StringFixed(2),
			Taxes:     taxes,
			Net:       l.Run.NetPay.StringFixed(2),
		})
	}
	rows = append(rows, registerRow{
		RunID: "TOTAL",
		Gross: reg.Gross.StringFixed(2),
		Taxes: reg.Taxes.StringFixed(2),
		Net:   reg.Net.StringFixed(2),
	})
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing payroll register: %w", err)
	}
	return nil
}
