package statements

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Period is an inclusive reporting window. The calendar month of End is
// the report's "current month".
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls on a day within [Start, End].
func (p Period) Contains(t time.Time) bool {
	d := model.Day(t)
	return !d.Before(model.Day(p.Start)) && !d.After(model.Day(p.End))
}

// InCurrentMonth reports whether t falls in the calendar month of End.
func (p Period) InCurrentMonth(t time.Time) bool {
	return model.SameMonth(model.Day(t), model.Day(p.End))
}

// Amounts pairs a current-month and a year-to-date figure.
type Amounts struct {
	CurrentMonth decimal.Decimal
	YearToDate   decimal.Decimal
}

// Add returns a + b.
func (a Amounts) Add(b Amounts) Amounts {
	return Amounts{
		CurrentMonth: a.CurrentMonth.Add(b.CurrentMonth),
		YearToDate:   a.YearToDate.Add(b.YearToDate),
	}
}

// Sub returns a - b.
func (a Amounts) Sub(b Amounts) Amounts {
	return Amounts{
		CurrentMonth: a.CurrentMonth.Sub(b.CurrentMonth),
		YearToDate:   a.YearToDate.Sub(b.YearToDate),
	}
}

// PercentOf returns a as a percentage of revenue, column by column.
func (a Amounts) PercentOf(revenue Amounts) Amounts {
	return Amounts{
		CurrentMonth: PercentOfRevenue(a.CurrentMonth, revenue.CurrentMonth),
		YearToDate:   PercentOfRevenue(a.YearToDate, revenue.YearToDate),
	}
}

// PercentOfRevenue returns amount / revenue * 100, or zero when revenue is zero.
func PercentOfRevenue(amount, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return amount.Div(revenue).Mul(hundred)
}
