// Package tax computes payroll withholding from gross pay.
package tax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Statutory employee FICA rates, used as the default for new projects.
var (
	SocialSecurityRate = decimal.RequireFromString("6.2")
	MedicareRate       = decimal.RequireFromString("1.45")
)

// Rates holds withholding percentages; 6.2 means 6.2%.
type Rates struct {
	SocialSecurity     decimal.Decimal `yaml:"social_security"`
	Medicare           decimal.Decimal `yaml:"medicare"`
	FederalWithholding decimal.Decimal `yaml:"federal_withholding"`
	StateWithholding   decimal.Decimal `yaml:"state_withholding"`
}

// Breakdown is the dollar amount withheld for each rate.
type Breakdown struct {
	SocialSecurity     decimal.Decimal
	Medicare           decimal.Decimal
	FederalWithholding decimal.Decimal
	StateWithholding   decimal.Decimal
	Total              decimal.Decimal
}

// RateError reports a withholding rate outside 0..100.
type RateError struct {
	Name string
	Rate decimal.Decimal
}

func (e *RateError) Error() string {
	return fmt.Sprintf("tax rate %s = %s%% is outside 0..100", e.Name, e.Rate)
}

// Sum returns the combined percentage.
func (r Rates) Sum() decimal.Decimal {
	return r.SocialSecurity.Add(r.Medicare).Add(r.FederalWithholding).Add(r.StateWithholding)
}

// IsZero reports whether no rate is set.
func (r Rates) IsZero() bool {
	return r.SocialSecurity.IsZero() && r.Medicare.IsZero() &&
		r.FederalWithholding.IsZero() && r.StateWithholding.IsZero()
}

// Validate checks each rate and the combined rate are within 0..100.
func (r Rates) Validate() error {
	named := []struct {
		name string
		rate decimal.Decimal
	}{
		{"social_security", r.SocialSecurity},
		{"medicare", r.Medicare},
		{"federal_withholding", r.FederalWithholding},
		{"state_withholding", r.StateWithholding},
	}
	for _, n := range named {
		if n.rate.IsNegative() || n.rate.GreaterThan(hundred) {
			return &RateError{Name: n.name, Rate: n.rate}
		}
	}
	if sum := r.Sum(); sum.GreaterThan(hundred) {
		return &RateError{Name: "combined", Rate: sum}
	}
	return nil
}

// Withhold applies rates to gross. Values are exact; rounding is left to display.
func Withhold(gross decimal.Decimal, rates Rates) Breakdown {
	b := Breakdown{
		SocialSecurity:     portion(gross, rates.SocialSecurity),
		Medicare:           portion(gross, rates.Medicare),
		FederalWithholding: portion(gross, rates.FederalWithholding),
		StateWithholding:   portion(gross, rates.StateWithholding),
	}
	b.Total = b.SocialSecurity.Add(b.Medicare).Add(b.FederalWithholding).Add(b.StateWithholding)
	return b
}

func portion(gross, rate decimal.Decimal) decimal.Decimal {
	return gross.Mul(rate).Div(hundred)
}
