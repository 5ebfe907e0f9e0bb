package store

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// Text encodings shared by the file and SQL backends. Money is stored as
// exact decimal text, days as YYYY-MM-DD and timestamps as RFC 3339 UTC.

// FormatDay returns t as YYYY-MM-DD, or "" for the zero time.
func FormatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateFormat)
}

// FormatStamp returns t as RFC 3339 in UTC, or "" for the zero time.
func FormatStamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Decoder parses stored text fields, keeping the first error so callers
// can convert a whole row before checking Err.
type Decoder struct {
	err error
}

// Err returns the first parse error, if any.
func (d *Decoder) Err() error { return d.err }

func (d *Decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// Decimal parses s; "" is zero.
func (d *Decoder) Decimal(field, s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		d.fail(fmt.Errorf("parsing %s %q: %w", field, s, err))
	}
	return v
}

// Day parses a YYYY-MM-DD string; "" is the zero time.
func (d *Decoder) Day(field, s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	v, err := model.ParseDay(s)
	if err != nil {
		d.fail(fmt.Errorf("%s: %w", field, err))
	}
	return v
}

// Stamp parses an RFC 3339 timestamp; "" is the zero time.
func (d *Decoder) Stamp(field, s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		d.fail(fmt.Errorf("parsing %s %q: %w", field, s, err))
	}
	return v
}
