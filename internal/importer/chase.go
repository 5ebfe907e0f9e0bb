package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// ChaseParser parses Chase business checking CSV exports.
type ChaseParser struct{}

const chaseDateFormat = "01/02/2006"

// chaseRow mirrors the columns of a Chase checking export.
type chaseRow struct {
	Details     string `csv:"Details"`
	PostingDate string `csv:"Posting Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Type        string `csv:"Type"`
	Balance     string `csv:"Balance"`
	CheckNumber string `csv:"Check or Slip #"`
}

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV and returns BankTransactions.
func (p *ChaseParser) Parse(r io.Reader) ([]model.BankTransaction, error) {
	var rows []chaseRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}

	var txns []model.BankTransaction
	for i, row := range rows {
		txn, err := row.toBank()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func (row chaseRow) toBank() (model.BankTransaction, error) {
	date, err := time.Parse(chaseDateFormat, strings.TrimSpace(row.PostingDate))
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing date %q: %w", row.PostingDate, err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(row.Amount))
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing amount %q: %w", row.Amount, err)
	}

	ref := makeChaseRef(date, row.Description, amount, strings.TrimSpace(row.Balance))
	if n := strings.TrimSpace(row.CheckNumber); n != "" {
		ref += "_" + n
	}

	return model.BankTransaction{
		Date:        date,
		Description: strings.TrimSpace(row.Description),
		Amount:      amount,
		Reference:   ref,
		Type:        row.Type,
	}, nil
}

// makeChaseRef creates a reference like
// chase_20250103_GITHUBPROSUBSCRIPTION_-4.00_10496.00 from the posting date,
// the whole description, the amount and the running balance. The balance
// tells apart same-day rows that otherwise match; it is left out when the
// export has none.
func makeChaseRef(date time.Time, desc string, amount decimal.Decimal, balance string) string {
	key := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, strings.ToUpper(desc))
	ref := fmt.Sprintf("chase_%s_%s_%s", date.Format("20060102"), key, amount.StringFixed(2))
	if b, err := decimal.NewFromString(balance); err == nil {
		ref += "_" + b.StringFixed(2)
	}
	return ref
}
