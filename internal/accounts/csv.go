package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/tally-dev/tally/internal/model"
)

// Header is the CSV header for chart-of-accounts.csv.
var Header = []string{"account_number", "account_name", "classification", "contra", "description"}

const (
	numFields = 5
	colNumber = 0
	colName   = 1
	colClass  = 2
	colContra = 3
	colDesc   = 4
)

// ReadAccounts reads chart-of-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colNumber] = strconv.Itoa(acct.Number)
	row[colName] = acct.Name
	row[colClass] = string(acct.Classification)
	if acct.Contra {
		row[colContra] = "true"
	}
	row[colDesc] = acct.Description
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	number, err := strconv.Atoi(record[colNumber])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing account_number %q: %w", record[colNumber], err)
	}

	class := model.Classification(record[colClass])
	if !class.Valid() {
		return model.Account{}, fmt.Errorf("account %d: unknown classification %q", number, record[colClass])
	}

	var contra bool
	if record[colContra] != "" {
		contra, err = strconv.ParseBool(record[colContra])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing contra %q: %w", record[colContra], err)
		}
	}

	return model.Account{
		Number:         number,
		Name:           record[colName],
		Classification: class,
		Contra:         contra,
		Description:    record[colDesc],
	}, nil
}
