// Package auditlog records business actions (payroll runs, imports,
// exports) in <data>/logs/audit-log.csv.
package auditlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
)

// Actions written by the CLI.
const (
	ActionPayrollRun     = "payroll_run"
	ActionContractorPaid = "contractor_paid"
	ActionLedgerAdd      = "ledger_add"
	ActionBankImport     = "bank_import"
	ActionReportExport   = "report_export"
	ActionEmployeeChange = "employee_change"
	ActionWork           = "work"
)

const logFile = "logs/audit-log.csv"

// Entry is one audited action.
type Entry struct {
	Timestamp time.Time `csv:"timestamp"`
	Actor     string    `csv:"actor"`
	Action    string    `csv:"action"`
	Details   string    `csv:"details"`
	Reference string    `csv:"reference"`
}

// Log appends to and reads from one audit file.
type Log struct {
	path string
	now  func() time.Time
}

// New returns the audit log under dataDir.
func New(dataDir string) *Log {
	return &Log{path: filepath.Join(dataDir, logFile), now: time.Now}
}

// Path returns the CSV file location.
func (l *Log) Path() string { return l.path }

// Record appends a single entry stamped with the current time.
func (l *Log) Record(actor, action, details, reference string) error {
	return l.Append([]Entry{{
		Timestamp: l.now().UTC().Truncate(time.Second),
		Actor:     actor,
		Action:    action,
		Details:   details,
		Reference: reference,
	}})
}

// Append writes entries, creating the file and header if needed.
func (l *Log) Append(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	_, statErr := os.Stat(l.path)
	newFile := errors.Is(statErr, os.ErrNotExist)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	if newFile {
		err = gocsv.Marshal(entries, f)
	} else {
		err = gocsv.MarshalWithoutHeaders(entries, f)
	}
	if err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	return nil
}

// Read returns every entry, or nil when nothing has been logged.
func (l *Log) Read() ([]Entry, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	if err := gocsv.UnmarshalFile(f, &entries); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries, nil
}
