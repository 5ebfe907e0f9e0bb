// Package filestore keeps each company's books as CSV files in a directory:
//
//	<root>/<company>/chart-of-accounts.csv
//	<root>/<company>/transactions.csv
//	<root>/<company>/employees.csv
//	...
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"

	"github.com/tally-dev/tally/internal/accounts"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

const (
	accountsFile     = "chart-of-accounts.csv"
	transactionsFile = "transactions.csv"
	employeesFile    = "employees.csv"
	contractorsFile  = "contractors.csv"
	payrollRunsFile  = "payroll-runs.csv"
	tasksFile        = "tasks.csv"
	documentsFile    = "documents.csv"
)

// Store reads and writes CSV files under a root directory.
type Store struct {
	root string
	mu   sync.Mutex
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &Store{root: dir}, nil
}

func (s *Store) path(companyID, name string) (string, error) {
	if companyID == "" || companyID != filepath.Base(companyID) || companyID == "." || companyID == ".." {
		return "", fmt.Errorf("invalid company ID %q", companyID)
	}
	return filepath.Join(s.root, companyID, name), nil
}

// readRows decodes a gocsv file; a missing or empty file yields no rows.
func readRows[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var rows []T
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

func writeRows[T any](path string, rows []T) error {
	return writeFile(path, func(w io.Writer) error {
		if rows == nil {
			rows = []T{}
		}
		return gocsv.Marshal(rows, w)
	})
}

// writeFile replaces path atomically through a temp file in the same directory.
func writeFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func (s *Store) ListEmployees(_ context.Context, companyID string) ([]model.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.employees(companyID)
}

func (s *Store) employees(companyID string) ([]model.Employee, error) {
	path, err := s.path(companyID, employeesFile)
	if err != nil {
		return nil, err
	}
	rows, err := readRows[employeeRow](path)
	if err != nil {
		return nil, err
	}
	out := make([]model.Employee, 0, len(rows))
	for _, r := range rows {
		e, err := r.model(companyID)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) ListContractors(_ context.Context, companyID string) ([]model.Contractor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contractors(companyID)
}

func (s *Store) contractors(companyID string) ([]model.Contractor, error) {
	path, err := s.path(companyID, contractorsFile)
	if err != nil {
		return nil, err
	}
	rows, err := readRows[contractorRow](path)
	if err != nil {
		return nil, err
	}
	out := make([]model.Contractor, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model(companyID))
	}
	return out, nil
}

func (s *Store) ListPayrollRuns(_ context.Context, companyID string) ([]model.PayrollRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := s.path(companyID, payrollRunsFile)
	if err != nil {
		return nil, err
	}
	rows, err := readRows[payrollRunRow](path)
	if err != nil {
		return nil, err
	}
	out := make([]model.PayrollRun, 0, len(rows))
	for _, r := range rows {
		run, err := r.model(companyID)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}

func (s *Store) ListTransactions(_ context.Context, companyID string) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := s.path(companyID, transactionsFile)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	txns, err := ledger.ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	for i := range txns {
		txns[i].CompanyID = companyID
	}
	return txns, nil
}

func (s *Store) ListAccounts(_ context.Context, companyID string) ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := s.path(companyID, accountsFile)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	accts, err := accounts.ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return accts, nil
}

func (s *Store) ListTasks(_ context.Context, companyID string) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := s.path(companyID, tasksFile)
	if err != nil {
		return nil, err
	}
	rows, err := readRows[taskRow](path)
	if err != nil {
		return nil, err
	}
	out := make([]model.Task, 0, len(rows))
	for _, r := range rows {
		t, err := r.model(companyID)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) ListDocuments(_ context.Context, companyID string) ([]model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := s.path(companyID, documentsFile)
	if err != nil {
		return nil, err
	}
	rows, err := readRows[documentRow](path)
	if err != nil {
		return nil, err
	}
	out := make([]model.Document, 0, len(rows))
	for _, r := range rows {
		d, err := r.model(companyID)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *Store) SavePayrollRun(_ context.Context, companyID string, run model.PayrollRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := s.path(companyID, payrollRunsFile)
	if err != nil {
		return err
	}
	rows, err := readRows[payrollRunRow](path)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if r.ID == run.ID {
			return store.ErrDuplicate
		}
	}
	return writeRows(path, append(rows, toPayrollRunRow(run)))
}

func (s *Store) SaveEmployee(_ context.Context, companyID string, e model.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := s.path(companyID, employeesFile)
	if err != nil {
		return err
	}
	rows, err := readRows[employeeRow](path)
	if err != nil {
		return err
	}
	row := toEmployeeRow(e)
	for i := range rows {
		if rows[i].ID == e.ID {
			rows[i] = row
			return writeRows(path, rows)
		}
	}
	return writeRows(path, append(rows, row))
}

func (s *Store) SaveContractor(_ context.Context, companyID string, c model.Contractor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := s.path(companyID, contractorsFile)
	if err != nil {
		return err
	}
	rows, err := readRows[contractorRow](path)
	if err != nil {
		return err
	}
	row := toContractorRow(c)
	for i := range rows {
		if rows[i].ID == c.ID {
			rows[i] = row
			return writeRows(path, rows)
		}
	}
	return writeRows(path, append(rows, row))
}

// SaveTransactions appends to transactions.csv, writing the header when the file is empty.
func (s *Store) SaveTransactions(_ context.Context, companyID string, txns []model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := s.path(companyID, transactionsFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating company dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		if _, err := fmt.Fprintln(f, ledger.Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := ledger.AppendTransactions(f, txns); err != nil {
		return fmt.Errorf("appending transactions: %w", err)
	}
	return nil
}

func (s *Store) SaveAccounts(_ context.Context, companyID string, accts []model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := s.path(companyID, accountsFile)
	if err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		return accounts.WriteAccounts(w, accts)
	})
}

func (s *Store) SaveWork(_ context.Context, companyID string, tasks []model.Task, docs []model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	taskPath, err := s.path(companyID, tasksFile)
	if err != nil {
		return err
	}
	docPath, err := s.path(companyID, documentsFile)
	if err != nil {
		return err
	}

	taskRows := make([]taskRow, len(tasks))
	for i, t := range tasks {
		taskRows[i] = toTaskRow(t)
	}
	docRows := make([]documentRow, len(docs))
	for i, d := range docs {
		docRows[i] = toDocumentRow(d)
	}

	if err := writeRows(docPath, docRows); err != nil {
		return err
	}
	return writeRows(taskPath, taskRows)
}

func (s *Store) Close() error { return nil }

var _ store.Store = (*Store)(nil)
