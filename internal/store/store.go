// Package store defines the persistence collaborator the payroll and
// reporting code reads from. Every record is owned by one company.
package store

import (
	"context"
	"errors"

	"github.com/tally-dev/tally/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Reader lists the records of one company.
type Reader interface {
	ListEmployees(ctx context.Context, companyID string) ([]model.Employee, error)
	ListContractors(ctx context.Context, companyID string) ([]model.Contractor, error)
	ListPayrollRuns(ctx context.Context, companyID string) ([]model.PayrollRun, error)
	ListTransactions(ctx context.Context, companyID string) ([]model.Transaction, error)
	ListAccounts(ctx context.Context, companyID string) ([]model.Account, error)
}

// PayrollWriter stores payroll run snapshots. Runs are insert-only;
// saving an existing ID returns ErrDuplicate.
type PayrollWriter interface {
	SavePayrollRun(ctx context.Context, companyID string, run model.PayrollRun) error
}

// WorkStore persists the work board.
type WorkStore interface {
	ListTasks(ctx context.Context, companyID string) ([]model.Task, error)
	ListDocuments(ctx context.Context, companyID string) ([]model.Document, error)
	// SaveWork replaces the company's tasks and documents.
	SaveWork(ctx context.Context, companyID string, tasks []model.Task, docs []model.Document) error
}

// Store is the full persistence surface used by the CLI.
type Store interface {
	Reader
	PayrollWriter
	WorkStore

	// SaveEmployee inserts or replaces an employee by ID.
	SaveEmployee(ctx context.Context, companyID string, e model.Employee) error
	// SaveContractor inserts or replaces a contractor by ID.
	SaveContractor(ctx context.Context, companyID string, c model.Contractor) error
	// SaveTransactions appends transactions.
	SaveTransactions(ctx context.Context, companyID string, txns []model.Transaction) error
	// SaveAccounts replaces the chart of accounts.
	SaveAccounts(ctx context.Context, companyID string, accounts []model.Account) error

	Close() error
}

// FindEmployee returns the employee with id, or ErrNotFound.
func FindEmployee(ctx context.Context, r Reader, companyID, id string) (model.Employee, error) {
	emps, err := r.ListEmployees(ctx, companyID)
	if err != nil {
		return model.Employee{}, err
	}
	for _, e := range emps {
		if e.ID == id {
			return e, nil
		}
	}
	return model.Employee{}, ErrNotFound
}

// FindContractor returns the contractor with id, or ErrNotFound.
func FindContractor(ctx context.Context, r Reader, companyID, id string) (model.Contractor, error) {
	cons, err := r.ListContractors(ctx, companyID)
	if err != nil {
		return model.Contractor{}, err
	}
	for _, c := range cons {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Contractor{}, ErrNotFound
}

// FindPayrollRun returns the run with id, or ErrNotFound.
func FindPayrollRun(ctx context.Context, r Reader, companyID, id string) (model.PayrollRun, error) {
	runs, err := r.ListPayrollRuns(ctx, companyID)
	if err != nil {
		return model.PayrollRun{}, err
	}
	for _, run := range runs {
		if run.ID == id {
			return run, nil
		}
	}
	return model.PayrollRun{}, ErrNotFound
}
