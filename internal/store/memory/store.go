// Package memory is an in-process Store used by tests and dry runs.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

type company struct {
	employees    []model.Employee
	contractors  []model.Contractor
	runs         []model.PayrollRun
	transactions []model.Transaction
	accounts     []model.Account
	tasks        []model.Task
	documents    []model.Document
}

// Store keeps every company's records in memory. Reads return copies.
type Store struct {
	mu        sync.Mutex
	companies map[string]*company
}

// New creates an empty Store.
func New() *Store {
	return &Store{companies: make(map[string]*company)}
}

func (s *Store) company(id string) *company {
	c, ok := s.companies[id]
	if !ok {
		c = &company{}
		s.companies[id] = c
	}
	return c
}

func (s *Store) ListEmployees(_ context.Context, companyID string) ([]model.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.company(companyID).employees), nil
}

func (s *Store) ListContractors(_ context.Context, companyID string) ([]model.Contractor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.company(companyID).contractors), nil
}

func (s *Store) ListPayrollRuns(_ context.Context, companyID string) ([]model.PayrollRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	runs := slices.Clone(s.company(companyID).runs)
	for i := range runs {
		if runs[i].Taxes != nil {
			t := *runs[i].Taxes
			runs[i].Taxes = &t
		}
	}
	return runs, nil
}

func (s *Store) ListTransactions(_ context.Context, companyID string) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.company(companyID).transactions), nil
}

func (s *Store) ListAccounts(_ context.Context, companyID string) ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.company(companyID).accounts), nil
}

func (s *Store) ListTasks(_ context.Context, companyID string) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := slices.Clone(s.company(companyID).tasks)
	for i := range tasks {
		tasks[i].DocumentIDs = slices.Clone(tasks[i].DocumentIDs)
	}
	return tasks, nil
}

func (s *Store) ListDocuments(_ context.Context, companyID string) ([]model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.company(companyID).documents), nil
}

func (s *Store) SavePayrollRun(_ context.Context, companyID string, run model.PayrollRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.company(companyID)
	for _, r := range c.runs {
		if r.ID == run.ID {
			return store.ErrDuplicate
		}
	}
	if run.Taxes != nil {
		t := *run.Taxes
		run.Taxes = &t
	}
	c.runs = append(c.runs, run)
	return nil
}

func (s *Store) SaveEmployee(_ context.Context, companyID string, e model.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.company(companyID)
	for i := range c.employees {
		if c.employees[i].ID == e.ID {
			c.employees[i] = e
			return nil
		}
	}
	c.employees = append(c.employees, e)
	return nil
}

func (s *Store) SaveContractor(_ context.Context, companyID string, con model.Contractor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.company(companyID)
	for i := range c.contractors {
		if c.contractors[i].ID == con.ID {
			c.contractors[i] = con
			return nil
		}
	}
	c.contractors = append(c.contractors, con)
	return nil
}

func (s *Store) SaveTransactions(_ context.Context, companyID string, txns []model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.company(companyID)
	c.transactions = append(c.transactions, txns...)
	return nil
}

func (s *Store) SaveAccounts(_ context.Context, companyID string, accounts []model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.company(companyID).accounts = slices.Clone(accounts)
	return nil
}

func (s *Store) SaveWork(_ context.Context, companyID string, tasks []model.Task, docs []model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.company(companyID)
	c.tasks = slices.Clone(tasks)
	for i := range c.tasks {
		c.tasks[i].DocumentIDs = slices.Clone(c.tasks[i].DocumentIDs)
	}
	c.documents = slices.Clone(docs)
	return nil
}

func (s *Store) Close() error { return nil }

var _ store.Store = (*Store)(nil)
