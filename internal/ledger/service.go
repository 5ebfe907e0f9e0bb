// Package ledger records categorized transactions against the chart of accounts.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tally-dev/tally/internal/accounts"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/log"
	"github.com/tally-dev/tally/internal/model"
)

// Store is the persistence the ledger needs.
type Store interface {
	ListTransactions(ctx context.Context, companyID string) ([]model.Transaction, error)
	ListAccounts(ctx context.Context, companyID string) ([]model.Account, error)
	SaveTransactions(ctx context.Context, companyID string, txns []model.Transaction) error
}

// Service provides business logic for ledger transactions.
type Service struct {
	store Store
	log   *log.Logger
}

// NewService creates a ledger Service.
func NewService(st Store, logger *log.Logger) *Service {
	return &Service{store: st, log: logger.WithComponent(log.ComponentLedger)}
}

// Add normalizes, validates and appends txns for a company, assigning
// sequential IDs per month. Nothing is written if any transaction is invalid.
func (s *Service) Add(ctx context.Context, companyID string, txns []model.Transaction) ([]model.Transaction, error) {
	if len(txns) == 0 {
		return nil, nil
	}

	chart, err := s.store.ListAccounts(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("loading chart of accounts: %w", err)
	}
	existing, err := s.store.ListTransactions(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	ids := make([]string, len(existing))
	for i, t := range existing {
		ids[i] = t.ID
	}
	seq := id.NewSequencer(ids)

	out := make([]model.Transaction, len(txns))
	for i, t := range txns {
		t.CompanyID = companyID
		t.Date = model.Day(t.Date)
		out[i] = t
	}

	if err := ValidateTransactions(out, accounts.NewService(chart)); err != nil {
		s.log.Warn("rejected transactions", log.FieldCompany, companyID, log.FieldError, err)
		return nil, err
	}

	for i := range out {
		out[i].ID = seq.Next(out[i].Date)
	}

	if err := s.store.SaveTransactions(ctx, companyID, out); err != nil {
		return nil, fmt.Errorf("saving transactions: %w", err)
	}
	s.log.Info("added transactions", log.FieldCompany, companyID, log.FieldCount, len(out))
	return out, nil
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	From    time.Time
	To      time.Time
	Account int
}

func (f Filter) match(t model.Transaction) bool {
	if !f.From.IsZero() && t.Date.Before(model.Day(f.From)) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(model.Day(f.To)) {
		return false
	}
	if f.Account != 0 && t.AccountNumber != f.Account {
		return false
	}
	return true
}

// List returns a company's transactions ordered by date then ID.
func (s *Service) List(ctx context.Context, companyID string, f Filter) ([]model.Transaction, error) {
	all, err := s.store.ListTransactions(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}
	var out []model.Transaction
	for _, t := range all {
		if f.match(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
