package accounts

import (
	"sort"
	"strconv"

	"github.com/tally-dev/tally/internal/model"
)

// Service provides in-memory lookup over the chart of accounts.
type Service struct {
	accounts []model.Account
	byNumber map[int]model.Account
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	byNumber := make(map[int]model.Account, len(accounts))
	for _, a := range accounts {
		byNumber[a.Number] = a
	}
	return &Service{accounts: accounts, byNumber: byNumber}
}

// All returns all accounts sorted by number.
func (s *Service) All() []model.Account {
	out := make([]model.Account, len(s.accounts))
	copy(out, s.accounts)
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Get returns an account by number.
func (s *Service) Get(number int) (model.Account, bool) {
	a, ok := s.byNumber[number]
	return a, ok
}

// Exists reports whether an account number exists.
func (s *Service) Exists(number int) bool {
	_, ok := s.byNumber[number]
	return ok
}

// DisplayName returns the account name, or the raw number for unknown accounts.
func (s *Service) DisplayName(number int) string {
	if a, ok := s.byNumber[number]; ok {
		return a.DisplayName()
	}
	return strconv.Itoa(number)
}

// ByClassification returns all accounts of the given classification.
func (s *Service) ByClassification(c model.Classification) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Classification == c {
			result = append(result, a)
		}
	}
	return result
}
