package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
	"github.com/tally-dev/tally/internal/store/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := New(t.TempDir())
		require.NoError(t, err)
		return s
	})
}

func TestLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, s.SaveEmployee(ctx, "acme", model.Employee{ID: "e1", FirstName: "Ada", PayType: model.PayTypeHourly, Active: true}))
	require.NoError(t, s.SaveAccounts(ctx, "acme", []model.Account{{Number: 1010, Name: "Checking", Classification: model.ClassCurrentAsset}}))

	data, err := os.ReadFile(filepath.Join(dir, "acme", "employees.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,first_name,last_name,email,pay_type,pay_rate"))
	assert.Contains(t, lines[1], "e1,Ada,,,Hourly,0")

	_, err = os.Stat(filepath.Join(dir, "acme", "chart-of-accounts.csv"))
	assert.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "acme", ".*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "no temp files left behind")
}

func TestInvalidCompanyID(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"", "..", "a/b"} {
		_, err := s.ListEmployees(context.Background(), id)
		assert.Error(t, err, "company %q", id)
	}
}

func TestCorruptFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "acme"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acme", "employees.csv"),
		[]byte("id,first_name,pay_type,pay_rate\ne1,Ada,Hourly,lots\n"), 0o644))

	_, err = s.ListEmployees(context.Background(), "acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pay_rate")
}

func TestSaveTransactions_EmptyFileGetsHeader(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "acme"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acme", "transactions.csv"), nil, 0o644))

	txn := model.Transaction{
		ID:            "2025-01-001",
		Date:          time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		AccountNumber: 1010,
		Amount:        decimal.RequireFromString("-25.00"),
		Description:   "Office supplies",
	}
	require.NoError(t, s.SaveTransactions(ctx, "acme", []model.Transaction{txn}))

	got, err := s.ListTransactions(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2025-01-001", got[0].ID)
	assert.True(t, got[0].Amount.Equal(txn.Amount))

	require.NoError(t, s.SaveTransactions(ctx, "acme", []model.Transaction{{
		ID: "2025-01-002", Date: txn.Date, AccountNumber: 6090, Amount: decimal.RequireFromString("25.00"),
	}}))
	data, err := os.ReadFile(filepath.Join(dir, "acme", "transactions.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), ledger.Header), "header written once")
}
