package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTransactionID(t *testing.T) {
	tests := []struct {
		year, month, seq int
		want             string
	}{
		{2025, 1, 1, "2025-01-001"},
		{2025, 12, 99, "2025-12-099"},
		{2025, 1, 123, "2025-01-123"},
	}
	for _, tt := range tests {
		got := FormatTransactionID(tt.year, tt.month, tt.seq)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseTransactionID(t *testing.T) {
	tests := []struct {
		input               string
		wantYear, wantMonth int
		wantSeq             int
	}{
		{"2025-01-001", 2025, 1, 1},
		{"2025-12-099", 2025, 12, 99},
		{"2024-06-1000", 2024, 6, 1000},
	}
	for _, tt := range tests {
		year, month, seq, err := ParseTransactionID(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.wantYear, year)
		assert.Equal(t, tt.wantMonth, month)
		assert.Equal(t, tt.wantSeq, seq)
	}
}

func TestParseTransactionID_Errors(t *testing.T) {
	badInputs := []string{
		"",
		"not-valid",
		"2025-01",
		"xxxx-01-001",
		"2025-13-001",
		"2025-01-000",
		"2025-01-abc",
	}
	for _, input := range badInputs {
		_, _, _, err := ParseTransactionID(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}

func TestSequencer(t *testing.T) {
	s := NewSequencer([]string{"2025-01-001", "2025-01-007", "2025-02-002", "garbage"})

	jan := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2025-01-008", s.Next(jan))
	assert.Equal(t, "2025-01-009", s.Next(jan))
	assert.Equal(t, "2025-02-003", s.Next(feb))
	assert.Equal(t, "2025-03-001", s.Next(mar))
}

func TestSequencer_Empty(t *testing.T) {
	s := NewSequencer(nil)
	assert.Equal(t, "2026-07-001", s.Next(time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)))
}
