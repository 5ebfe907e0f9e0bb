package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatTransactionID returns a transaction ID like "2025-01-001".
func FormatTransactionID(year, month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, month, seq)
}

// ParseTransactionID parses "2025-01-001" into year, month, seq.
func ParseTransactionID(id string) (year, month, seq int, err error) {
	parts := strings.SplitN(id, "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid transaction ID format: %q", id)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in transaction ID %q: %w", id, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid month in transaction ID %q: %w", id, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("month %d out of range in transaction ID %q", month, id)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in transaction ID %q: %w", id, err)
	}
	if seq < 1 {
		return 0, 0, 0, fmt.Errorf("sequence %d out of range in transaction ID %q", seq, id)
	}

	return year, month, seq, nil
}

// Sequencer hands out transaction IDs month by month. Seed it with the IDs
// already in the ledger; unparseable IDs are ignored.
type Sequencer struct {
	last map[string]int
}

// NewSequencer creates a Sequencer that continues after the given IDs.
func NewSequencer(existing []string) *Sequencer {
	s := &Sequencer{last: make(map[string]int)}
	for _, id := range existing {
		year, month, seq, err := ParseTransactionID(id)
		if err != nil {
			continue
		}
		key := monthKey(year, month)
		if seq > s.last[key] {
			s.last[key] = seq
		}
	}
	return s
}

// Next returns the next ID for the month containing date.
func (s *Sequencer) Next(date time.Time) string {
	year, month := date.Year(), int(date.Month())
	key := monthKey(year, month)
	s.last[key]++
	return FormatTransactionID(year, month, s.last[key])
}

func monthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
