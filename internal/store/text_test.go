package store

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "", FormatDay(time.Time{}))
	assert.Equal(t, "2025-01-31", FormatDay(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", FormatStamp(time.Time{}))

	est := time.FixedZone("EST", -5*3600)
	assert.Equal(t, "2025-01-31T14:15:00Z", FormatStamp(time.Date(2025, 1, 31, 9, 15, 0, 0, est)))
}

func TestDecoder(t *testing.T) {
	var d Decoder
	assert.True(t, d.Decimal("rate", "").IsZero())
	assert.True(t, d.Decimal("rate", "1923.076923076923").Equal(decimal.RequireFromString("1923.076923076923")))
	assert.True(t, d.Day("date", "").IsZero())
	assert.Equal(t, time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), d.Day("date", "2025-02-03"))
	assert.True(t, d.Stamp("created_at", "2025-01-31T09:15:00Z").Equal(time.Date(2025, 1, 31, 9, 15, 0, 0, time.UTC)))
	assert.NoError(t, d.Err())

	d.Decimal("gross", "12,50")
	d.Day("date", "31/01/2025")
	assert.ErrorContains(t, d.Err(), "gross", "first error wins")
}
