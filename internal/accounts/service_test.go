package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tally-dev/tally/internal/model"
)

func TestDefaultChart(t *testing.T) {
	for _, entityType := range []string{"retail", "service_business", "unknown_type"} {
		chart := DefaultChart(entityType)
		assert.NotEmpty(t, chart, entityType)

		seen := make(map[int]bool)
		classes := make(map[model.Classification]bool)
		for _, acct := range chart {
			assert.False(t, seen[acct.Number], "%s: duplicate account %d", entityType, acct.Number)
			seen[acct.Number] = true
			classes[acct.Classification] = true
			assert.NotEmpty(t, acct.Name, "account %d missing name", acct.Number)
			assert.True(t, acct.Classification.Valid(), "account %d", acct.Number)
		}
		for _, c := range model.Classifications {
			assert.True(t, classes[c], "%s: chart has no %s account", entityType, c)
		}
		for _, n := range []int{OperatingChecking, PayrollLiabilities, SalesRevenue, WagesExpense, ContractLabor, UncategorizedExpense} {
			assert.True(t, seen[n], "%s: missing well-known account %d", entityType, n)
		}
	}
}

func TestGetExists(t *testing.T) {
	svc := NewService(DefaultChart("retail"))

	acct, ok := svc.Get(1010)
	assert.True(t, ok)
	assert.Equal(t, "Operating Checking", acct.Name)

	_, ok = svc.Get(9999)
	assert.False(t, ok)

	assert.True(t, svc.Exists(1010))
	assert.False(t, svc.Exists(9999))
}

func TestDisplayName(t *testing.T) {
	svc := NewService(DefaultChart("retail"))
	assert.Equal(t, "Wages", svc.DisplayName(WagesExpense))
	assert.Equal(t, "9999", svc.DisplayName(9999))
}

func TestByClassification(t *testing.T) {
	svc := NewService(DefaultChart("retail"))

	fixed := svc.ByClassification(model.ClassFixedAsset)
	assert.Len(t, fixed, 2, "expected equipment + accumulated depreciation")
	for _, a := range fixed {
		assert.Equal(t, model.ClassFixedAsset, a.Classification)
	}

	assert.Len(t, svc.ByClassification(model.ClassCostOfSales), 2)
}

func TestAllSorted(t *testing.T) {
	chart := DefaultChart("retail")
	all := NewService(chart).All()
	assert.Len(t, all, len(chart))
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Number, all[i].Number)
	}
}
