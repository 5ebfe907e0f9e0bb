package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
)

func TestRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{Number: 1010, Name: "Operating Checking", Classification: model.ClassCurrentAsset, Description: "Primary checking account"},
		{Number: 1510, Name: "Accumulated Depreciation", Classification: model.ClassFixedAsset, Contra: true},
	}

	var buf bytes.Buffer
	err := WriteAccounts(&buf, accounts)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, accounts, got)
}

func TestAllClassifications(t *testing.T) {
	for _, c := range model.Classifications {
		acct := model.Account{Number: 1000, Name: "Test", Classification: c}

		var buf bytes.Buffer
		err := WriteAccounts(&buf, []model.Account{acct})
		require.NoError(t, err)

		got, err := ReadAccounts(&buf)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, c, got[0].Classification, "classification %q should survive round-trip", c)
	}
}

func TestReadAccounts_Errors(t *testing.T) {
	header := strings.Join(Header, ",") + "\n"
	tests := []struct {
		name string
		body string
	}{
		{"bad number", "abc,Cash,current-asset,,\n"},
		{"unknown classification", "1010,Cash,asset,,\n"},
		{"bad contra", "1510,Acc Dep,fixed-asset,maybe,\n"},
		{"wrong field count", "1010,Cash\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAccounts(strings.NewReader(header + tt.body))
			assert.Error(t, err)
		})
	}
}

func TestReadAccounts_Empty(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDefaultChartRoundTrip(t *testing.T) {
	chart := DefaultChart("retail")

	var buf bytes.Buffer
	err := WriteAccounts(&buf, chart)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, chart, got)
}
