package deal

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_BasicFile(t *testing.T) {
	input := "dealId,fromCurrency,toCurrency,timestamp,amount\n" +
		"D1,USD,EUR,2025-01-01T10:00:00Z,100\n" +
		"D2,GBP,JPY,2025-02-01T09:30:00Z,250.50\n"

	rows, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, Row{
		Line:         2,
		DealID:       "D1",
		FromCurrency: "USD",
		ToCurrency:   "EUR",
		Timestamp:    "2025-01-01T10:00:00Z",
		Amount:       "100",
	}, rows[0])
	assert.Equal(t, 3, rows[1].Line)
	assert.Equal(t, "D2", rows[1].DealID)
}

func TestParse_HeaderIsDiscardedNotValidated(t *testing.T) {
	// The header can be arbitrary text; only the data rows matter.
	input := "this is not, a real, header\nD1,USD,EUR,2025-01-01T10:00:00Z,100\n"

	rows, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "D1", rows[0].DealID)
}

func TestParse_ShortRowsDefaultToEmpty(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Row
	}{
		{
			name: "only identifier",
			line: "D1",
			want: Row{Line: 2, DealID: "D1"},
		},
		{
			name: "identifier and one currency",
			line: "D1,USD",
			want: Row{Line: 2, DealID: "D1", FromCurrency: "USD"},
		},
		{
			name: "missing amount",
			line: "D1,USD,EUR,2025-01-01T10:00:00Z",
			want: Row{Line: 2, DealID: "D1", FromCurrency: "USD", ToCurrency: "EUR", Timestamp: "2025-01-01T10:00:00Z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Parse(strings.NewReader("header\n" + tt.line + "\n"))
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, tt.want, rows[0])
		})
	}
}

func TestParse_BlankDealIDBecomesUnknown(t *testing.T) {
	input := "header,a,b,c,d\n,USD,EUR,2025-01-01T10:00:00Z,100\n"

	rows, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, UnknownDealID, rows[0].DealID)
	assert.Equal(t, "USD", rows[0].FromCurrency)
}

func TestParse_FieldsAreTrimmed(t *testing.T) {
	input := "header\n D1 , USD , EUR , 2025-01-01T10:00:00Z , 100 \n"

	rows, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "D1", rows[0].DealID)
	assert.Equal(t, "USD", rows[0].FromCurrency)
	assert.Equal(t, "100", rows[0].Amount)
}

func TestParse_EmptyInput(t *testing.T) {
	rows, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParse_HeaderOnly(t *testing.T) {
	rows, err := Parse(strings.NewReader("dealId,fromCurrency,toCurrency,timestamp,amount\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("stream broke")
}

func TestParse_ReadErrorAbortsWithoutPartialRows(t *testing.T) {
	rows, err := Parse(failingReader{})
	require.Error(t, err)
	assert.Nil(t, rows)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "failed to read CSV:")
}

func TestParse_MalformedQuotingIsParseError(t *testing.T) {
	input := "header\n\"D1,USD,EUR\n"

	rows, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Nil(t, rows)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}
