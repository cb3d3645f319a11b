package deal

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedNow keeps the future-timestamp rule deterministic.
var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testValidator() *Validator {
	return NewValidatorWithClock(func() time.Time { return fixedNow })
}

func validRow() Row {
	return Row{
		Line:         2,
		DealID:       "D1",
		FromCurrency: "USD",
		ToCurrency:   "EUR",
		Timestamp:    "2025-01-01T10:00:00Z",
		Amount:       "100",
	}
}

func TestValidate_ValidRow(t *testing.T) {
	d, err := testValidator().Validate(validRow())
	require.NoError(t, err)
	require.NotNil(t, d)

	assert.Equal(t, "D1", d.DealID)
	assert.Equal(t, "USD", d.FromCurrency)
	assert.Equal(t, "EUR", d.ToCurrency)
	assert.Equal(t, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), d.Timestamp)
	assert.True(t, d.Amount.Equal(decimal.RequireFromString("100")))
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Row)
		wantMsg string
	}{
		{
			name:    "blank dealId",
			mutate:  func(r *Row) { r.DealID = "" },
			wantMsg: "DealId is required",
		},
		{
			name:    "blank fromCurrency",
			mutate:  func(r *Row) { r.FromCurrency = "" },
			wantMsg: "fromCurrency must be a 3-letter ISO code",
		},
		{
			name:    "lowercase fromCurrency",
			mutate:  func(r *Row) { r.FromCurrency = "usd" },
			wantMsg: "fromCurrency must be a 3-letter ISO code",
		},
		{
			name:    "too-long fromCurrency",
			mutate:  func(r *Row) { r.FromCurrency = "USDT" },
			wantMsg: "fromCurrency must be a 3-letter ISO code",
		},
		{
			name:    "numeric toCurrency",
			mutate:  func(r *Row) { r.ToCurrency = "EU1" },
			wantMsg: "toCurrency must be a 3-letter ISO code",
		},
		{
			name:    "blank timestamp",
			mutate:  func(r *Row) { r.Timestamp = "" },
			wantMsg: "Timestamp is required",
		},
		{
			name:    "unparsable timestamp",
			mutate:  func(r *Row) { r.Timestamp = "01/02/2025" },
			wantMsg: "Invalid timestamp format: 01/02/2025",
		},
		{
			name:    "future timestamp",
			mutate:  func(r *Row) { r.Timestamp = "2999-01-01T00:00:00Z" },
			wantMsg: "Timestamp cannot be in the future: 2999-01-01T00:00:00Z",
		},
		{
			name:    "blank amount",
			mutate:  func(r *Row) { r.Amount = "" },
			wantMsg: "Amount is required",
		},
		{
			name:    "non-numeric amount",
			mutate:  func(r *Row) { r.Amount = "abc" },
			wantMsg: "Amount is not a valid number: abc",
		},
		{
			name:    "negative amount",
			mutate:  func(r *Row) { r.Amount = "-5" },
			wantMsg: "Amount must be positive",
		},
		{
			name:    "zero amount",
			mutate:  func(r *Row) { r.Amount = "0" },
			wantMsg: "Amount must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			tt.mutate(&row)

			d, err := testValidator().Validate(row)
			require.Error(t, err)
			assert.Nil(t, d)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestValidate_FailsFastOnFirstViolation(t *testing.T) {
	// Several fields are broken; the currency check comes before the
	// timestamp and amount checks.
	row := validRow()
	row.FromCurrency = "x"
	row.Timestamp = "nope"
	row.Amount = "nope"

	_, err := testValidator().Validate(row)
	require.Error(t, err)
	assert.Equal(t, "fromCurrency must be a 3-letter ISO code", err.Error())
}

func TestValidate_TimestampExactlyNowAccepted(t *testing.T) {
	row := validRow()
	row.Timestamp = fixedNow.Format(time.RFC3339)

	d, err := testValidator().Validate(row)
	require.NoError(t, err)
	assert.Equal(t, fixedNow, d.Timestamp)
}

func TestValidate_TimestampWithOffset(t *testing.T) {
	row := validRow()
	row.Timestamp = "2025-01-01T10:00:00+02:00"

	d, err := testValidator().Validate(row)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), d.Timestamp)
}

func TestValidate_FractionalAmountPreserved(t *testing.T) {
	row := validRow()
	row.Amount = "0.009"

	d, err := testValidator().Validate(row)
	require.NoError(t, err)
	assert.True(t, d.Amount.Equal(decimal.RequireFromString("0.009")))
}

func TestValidate_UnknownSentinelIsValidDealID(t *testing.T) {
	row := validRow()
	row.DealID = UnknownDealID

	d, err := testValidator().Validate(row)
	require.NoError(t, err)
	assert.Equal(t, UnknownDealID, d.DealID)
}
