package deal

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Pre-compiled ISO 4217 shape check (three uppercase Latin letters).
var isoCurrencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidationError describes a single field-level violation on one row.
// The message is user-facing and ends up verbatim in the row result.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// Validator checks candidate rows field by field. It performs no I/O and
// holds no mutable state, so a single instance is safe for concurrent use
// across rows.
type Validator struct {
	now func() time.Time
}

// NewValidator returns a Validator using the real wall clock.
func NewValidator() *Validator {
	return NewValidatorWithClock(time.Now)
}

// NewValidatorWithClock returns a Validator with an injected clock. The
// clock only feeds the future-timestamp rule.
func NewValidatorWithClock(now func() time.Time) *Validator {
	return &Validator{now: now}
}

// Validate runs the field checks in fixed order and fails fast on the
// first violation. A *Deal is only constructed once every check has
// passed; it is never mutated afterwards.
func (v *Validator) Validate(row Row) (*Deal, error) {
	if row.DealID == "" {
		return nil, validationErrorf("DealId is required")
	}

	if err := validateISOCurrency(row.FromCurrency, "fromCurrency"); err != nil {
		return nil, err
	}
	if err := validateISOCurrency(row.ToCurrency, "toCurrency"); err != nil {
		return nil, err
	}

	ts, err := v.validateTimestamp(row.Timestamp)
	if err != nil {
		return nil, err
	}

	amount, err := validateAmount(row.Amount)
	if err != nil {
		return nil, err
	}

	return &Deal{
		DealID:       row.DealID,
		FromCurrency: row.FromCurrency,
		ToCurrency:   row.ToCurrency,
		Timestamp:    ts,
		Amount:       amount,
	}, nil
}

func validateISOCurrency(currency, field string) error {
	if !isoCurrencyRegex.MatchString(currency) {
		return validationErrorf("%s must be a 3-letter ISO code", field)
	}
	return nil
}

func (v *Validator) validateTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, validationErrorf("Timestamp is required")
	}

	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, validationErrorf("Invalid timestamp format: %s", raw)
	}

	if ts.After(v.now()) {
		return time.Time{}, validationErrorf("Timestamp cannot be in the future: %s", raw)
	}

	return ts.UTC(), nil
}

func validateAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, validationErrorf("Amount is required")
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, validationErrorf("Amount is not a valid number: %s", raw)
	}

	if amount.Sign() <= 0 {
		return decimal.Zero, validationErrorf("Amount must be positive")
	}

	return amount, nil
}
