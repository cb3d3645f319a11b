package deal

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// UnknownDealID is substituted by the parser when a row has a blank or
// missing identifier column. It is a legal identifier value, so two such
// rows in one file collide as duplicates downstream rather than failing
// at parse time.
const UnknownDealID = "UNKNOWN"

// ErrDealExists is returned by a DealStore when an insert hits the unique
// constraint on deal_id. The importer treats it as a storage duplicate,
// which is the backstop for concurrent imports racing past the existence
// check.
var ErrDealExists = errors.New("deal already exists")

// Deal is a fully validated FX deal ready for persistence. It is only
// constructed by the validator after every field check has passed.
type Deal struct {
	DealID       string
	FromCurrency string
	ToCurrency   string
	Timestamp    time.Time
	Amount       decimal.Decimal
}

// Row is one positional transcription of a CSV data row. Fields are raw,
// trimmed strings with no validity guarantee; Line is the 1-based physical
// line in the source file (the header is line 1).
type Row struct {
	Line         int
	DealID       string
	FromCurrency string
	ToCurrency   string
	Timestamp    string
	Amount       string
}

// Status classifies the terminal outcome of one imported row.
type Status string

const (
	StatusSuccess   Status = "SUCCESS"
	StatusFailure   Status = "FAILURE"
	StatusDuplicate Status = "DUPLICATE"
)

// RowResult is the per-row outcome returned to the caller. Results are
// created exactly once per input row, in input order, and never persisted.
type RowResult struct {
	DealID  string `json:"dealId"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

func successResult(dealID string) RowResult {
	return RowResult{DealID: dealID, Status: StatusSuccess}
}

func failureResult(dealID, msg string) RowResult {
	return RowResult{DealID: dealID, Status: StatusFailure, Message: msg}
}

func duplicateResult(dealID, msg string) RowResult {
	return RowResult{DealID: dealID, Status: StatusDuplicate, Message: msg}
}

// DealStore is the storage gateway the importer persists through. The
// database enforces uniqueness on the deal identifier; CreateDeal must
// surface a constraint violation as ErrDealExists.
type DealStore interface {
	DealExists(ctx context.Context, dealID string) (bool, error)
	CreateDeal(ctx context.Context, d *Deal) error
}
