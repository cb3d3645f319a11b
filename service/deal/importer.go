package deal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Importer runs parsed rows through the duplicate gate, the validator and
// the storage gateway, producing one RowResult per row. Rows are
// independent units of work: a row's failure never blocks another row or
// rolls back an already persisted one, which is why there is no
// batch-level transaction here.
type Importer struct {
	store     DealStore
	validator *Validator
	logger    *slog.Logger
}

// NewImporter creates an Importer. A nil logger discards log output.
func NewImporter(store DealStore, validator *Validator, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Importer{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// WithLogger returns a copy of the importer that logs through the given
// logger. Used to attach per-request attrs such as the import ID without
// mutating the shared importer.
func (im *Importer) WithLogger(logger *slog.Logger) *Importer {
	if logger == nil {
		return im
	}
	clone := *im
	clone.logger = logger
	return &clone
}

// ImportRows processes rows in file order and returns one result per row,
// in the same order. The in-batch duplicate set lives and dies with this
// call. Sequential processing keeps the first-occurrence-wins tie-break
// for duplicated identifiers without an extra serialization point.
func (im *Importer) ImportRows(ctx context.Context, rows []Row) []RowResult {
	tracker := NewTracker()
	results := make([]RowResult, 0, len(rows))

	for _, row := range rows {
		results = append(results, im.importRow(ctx, row, tracker))
	}

	return results
}

// importRow walks one row through the pipeline. The first terminal state
// wins: duplicate-in-batch, invalid, duplicate-in-storage, persistence
// failure, or success.
func (im *Importer) importRow(ctx context.Context, row Row, tracker *Tracker) RowResult {
	logger := im.logger.With("deal_id", row.DealID, "row", row.Line)

	if !tracker.Observe(row.DealID) {
		logger.Warn("duplicate in file")
		return duplicateResult(row.DealID, "Duplicate dealId in file")
	}

	d, err := im.validator.Validate(row)
	if err != nil {
		logger.Error("validation failure", "error", err)
		return failureResult(row.DealID, err.Error())
	}

	exists, err := im.store.DealExists(ctx, d.DealID)
	if err != nil {
		logger.Error("existence check failed", "error", err)
		return failureResult(row.DealID, fmt.Sprintf("Database error: %v", err))
	}
	if exists {
		logger.Warn("duplicate in db")
		return duplicateResult(row.DealID, "Deal already exists in DB")
	}

	if err := im.store.CreateDeal(ctx, d); err != nil {
		// The unique constraint is the real backstop: a concurrent import
		// can pass the existence check above and lose the insert race.
		if errors.Is(err, ErrDealExists) {
			logger.Warn("duplicate in db", "race", true)
			return duplicateResult(row.DealID, "Deal already exists in DB")
		}
		logger.Error("persistence error", "error", err)
		return failureResult(row.DealID, fmt.Sprintf("Database error: %v", err))
	}

	logger.Info("imported successfully")
	return successResult(row.DealID)
}
