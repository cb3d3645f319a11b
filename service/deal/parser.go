package deal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseError indicates the uploaded content could not be read at all.
// It aborts the whole import call; no partial row list is produced.
type ParseError struct {
	cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to read CSV: %v", e.cause)
}

func (e *ParseError) Unwrap() error { return e.cause }

// Parse reads a CSV stream into positional rows. The first record is a
// header and is discarded without validation; data rows are numbered from
// 2, counting physical lines. Column extraction is strictly positional
// (dealId, fromCurrency, toCurrency, timestamp, amount); missing trailing
// columns become empty strings and a blank identifier becomes
// UnknownDealID. No field validation happens here.
func Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	// Header. An empty stream yields zero rows rather than an error.
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &ParseError{cause: err}
	}

	var rows []Row
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{cause: err}
		}
		line++

		rows = append(rows, Row{
			Line:         line,
			DealID:       columnOrDefault(record, 0, UnknownDealID),
			FromCurrency: columnOrDefault(record, 1, ""),
			ToCurrency:   columnOrDefault(record, 2, ""),
			Timestamp:    columnOrDefault(record, 3, ""),
			Amount:       columnOrDefault(record, 4, ""),
		})
	}

	return rows, nil
}

func columnOrDefault(record []string, pos int, def string) string {
	if pos >= len(record) {
		return def
	}
	v := strings.TrimSpace(record[pos])
	if v == "" {
		return def
	}
	return v
}
