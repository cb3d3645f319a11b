package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"fxwarehouse/service/db"
	"fxwarehouse/service/deal"
	"fxwarehouse/service/metrics"
)

// DealReader is the read side of the store used by the projection
// endpoints.
type DealReader interface {
	ListDeals(ctx context.Context) ([]*db.Deal, error)
	GetDealByDealID(ctx context.Context, dealID string) (*db.Deal, error)
}

// dealResponse is the wire projection of a stored deal. The timestamp is
// RFC 3339 text and the amount a fixed 2-decimal string, matching the
// persisted scale.
type dealResponse struct {
	DealID       string `json:"dealId"`
	FromCurrency string `json:"fromCurrency"`
	ToCurrency   string `json:"toCurrency"`
	Timestamp    string `json:"timestamp"`
	Amount       string `json:"amount"`
}

func dealToResponse(d *db.Deal) dealResponse {
	return dealResponse{
		DealID:       d.DealID,
		FromCurrency: d.FromCurrency,
		ToCurrency:   d.ToCurrency,
		Timestamp:    d.Timestamp.UTC().Format(time.RFC3339),
		Amount:       d.Amount.StringFixed(2),
	}
}

// handleImportDeals returns a handler for CSV batch uploads.
// POST /api/v1/deals/import, multipart form with a "file" part.
//
// Upload-shape problems (missing file, wrong extension) are client errors
// rejected before any parsing. A stream that cannot be read at all is a
// call-level error. Row-level failures are never HTTP errors: the response
// is always 200 with one outcome per accepted row.
func handleImportDeals(importer *deal.Importer, maxUploadBytes int64, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		file, header, err := r.FormFile("file")
		if err != nil {
			logger.Debug("missing or unreadable file part", "error", err)
			recordFile(m, "rejected")
			writeError(w, "CSV file is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size == 0 {
			recordFile(m, "rejected")
			writeError(w, "CSV file is required", http.StatusBadRequest)
			return
		}

		if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
			logger.Debug("rejected upload with non-CSV filename", "filename", header.Filename)
			recordFile(m, "rejected")
			writeError(w, "Only CSV files are allowed", http.StatusBadRequest)
			return
		}

		importID := uuid.New().String()
		importLogger := logger.With("import_id", importID, "filename", header.Filename)

		start := time.Now()
		rows, err := deal.Parse(file)
		if err != nil {
			importLogger.Error("CSV parse failure", "error", err)
			recordFile(m, "parse_error")
			writeError(w, err.Error(), http.StatusInternalServerError)
			return
		}

		results := importer.WithLogger(importLogger).ImportRows(r.Context(), rows)

		if m != nil {
			for _, res := range results {
				m.RecordImportRow(string(res.Status))
			}
			m.RecordImportFile("accepted", len(rows), time.Since(start).Seconds())
		}

		importLogger.Info("import complete",
			"rows", len(rows),
			"duration", time.Since(start),
		)

		writeJSON(w, map[string]interface{}{
			"import_id": importID,
			"results":   results,
		}, http.StatusOK)
	})
}

// handleListDeals returns a handler that lists all stored deals.
// GET /api/v1/deals
func handleListDeals(store DealReader, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deals, err := store.ListDeals(r.Context())
		if err != nil {
			logger.Error("failed to list deals", "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		resp := make([]dealResponse, len(deals))
		for i, d := range deals {
			resp[i] = dealToResponse(d)
		}

		writeJSON(w, resp, http.StatusOK)
	})
}

// handleGetDeal returns a handler that retrieves one deal by identifier.
// GET /api/v1/deals/{dealId}
func handleGetDeal(store DealReader, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dealID := r.PathValue("dealId")

		d, err := store.GetDealByDealID(r.Context(), dealID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				writeError(w, "deal not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to get deal", "deal_id", dealID, "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, dealToResponse(d), http.StatusOK)
	})
}

// handleHealth returns the static health indicator.
// GET /health
func handleHealth() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "UP"}, http.StatusOK)
	})
}

func recordFile(m *metrics.Metrics, result string) {
	if m != nil {
		m.RecordImportFile(result, -1, -1)
	}
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
