package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"fxwarehouse/service/deal"
)

//go:embed schema.sql
var schemaSQL string

// uniqueViolation is the Postgres SQLSTATE for a unique constraint hit.
const uniqueViolation = "23505"

// ErrNotFound is returned when a lookup matches no deal.
var ErrNotFound = errors.New("deal not found")

// Store provides database operations for the service.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store with the given database connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Deal is the durable record for one imported FX deal. Rows are only ever
// created by a successful import and never mutated afterwards.
type Deal struct {
	ID           int64
	DealID       string
	FromCurrency string
	ToCurrency   string
	Timestamp    time.Time
	Amount       decimal.Decimal
	CreatedAt    time.Time
}

// EnsureSchema creates the deals table if it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// CreateDeal inserts a validated deal. The amount is stored at a fixed
// 2-decimal scale. A unique constraint hit on deal_id is mapped to
// deal.ErrDealExists so the importer can classify the row as a duplicate
// instead of a persistence failure.
func (s *Store) CreateDeal(ctx context.Context, d *deal.Deal) error {
	amount, err := numericFromDecimal(d.Amount)
	if err != nil {
		return fmt.Errorf("failed to encode amount: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO deals (deal_id, from_currency, to_currency, deal_timestamp, amount)
		 VALUES ($1, $2, $3, $4, $5)`,
		d.DealID,
		d.FromCurrency,
		d.ToCurrency,
		pgtype.Timestamptz{Time: d.Timestamp, Valid: true},
		amount,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return deal.ErrDealExists
		}
		return err
	}

	return nil
}

// DealExists checks whether a deal with the given identifier is already
// stored. It is a best-effort pre-check; the unique constraint remains
// the authority under concurrent inserts.
func (s *Store) DealExists(ctx context.Context, dealID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM deals WHERE deal_id = $1)`,
		dealID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// GetDealByDealID retrieves a single deal by its business identifier.
func (s *Store) GetDealByDealID(ctx context.Context, dealID string) (*Deal, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, deal_id, from_currency, to_currency, deal_timestamp, amount, created_at
		 FROM deals WHERE deal_id = $1`,
		dealID,
	)

	d, err := scanDeal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// ListDeals retrieves all stored deals in insertion order.
func (s *Store) ListDeals(ctx context.Context) ([]*Deal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, deal_id, from_currency, to_currency, deal_timestamp, amount, created_at
		 FROM deals ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []*Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return deals, nil
}

// CountDeals counts all stored deals.
func (s *Store) CountDeals(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM deals`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanDeal(row pgx.Row) (*Deal, error) {
	var (
		d      Deal
		ts     pgtype.Timestamptz
		amount pgtype.Numeric
		create pgtype.Timestamptz
	)
	if err := row.Scan(&d.ID, &d.DealID, &d.FromCurrency, &d.ToCurrency, &ts, &amount, &create); err != nil {
		return nil, err
	}

	dec, err := decimalFromNumeric(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to decode amount for deal %s: %w", d.DealID, err)
	}

	d.Timestamp = ts.Time
	d.Amount = dec
	d.CreatedAt = create.Time
	return &d, nil
}

// Helper functions to convert between pgtype and domain types

func numericFromDecimal(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.StringFixed(2)); err != nil {
		return pgtype.Numeric{}, err
	}
	return n, nil
}

func decimalFromNumeric(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, errors.New("numeric is null")
	}
	v, err := n.Value()
	if err != nil {
		return decimal.Zero, err
	}
	s, ok := v.(string)
	if !ok {
		return decimal.Zero, fmt.Errorf("unexpected numeric driver value %T", v)
	}
	return decimal.NewFromString(s)
}
