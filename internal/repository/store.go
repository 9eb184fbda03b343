package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"hdbagent/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ErrNoData marks a segment with no transactions. It is a reported,
// per-request condition rather than an infrastructure failure.
var ErrNoData = errors.New("no data for segment")

// Store exposes the read-only query surface over the town dimension and
// resale_transaction fact table. Queries use "?" placeholders and are
// rebound for the active driver, so the same store runs on PostgreSQL in
// production and sqlite in tests.
type Store struct {
	db *sqlx.DB
}

// Open connects to the database and configures the connection pool.
func Open(driver, dsn string, maxConn, maxIdleConn int) (*Store, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle, used by test fixtures to seed data.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Towns returns the distinct town names, upper-cased.
func (s *Store) Towns(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.SelectContext(ctx, &names, `SELECT name FROM town ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch towns: %w", err)
	}
	for i, n := range names {
		names[i] = strings.ToUpper(n)
	}
	return names, nil
}

// FlatTypes returns the distinct flat-type labels, upper-cased.
func (s *Store) FlatTypes(ctx context.Context) ([]string, error) {
	var labels []string
	err := s.db.SelectContext(ctx, &labels,
		`SELECT DISTINCT flat_type FROM resale_transaction ORDER BY flat_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch flat types: %w", err)
	}
	for i, l := range labels {
		labels[i] = strings.ToUpper(l)
	}
	return labels, nil
}

// LatestMonth returns the most recent transaction month ("YYYY-MM") across
// the whole table, or the current month when the table is empty.
func (s *Store) LatestMonth(ctx context.Context) (string, error) {
	var latest sql.NullString
	err := s.db.GetContext(ctx, &latest, `SELECT MAX(month) FROM resale_transaction`)
	if err != nil {
		return "", fmt.Errorf("failed to fetch latest month: %w", err)
	}
	if !latest.Valid || latest.String == "" {
		return time.Now().UTC().Format("2006-01"), nil
	}
	if len(latest.String) < 7 {
		return "", fmt.Errorf("malformed month value %q", latest.String)
	}
	return latest.String[:7], nil
}

// SegmentTransactions returns all historical rows for a (town, flat_type)
// segment, with nullable columns coalesced.
func (s *Store) SegmentTransactions(ctx context.Context, town, flatType string) ([]model.ResaleTransaction, error) {
	query := s.db.Rebind(`
		SELECT r.month, t.name AS town, r.flat_type,
		       COALESCE(r.flat_model, '') AS flat_model,
		       r.storey_low, r.storey_high, r.floor_area_sqm,
		       COALESCE(r.lease_commence_year, 0) AS lease_commence_year,
		       COALESCE(r.remaining_lease_months, 0) AS remaining_lease_months,
		       COALESCE(r.resale_price, 0) AS resale_price
		FROM resale_transaction r
		JOIN town t ON t.id = r.town_id
		WHERE t.name = ? AND r.flat_type = ?`)

	var rows []model.ResaleTransaction
	err := s.db.SelectContext(ctx, &rows, query, strings.ToUpper(town), strings.ToUpper(flatType))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch segment transactions: %w", err)
	}
	return rows, nil
}

// SegmentPrices returns the priced rows of a segment used for
// floor-premium computation.
func (s *Store) SegmentPrices(ctx context.Context, town, flatType string) ([]model.StoreyPrice, error) {
	query := s.db.Rebind(`
		SELECT r.month, r.storey_low, r.storey_high, r.resale_price
		FROM resale_transaction r
		JOIN town t ON t.id = r.town_id
		WHERE t.name = ? AND r.flat_type = ? AND r.resale_price IS NOT NULL
		ORDER BY r.month`)

	var rows []model.StoreyPrice
	err := s.db.SelectContext(ctx, &rows, query, strings.ToUpper(town), strings.ToUpper(flatType))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch segment prices: %w", err)
	}
	return rows, nil
}

// CountBySegment counts transactions per (town, flat_type) with month on
// or after the cutoff date ("YYYY-MM-DD"), ascending by count.
func (s *Store) CountBySegment(ctx context.Context, cutoff string) ([]model.SegmentCount, error) {
	query := s.db.Rebind(`
		SELECT t.name AS town, r.flat_type, COUNT(*) AS n
		FROM resale_transaction r
		JOIN town t ON t.id = r.town_id
		WHERE r.month >= ?
		GROUP BY t.name, r.flat_type
		ORDER BY n ASC, t.name ASC, r.flat_type ASC`)

	var counts []model.SegmentCount
	err := s.db.SelectContext(ctx, &counts, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to count segments: %w", err)
	}
	return counts, nil
}
