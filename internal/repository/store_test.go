package repository

import (
	"context"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

const testSchema = `
CREATE TABLE town (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT UNIQUE);
CREATE TABLE resale_transaction (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  month TEXT NOT NULL,
  town_id INTEGER NOT NULL,
  block TEXT, street_name TEXT,
  flat_type TEXT NOT NULL,
  flat_model TEXT,
  storey_low INTEGER NOT NULL,
  storey_high INTEGER NOT NULL,
  floor_area_sqm REAL NOT NULL,
  lease_commence_year INTEGER,
  remaining_lease_months INTEGER,
  resale_price REAL,
  FOREIGN KEY(town_id) REFERENCES town(id)
);`

type seedRow struct {
	month, town, flatType, flatModel string
	storeyLow, storeyHigh            int
	area                             float64
	leaseYear, leaseMonths           int
	price                            float64
}

var seedRows = []seedRow{
	{"2025-07-01", "ANG MO KIO", "4 ROOM", "IMPROVED", 2, 3, 90.0, 1982, 420, 470000},
	{"2025-08-01", "ANG MO KIO", "4 ROOM", "IMPROVED", 5, 6, 90.0, 1982, 408, 480000},
	{"2025-08-01", "ANG MO KIO", "4 ROOM", "IMPROVED", 11, 12, 90.0, 1982, 396, 500000},
	{"2025-08-01", "ANG MO KIO", "3 ROOM", "NEW GENERATION", 1, 3, 67.0, 1979, 420, 350000},
	{"2025-08-01", "BISHAN", "4 ROOM", "IMPROVED", 4, 6, 95.0, 1987, 360, 650000},
	{"2025-07-01", "BISHAN", "3 ROOM", "NEW GENERATION", 1, 3, 67.0, 1986, 420, 520000},
}

// newTestStore creates a throwaway sqlite-backed store seeded with a
// minimal schema and rows.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hdb_test.db")
	store, err := Open("sqlite", path, 1, 1)
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	db := store.DB()
	db.MustExec(testSchema)

	townIDs := map[string]int64{}
	for _, r := range seedRows {
		if _, ok := townIDs[r.town]; ok {
			continue
		}
		res := db.MustExec(`INSERT INTO town(name) VALUES (?)`, r.town)
		id, err := res.LastInsertId()
		if err != nil {
			t.Fatal(err)
		}
		townIDs[r.town] = id
	}
	for _, r := range seedRows {
		db.MustExec(
			`INSERT INTO resale_transaction
			 (month, town_id, block, street_name, flat_type, flat_model,
			  storey_low, storey_high, floor_area_sqm, lease_commence_year,
			  remaining_lease_months, resale_price)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
			r.month, townIDs[r.town], "101", "TEST ST", r.flatType, r.flatModel,
			r.storeyLow, r.storeyHigh, r.area, r.leaseYear, r.leaseMonths, r.price,
		)
	}
	return store
}

func TestTownsAndFlatTypes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	towns, err := store.Towns(ctx)
	if err != nil {
		t.Fatalf("Towns() error = %v", err)
	}
	if len(towns) != 2 || towns[0] != "ANG MO KIO" || towns[1] != "BISHAN" {
		t.Errorf("Towns() = %v", towns)
	}

	flatTypes, err := store.FlatTypes(ctx)
	if err != nil {
		t.Fatalf("FlatTypes() error = %v", err)
	}
	if len(flatTypes) != 2 || flatTypes[0] != "3 ROOM" || flatTypes[1] != "4 ROOM" {
		t.Errorf("FlatTypes() = %v", flatTypes)
	}
}

func TestLatestMonth(t *testing.T) {
	store := newTestStore(t)

	month, err := store.LatestMonth(context.Background())
	if err != nil {
		t.Fatalf("LatestMonth() error = %v", err)
	}
	if month != "2025-08" {
		t.Errorf("LatestMonth() = %q, want %q", month, "2025-08")
	}
}

func TestSegmentTransactions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rows, err := store.SegmentTransactions(ctx, "ang mo kio", "4 room")
	if err != nil {
		t.Fatalf("SegmentTransactions() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("SegmentTransactions() returned %d rows, want 3", len(rows))
	}
	for _, r := range rows {
		if r.Town != "ANG MO KIO" || r.FlatType != "4 ROOM" {
			t.Errorf("unexpected row segment %s/%s", r.Town, r.FlatType)
		}
		if r.FloorAreaSqm <= 0 || r.ResalePrice <= 0 {
			t.Errorf("unexpected zero values in row %+v", r)
		}
	}

	empty, err := store.SegmentTransactions(ctx, "WOODLANDS", "4 ROOM")
	if err != nil {
		t.Fatalf("SegmentTransactions(empty) error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no rows for unknown segment, got %d", len(empty))
	}
}

func TestSegmentPrices(t *testing.T) {
	store := newTestStore(t)

	rows, err := store.SegmentPrices(context.Background(), "ANG MO KIO", "4 ROOM")
	if err != nil {
		t.Fatalf("SegmentPrices() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("SegmentPrices() returned %d rows, want 3", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Month < rows[i-1].Month {
			t.Error("SegmentPrices() not ordered by month")
		}
	}
}

func TestCountBySegment(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	counts, err := store.CountBySegment(ctx, "2015-08-01")
	if err != nil {
		t.Fatalf("CountBySegment() error = %v", err)
	}
	if len(counts) != 4 {
		t.Fatalf("CountBySegment() returned %d groups, want 4", len(counts))
	}
	for i := 1; i < len(counts); i++ {
		if counts[i].N < counts[i-1].N {
			t.Error("CountBySegment() not ascending by count")
		}
	}
	last := counts[len(counts)-1]
	if last.Town != "ANG MO KIO" || last.FlatType != "4 ROOM" || last.N != 3 {
		t.Errorf("largest group = %+v, want ANG MO KIO/4 ROOM n=3", last)
	}

	// cutoff beyond all data filters everything out
	none, err := store.CountBySegment(ctx, "2030-01-01")
	if err != nil {
		t.Fatalf("CountBySegment(future cutoff) error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no groups past cutoff, got %d", len(none))
	}
}
