package service

import (
	"context"
	"path/filepath"
	"testing"

	"hdbagent/internal/config"
	"hdbagent/internal/ml"
	"hdbagent/internal/model"
	"hdbagent/internal/repository"

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

// newTestStore opens a throwaway sqlite-backed store seeded with two
// towns of resale transactions.
func newTestStore(t *testing.T) *repository.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hdb_test.db")
	store, err := repository.Open("sqlite", path, 1, 1)
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

// newTestVocab loads the catalog from a seeded store.
func newTestVocab(t *testing.T, store *repository.Store) *VocabCatalog {
	t.Helper()
	vocab := NewVocabCatalog(store)
	if err := vocab.Load(context.Background()); err != nil {
		t.Fatalf("failed to load vocabulary: %v", err)
	}
	return vocab
}

// stubGenerator is a canned TextGenerator that records every prompt it
// receives.
type stubGenerator struct {
	output  string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string, _ int) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.output, nil
}

// stubPriceModel is a deterministic linear stand-in for the regression
// model: price grows with floor area and storey.
type stubPriceModel struct{}

func (stubPriceModel) Predict(records []ml.FeatureRecord) ([]ml.Prediction, error) {
	preds := make([]ml.Prediction, len(records))
	for i, r := range records {
		preds[i] = ml.Prediction{ResalePred: 5000*r.FloorAreaSqm + 1000*float64(r.StoreyLow)}
	}
	return preds, nil
}

func (stubPriceModel) Version() string { return "stub-1" }

func testFinance() model.FinanceConfig {
	return model.FinanceConfig{
		Discount:    0.20,
		LTV:         0.80,
		InterestPA:  0.026,
		TenureYears: 25,
		MSR:         0.30,
	}
}

func testFallbacks() config.ModelConfig {
	return config.ModelConfig{
		FallbackAreaSqm:     90.0,
		FallbackLeaseYear:   1990,
		FallbackLeaseMonths: 300,
		FallbackFlatModel:   "IMPROVED",
	}
}
