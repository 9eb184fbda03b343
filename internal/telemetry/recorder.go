// Package telemetry persists tool calls, router decisions and predictions
// into a local sqlite database. Every write is best-effort: failures are
// logged at debug level and never surface to the caller, and a nil
// *Recorder is a valid no-op sink.
package telemetry

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tool_calls(
  ts TEXT, tool TEXT, args_json TEXT, ok INTEGER, ms REAL, err TEXT
);
CREATE TABLE IF NOT EXISTS router_events(
  ts TEXT, ok INTEGER, tool TEXT, raw_json TEXT, err TEXT
);
CREATE TABLE IF NOT EXISTS predictions(
  ts TEXT, town TEXT, flat_type TEXT, band TEXT, resale REAL, bto REAL,
  required_income REAL, model_version TEXT
);`

// maximum stored length for raw router output
const maxRawLen = 2000

// Recorder writes telemetry rows to a local sqlite database.
type Recorder struct {
	db *sql.DB
}

// Open creates the telemetry database (and its parent directory) and
// ensures the schema exists.
func Open(path string) (*Recorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create telemetry dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init telemetry schema: %w", err)
	}
	return &Recorder{db: db}, nil
}

// Close closes the telemetry database.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	return r.db.Close()
}

// LogTool records one tool invocation with its outcome and duration.
func (r *Recorder) LogTool(tool string, args any, ok bool, elapsed time.Duration, errMsg string) {
	if r == nil {
		return
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		argsJSON = []byte("{}")
	}
	r.exec(`INSERT INTO tool_calls VALUES (?,?,?,?,?,?)`,
		time.Now().UTC().Format(time.RFC3339), tool, string(argsJSON),
		boolToInt(ok), float64(elapsed.Microseconds())/1000.0, errMsg)
}

// LogRouter records one router decision, keeping the raw model output for
// offline inspection.
func (r *Recorder) LogRouter(ok bool, tool, raw, errMsg string) {
	if r == nil {
		return
	}
	if len(raw) > maxRawLen {
		raw = raw[:maxRawLen]
	}
	r.exec(`INSERT INTO router_events VALUES (?,?,?,?,?)`,
		time.Now().UTC().Format(time.RFC3339), boolToInt(ok), tool, raw, errMsg)
}

// LogPrediction records one banded price prediction.
func (r *Recorder) LogPrediction(town, flatType, band string, resale, bto, requiredIncome float64, modelVersion string) {
	if r == nil {
		return
	}
	r.exec(`INSERT INTO predictions VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().UTC().Format(time.RFC3339), town, flatType, band,
		resale, bto, requiredIncome, modelVersion)
}

func (r *Recorder) exec(query string, args ...any) {
	if _, err := r.db.Exec(query, args...); err != nil {
		log.Debug().Err(err).Msg("telemetry write failed")
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
