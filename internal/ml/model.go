package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// FeatureRecord is one model input: the typical unit of a segment placed
// at a band's representative storey range.
type FeatureRecord struct {
	Month                string  `json:"month"`
	Town                 string  `json:"town"`
	FlatType             string  `json:"flat_type"`
	FlatModel            string  `json:"flat_model"`
	StoreyLow            int     `json:"storey_low"`
	StoreyHigh           int     `json:"storey_high"`
	FloorAreaSqm         float64 `json:"floor_area_sqm"`
	LeaseCommenceYear    int     `json:"lease_commence_year"`
	RemainingLeaseMonths int     `json:"remaining_lease_months"`
}

// Prediction is one model output: the central resale price estimate.
type Prediction struct {
	ResalePred float64 `json:"resale_pred"`
}

// PriceModel is the trained regression model, treated as a black box
// returning one central price per input record, order-preserving.
type PriceModel interface {
	Predict(records []FeatureRecord) ([]Prediction, error)
	Version() string
}

// HedonicModel is a linear hedonic price model loaded from a JSON
// coefficient artifact exported by the offline training job.
type HedonicModel struct {
	ModelVersion string             `json:"model_version"`
	Intercept    float64            `json:"intercept"`
	Coefficients struct {
		FloorAreaSqm         float64 `json:"floor_area_sqm"`
		StoreyMid            float64 `json:"storey_mid"`
		LeaseCommenceYear    float64 `json:"lease_commence_year"`
		RemainingLeaseMonths float64 `json:"remaining_lease_months"`
	} `json:"coefficients"`
	TownEffects      map[string]float64 `json:"town_effects"`
	FlatTypeEffects  map[string]float64 `json:"flat_type_effects"`
	FlatModelEffects map[string]float64 `json:"flat_model_effects"`
}

// LoadHedonicModel reads the model artifact from the models directory.
func LoadHedonicModel(modelDir string) (*HedonicModel, error) {
	path := filepath.Join(modelDir, "resale_hedonic.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact %s: %w", path, err)
	}

	var m HedonicModel
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact %s: %w", path, err)
	}
	if m.ModelVersion == "" {
		return nil, fmt.Errorf("model artifact %s has no model_version", path)
	}

	log.Info().Str("path", path).Str("version", m.ModelVersion).Msg("loaded price model")
	return &m, nil
}

// Predict scores each record with the linear hedonic form: intercept plus
// numeric coefficients plus categorical effects (unknown categories
// contribute zero).
func (m *HedonicModel) Predict(records []FeatureRecord) ([]Prediction, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to predict")
	}

	out := make([]Prediction, len(records))
	for i, rec := range records {
		storeyMid := (float64(rec.StoreyLow) + float64(rec.StoreyHigh)) / 2.0
		price := m.Intercept +
			m.Coefficients.FloorAreaSqm*rec.FloorAreaSqm +
			m.Coefficients.StoreyMid*storeyMid +
			m.Coefficients.LeaseCommenceYear*float64(rec.LeaseCommenceYear) +
			m.Coefficients.RemainingLeaseMonths*float64(rec.RemainingLeaseMonths) +
			m.TownEffects[rec.Town] +
			m.FlatTypeEffects[rec.FlatType] +
			m.FlatModelEffects[rec.FlatModel]
		out[i] = Prediction{ResalePred: price}
	}
	return out, nil
}

// Version returns the artifact's model version tag.
func (m *HedonicModel) Version() string { return m.ModelVersion }
