package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hdbagent/internal/config"
	"hdbagent/internal/ml"
	"hdbagent/internal/model"
	"hdbagent/internal/repository"
	"hdbagent/internal/telemetry"
)

// bandStoreys maps band name to its representative storey range. Unknown
// band names fall back to the mid range.
var bandStoreys = map[string][2]int{
	model.BandLow:  {1, 3},
	model.BandMid:  {4, 6},
	model.BandHigh: {10, 12},
}

func storeyRange(band string) (int, int) {
	if r, ok := bandStoreys[band]; ok {
		return r[0], r[1]
	}
	return bandStoreys[model.BandMid][0], bandStoreys[model.BandMid][1]
}

// PriceTool produces low/mid/high band price estimates for a segment by
// combining historical segment statistics, the regression model,
// data-derived floor premiums and affordability arithmetic.
type PriceTool struct {
	store     *repository.Store
	model     ml.PriceModel
	premiums  *PremiumService
	finance   model.FinanceConfig
	fallbacks config.ModelConfig
	recorder  *telemetry.Recorder
}

// NewPriceTool creates the price-estimation tool. The recorder may be
// nil; telemetry is best-effort throughout.
func NewPriceTool(store *repository.Store, priceModel ml.PriceModel, premiums *PremiumService,
	finance model.FinanceConfig, fallbacks config.ModelConfig, recorder *telemetry.Recorder) *PriceTool {
	return &PriceTool{
		store:     store,
		model:     priceModel,
		premiums:  premiums,
		finance:   finance,
		fallbacks: fallbacks,
		recorder:  recorder,
	}
}

// Name implements Tool.
func (t *PriceTool) Name() string { return model.ToolPriceEstimates }

// Invoke implements Tool. All failures, including storage errors, are
// reported in the payload's error field; Invoke never propagates them.
func (t *PriceTool) Invoke(ctx context.Context, args model.RouteArgs) model.ToolResult {
	start := time.Now()
	result, err := t.estimate(ctx, args)
	elapsed := time.Since(start)

	if err != nil {
		t.recorder.LogTool(model.ToolPriceEstimates, args, false, elapsed, err.Error())
		return model.PriceEstimatesResult{Tool: model.ToolPriceEstimates, Error: err.Error()}
	}
	t.recorder.LogTool(model.ToolPriceEstimates, args, true, elapsed, "")
	return result
}

func (t *PriceTool) estimate(ctx context.Context, args model.RouteArgs) (model.PriceEstimatesResult, error) {
	town := strings.ToUpper(args.Town)
	flatType := strings.ToUpper(args.FlatType)

	month := args.Month
	if month == "" {
		latest, err := t.store.LatestMonth(ctx)
		if err != nil {
			return model.PriceEstimatesResult{}, err
		}
		month = latest
	}

	rows, err := t.store.SegmentTransactions(ctx, town, flatType)
	if err != nil {
		return model.PriceEstimatesResult{}, err
	}
	if len(rows) == 0 {
		return model.PriceEstimatesResult{}, fmt.Errorf("%w: %s/%s", repository.ErrNoData, town, flatType)
	}

	typical := t.typicalFeatures(rows)
	premiums, err := t.premiums.Premiums(ctx, town, flatType)
	if err != nil {
		return model.PriceEstimatesResult{}, err
	}

	bands := args.Bands
	if len(bands) == 0 {
		bands = model.DefaultBands()
	}
	records := make([]ml.FeatureRecord, len(bands))
	for i, band := range bands {
		lo, hi := storeyRange(band)
		records[i] = ml.FeatureRecord{
			Month:                month,
			Town:                 town,
			FlatType:             flatType,
			FlatModel:            typical.flatModel,
			StoreyLow:            lo,
			StoreyHigh:           hi,
			FloorAreaSqm:         typical.floorAreaSqm,
			LeaseCommenceYear:    typical.leaseCommenceYear,
			RemainingLeaseMonths: typical.remainingLeaseMonths,
		}
	}

	preds, err := t.model.Predict(records)
	if err != nil {
		return model.PriceEstimatesResult{}, err
	}
	if len(preds) != len(records) {
		return model.PriceEstimatesResult{}, fmt.Errorf("model returned %d predictions for %d records", len(preds), len(records))
	}

	estimates := make([]model.PriceEstimateRow, len(bands))
	for i, band := range bands {
		premium := premiums.For(band)
		resale := preds[i].ResalePred * premium
		bto := resale * (1.0 - t.finance.Discount)
		income := ml.RequiredIncome(bto, t.finance)

		estimates[i] = model.PriceEstimateRow{
			Band:                band,
			ResalePred:          resale,
			BTOProxy:            bto,
			RequiredIncome:      income,
			FloorPremiumApplied: premium,
		}
		t.recorder.LogPrediction(town, flatType, band, resale, bto, income, t.model.Version())
	}

	finance := t.finance
	return model.PriceEstimatesResult{
		Tool:     model.ToolPriceEstimates,
		Month:    month,
		Town:     args.Town,
		FlatType: args.FlatType,
		Rows:     estimates,
		Finance:  &finance,
		Premiums: &premiums,
	}, nil
}

// typicalSegment is the median/modal stand-in for a typical unit.
type typicalSegment struct {
	floorAreaSqm         float64
	leaseCommenceYear    int
	remainingLeaseMonths int
	flatModel            string
}

// typicalFeatures computes per-segment median numeric features and the
// modal flat model, substituting the configured fallbacks when a column
// has no usable values.
func (t *PriceTool) typicalFeatures(rows []model.ResaleTransaction) typicalSegment {
	var areas, leaseYears, leaseMonths []float64
	modelCounts := map[string]int{}
	for _, r := range rows {
		if r.FloorAreaSqm > 0 {
			areas = append(areas, r.FloorAreaSqm)
		}
		if r.LeaseCommenceYear > 0 {
			leaseYears = append(leaseYears, float64(r.LeaseCommenceYear))
		}
		if r.RemainingLeaseMonths > 0 {
			leaseMonths = append(leaseMonths, float64(r.RemainingLeaseMonths))
		}
		if m := strings.ToUpper(strings.TrimSpace(r.FlatModel)); m != "" {
			modelCounts[m]++
		}
	}

	typical := typicalSegment{
		floorAreaSqm:         t.fallbacks.FallbackAreaSqm,
		leaseCommenceYear:    t.fallbacks.FallbackLeaseYear,
		remainingLeaseMonths: t.fallbacks.FallbackLeaseMonths,
		flatModel:            strings.ToUpper(t.fallbacks.FallbackFlatModel),
	}
	if len(areas) > 0 {
		typical.floorAreaSqm = median(areas)
	}
	if len(leaseYears) > 0 {
		typical.leaseCommenceYear = int(median(leaseYears))
	}
	if len(leaseMonths) > 0 {
		typical.remainingLeaseMonths = int(median(leaseMonths))
	}
	if mode, ok := modalValue(modelCounts); ok {
		typical.flatModel = mode
	}
	return typical
}

// modalValue returns the most frequent key, breaking ties
// lexicographically for determinism.
func modalValue(counts map[string]int) (string, bool) {
	best := ""
	bestCount := 0
	for k, n := range counts {
		if n > bestCount || (n == bestCount && k < best) {
			best = k
			bestCount = n
		}
	}
	return best, bestCount > 0
}

