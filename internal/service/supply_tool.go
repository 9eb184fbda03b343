package service

import (
	"context"
	"strings"
	"time"

	"hdbagent/internal/model"
	"hdbagent/internal/repository"
	"hdbagent/internal/telemetry"
)

// SupplyTool ranks (town, flat_type) pairs by resale transaction count
// over a trailing window, lowest first. Low resale volume is a proxy for
// limited launches; actual BTO-launch data is not available.
type SupplyTool struct {
	store    *repository.Store
	recorder *telemetry.Recorder
	now      func() time.Time
}

// NewSupplyTool creates the low-supply tool.
func NewSupplyTool(store *repository.Store, recorder *telemetry.Recorder) *SupplyTool {
	return &SupplyTool{store: store, recorder: recorder, now: time.Now}
}

// Name implements Tool.
func (t *SupplyTool) Name() string { return model.ToolLowSupply }

// Invoke implements Tool. Failures are reported in the payload's error
// field, matching the price tool's convention.
func (t *SupplyTool) Invoke(ctx context.Context, args model.RouteArgs) model.ToolResult {
	start := time.Now()
	result, err := t.rank(ctx, args)
	elapsed := time.Since(start)

	if err != nil {
		t.recorder.LogTool(model.ToolLowSupply, args, false, elapsed, err.Error())
		return model.LowSupplyResult{Tool: model.ToolLowSupply, Error: err.Error()}
	}
	t.recorder.LogTool(model.ToolLowSupply, args, true, elapsed, "")
	return result
}

func (t *SupplyTool) rank(ctx context.Context, args model.RouteArgs) (model.LowSupplyResult, error) {
	lastNYears := args.LastNYears
	if lastNYears <= 0 {
		lastNYears = model.DefaultLastNYears
	}
	topK := args.TopK
	if topK <= 0 {
		topK = model.DefaultTopK
	}

	// first day of the current month minus N calendar years
	now := t.now().UTC()
	cutoff := time.Date(now.Year()-lastNYears, now.Month(), 1, 0, 0, 0, 0, time.UTC)
	cutoffStr := cutoff.Format("2006-01-02")

	counts, err := t.store.CountBySegment(ctx, cutoffStr)
	if err != nil {
		return model.LowSupplyResult{}, err
	}

	items := make([]model.SegmentCount, 0, topK)
	for _, c := range counts {
		if args.FlatType != "" && !strings.EqualFold(c.FlatType, args.FlatType) {
			continue
		}
		items = append(items, c)
		if len(items) == topK {
			break
		}
	}

	return model.LowSupplyResult{
		Tool:     model.ToolLowSupply,
		Cutoff:   cutoffStr,
		FlatType: args.FlatType,
		Items:    items,
	}, nil
}
