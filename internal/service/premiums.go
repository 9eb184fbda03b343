package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"hdbagent/internal/model"
	"hdbagent/internal/repository"
)

// premiumWindowMonths is the trailing window over which floor premiums
// are computed, anchored at the segment's latest transaction month.
const premiumWindowMonths = 24

// Premium multipliers are clamped to this range to reduce noise.
const (
	premiumFloor = 0.95
	premiumCeil  = 1.10
)

// PremiumService computes data-derived floor premiums per (town,
// flat_type) segment and caches them for the process lifetime.
type PremiumService struct {
	store *repository.Store

	mu    sync.Mutex
	cache map[string]model.FloorPremiums
}

// NewPremiumService creates a premium service over the given store.
func NewPremiumService(store *repository.Store) *PremiumService {
	return &PremiumService{
		store: store,
		cache: make(map[string]model.FloorPremiums),
	}
}

// ClearCache drops all cached premiums. Required for test isolation when
// the underlying storage is swapped.
func (s *PremiumService) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]model.FloorPremiums)
}

// Premiums returns the floor-premium mapping for a segment: per-band
// median price over the trailing window divided by the overall median,
// clamped to [0.95, 1.10]. An empty window yields 1.0 for all bands.
func (s *PremiumService) Premiums(ctx context.Context, town, flatType string) (model.FloorPremiums, error) {
	key := strings.ToUpper(town) + "/" + strings.ToUpper(flatType)

	s.mu.Lock()
	if cached, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	rows, err := s.store.SegmentPrices(ctx, town, flatType)
	if err != nil {
		return model.FloorPremiums{}, err
	}

	premiums := computePremiums(rows)

	s.mu.Lock()
	s.cache[key] = premiums
	s.mu.Unlock()
	return premiums, nil
}

func computePremiums(rows []model.StoreyPrice) model.FloorPremiums {
	if len(rows) == 0 {
		return model.NeutralPremiums()
	}

	// anchor the window at the latest transaction month, not wall clock
	latest := rows[0].Month
	for _, r := range rows {
		if r.Month > latest {
			latest = r.Month
		}
	}
	cutoff, err := monthsBefore(latest, premiumWindowMonths)
	if err != nil {
		return model.NeutralPremiums()
	}

	var all []float64
	byBand := map[string][]float64{}
	for _, r := range rows {
		if r.Month < cutoff {
			continue
		}
		mid := (float64(r.StoreyLow) + float64(r.StoreyHigh)) / 2.0
		band := bandForStorey(mid)
		all = append(all, r.ResalePrice)
		byBand[band] = append(byBand[band], r.ResalePrice)
	}
	if len(all) == 0 {
		return model.NeutralPremiums()
	}

	overall := median(all)
	if overall <= 0 {
		overall = 1.0
	}

	ratio := func(band string) float64 {
		prices := byBand[band]
		if len(prices) == 0 {
			return 1.0
		}
		return clamp(median(prices)/overall, premiumFloor, premiumCeil)
	}

	return model.FloorPremiums{
		Low:  ratio(model.BandLow),
		Mid:  ratio(model.BandMid),
		High: ratio(model.BandHigh),
	}
}

// bandForStorey buckets a storey midpoint into a floor band.
func bandForStorey(mid float64) string {
	switch {
	case mid <= 3:
		return model.BandLow
	case mid >= 10:
		return model.BandHigh
	default:
		return model.BandMid
	}
}

// monthsBefore shifts an ISO month or date string back by n calendar
// months, returning a YYYY-MM-DD first-of-month string.
func monthsBefore(month string, n int) (string, error) {
	if len(month) < 7 {
		return "", fmt.Errorf("malformed month %q", month)
	}
	t, err := time.Parse("2006-01", month[:7])
	if err != nil {
		return "", err
	}
	return t.AddDate(0, -n, 0).Format("2006-01-02"), nil
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
