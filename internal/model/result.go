package model

// Band names for the coarse floor-level buckets.
const (
	BandLow  = "low"
	BandMid  = "mid"
	BandHigh = "high"
)

// DefaultBands is the band order used when a request does not name bands.
func DefaultBands() []string {
	return []string{BandLow, BandMid, BandHigh}
}

// ToolResult is the closed set of payloads a tool invocation can produce.
// Implementations: PriceEstimatesResult, LowSupplyResult, FinalResult,
// ToolError.
type ToolResult interface {
	ToolName() string
}

// FloorPremiums maps floor band to its empirical price multiplier,
// always within [0.95, 1.10].
type FloorPremiums struct {
	Low  float64 `json:"low"`
	Mid  float64 `json:"mid"`
	High float64 `json:"high"`
}

// NeutralPremiums is the no-adjustment mapping used for empty windows.
func NeutralPremiums() FloorPremiums {
	return FloorPremiums{Low: 1.0, Mid: 1.0, High: 1.0}
}

// For returns the multiplier for a band name, 1.0 for unknown bands.
func (p FloorPremiums) For(band string) float64 {
	switch band {
	case BandLow:
		return p.Low
	case BandMid:
		return p.Mid
	case BandHigh:
		return p.High
	}
	return 1.0
}

// PriceEstimateRow is one banded estimate: the premium-adjusted resale
// prediction, its BTO proxy, and the gross income needed to service it.
type PriceEstimateRow struct {
	Band                string  `json:"band"`
	ResalePred          float64 `json:"resale_pred"`
	BTOProxy            float64 `json:"bto_proxy"`
	RequiredIncome      float64 `json:"required_income"`
	FloorPremiumApplied float64 `json:"floor_premium_applied"`
}

// PriceEstimatesResult is the price_estimates tool payload. On failure only
// Tool and Error are set; callers must check Error before reading rows.
type PriceEstimatesResult struct {
	Tool     string             `json:"tool"`
	Month    string             `json:"month,omitempty"`
	Town     string             `json:"town,omitempty"`
	FlatType string             `json:"flat_type,omitempty"`
	Rows     []PriceEstimateRow `json:"rows,omitempty"`
	Finance  *FinanceConfig     `json:"finance,omitempty"`
	Premiums *FloorPremiums     `json:"premiums,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func (r PriceEstimatesResult) ToolName() string { return r.Tool }

// LowSupplyResult is the low_supply tool payload: (town, flat_type) pairs
// ranked ascending by resale volume since Cutoff. Low volume is a proxy
// signal, not actual BTO-launch data.
type LowSupplyResult struct {
	Tool     string         `json:"tool"`
	Cutoff   string         `json:"cutoff,omitempty"`
	FlatType string         `json:"flat_type,omitempty"`
	Items    []SegmentCount `json:"items,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func (r LowSupplyResult) ToolName() string { return r.Tool }

// FinalResult is emitted when the router answers directly without a tool.
type FinalResult struct {
	Tool string    `json:"tool"`
	Args RouteArgs `json:"args"`
}

func (r FinalResult) ToolName() string { return r.Tool }

// ToolError is the structured payload for an unresolvable tool dispatch.
type ToolError struct {
	Error string `json:"error"`
}

func (e ToolError) ToolName() string { return "" }

// AgentResponse is one full request/response cycle of the agent.
type AgentResponse struct {
	Route  Route      `json:"route"`
	Data   ToolResult `json:"data"`
	Answer string     `json:"answer"`
}
