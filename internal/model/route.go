package model

// Tool name constants used by the router and registry
const (
	ToolPriceEstimates = "price_estimates"
	ToolLowSupply      = "low_supply"
	ToolFinal          = "final"
)

// Defaults applied when routing cannot resolve a segment
const (
	DefaultTown       = "ANG MO KIO"
	DefaultFlatType   = "4 ROOM"
	DefaultLastNYears = 10
	DefaultTopK       = 8
)

// Route is a routing decision: which tool to run and with what arguments.
// It is also the strict JSON contract the LLM-fallback router must emit.
type Route struct {
	Tool string    `json:"tool"`
	Args RouteArgs `json:"args"`
}

// RouteArgs carries the union of arguments across the supported tools.
// Unused fields are zero and omitted from JSON.
type RouteArgs struct {
	Town       string   `json:"town,omitempty"`
	FlatType   string   `json:"flat_type,omitempty"`
	Month      string   `json:"month,omitempty"`
	Bands      []string `json:"bands,omitempty"`
	LastNYears int      `json:"last_n_years,omitempty"`
	TopK       int      `json:"top_k,omitempty"`
	Answer     string   `json:"answer,omitempty"`
}

// DefaultRoute is the terminal fallback of the routing chain: returned when
// neither deterministic matching nor the LLM produced a usable decision.
func DefaultRoute() Route {
	return Route{
		Tool: ToolPriceEstimates,
		Args: RouteArgs{Town: DefaultTown, FlatType: DefaultFlatType},
	}
}
