package model

// FinanceConfig holds the finance and policy assumptions used for the
// BTO-proxy discount and affordability arithmetic. Loaded once at startup
// from the environment and immutable afterwards.
type FinanceConfig struct {
	Discount    float64 `json:"discount"`     // proxy discount from resale to BTO
	LTV         float64 `json:"ltv"`          // loan-to-value
	InterestPA  float64 `json:"interest_pa"`  // annual interest rate
	TenureYears int     `json:"tenure_years"` // loan tenure in years
	MSR         float64 `json:"msr"`          // mortgage servicing ratio
}
