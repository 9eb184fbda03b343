package ml

import (
	"math"

	"hdbagent/internal/model"
)

// MonthlyPayment computes the standard amortized monthly loan payment.
// A zero rate degenerates to straight-line repayment.
func MonthlyPayment(principal, annualRate float64, years int) float64 {
	r := annualRate / 12.0
	n := float64(years * 12)
	if r == 0 {
		return principal / n
	}
	pow := math.Pow(1+r, n)
	return principal * (r * pow) / (pow - 1)
}

// RequiredIncome derives the gross monthly income needed to service a
// purchase at the given price under the configured LTV, rate, tenure and
// mortgage-servicing ratio.
func RequiredIncome(price float64, conf model.FinanceConfig) float64 {
	loan := price * conf.LTV
	pay := MonthlyPayment(loan, conf.InterestPA, conf.TenureYears)
	return pay / conf.MSR
}
