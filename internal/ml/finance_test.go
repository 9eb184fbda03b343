package ml

import (
	"math"
	"testing"

	"hdbagent/internal/model"
)

func testFinance() model.FinanceConfig {
	return model.FinanceConfig{
		Discount:    0.20,
		LTV:         0.80,
		InterestPA:  0.026,
		TenureYears: 25,
		MSR:         0.30,
	}
}

func TestMonthlyPayment(t *testing.T) {
	// zero rate degenerates to straight-line repayment
	if got := MonthlyPayment(300000, 0, 25); got != 300000.0/300.0 {
		t.Errorf("MonthlyPayment(zero rate) = %v, want %v", got, 300000.0/300.0)
	}

	// closed-form check against the amortization formula
	principal, rate, years := 400000.0, 0.026, 25
	r := rate / 12.0
	n := float64(years * 12)
	pow := math.Pow(1+r, n)
	want := principal * (r * pow) / (pow - 1)
	if got := MonthlyPayment(principal, rate, years); math.Abs(got-want) > 1e-9 {
		t.Errorf("MonthlyPayment() = %v, want %v", got, want)
	}

	// a positive rate always costs more than straight-line
	if MonthlyPayment(400000, 0.026, 25) <= 400000.0/300.0 {
		t.Error("expected amortized payment above straight-line repayment")
	}
}

func TestRequiredIncomeMonotonicInPrice(t *testing.T) {
	conf := testFinance()
	prices := []float64{100000, 250000, 400000, 650000, 1000000}

	prev := 0.0
	for _, p := range prices {
		income := RequiredIncome(p, conf)
		if income <= prev {
			t.Fatalf("RequiredIncome(%v) = %v, not increasing (prev %v)", p, income, prev)
		}
		prev = income
	}
}

func TestRequiredIncomePositive(t *testing.T) {
	conf := testFinance()
	if income := RequiredIncome(480000, conf); income <= 0 {
		t.Errorf("RequiredIncome(480000) = %v, want > 0", income)
	}
}
