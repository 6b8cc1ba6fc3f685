// Package billing manages subscription plans: the plan catalog, payment
// verification, and activation writes to the subscription and payment
// records.
package billing

import "errors"

// Billing cycles.
const (
	CycleMonthly = "monthly"
	CycleYearly  = "yearly"
)

const (
	monthlyPeriodSeconds = 30 * 24 * 60 * 60
	yearlyPeriodSeconds  = 365 * 24 * 60 * 60
)

var (
	ErrUnknownPlan  = errors.New("unknown plan")
	ErrUnknownCycle = errors.New("unknown billing cycle")
)

// Plan is one catalog entry. Prices are in minor currency units (kobo).
type Plan struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	BinLimit     int    `json:"binLimit"`
	PriceMonthly int64  `json:"priceMonthly"`
	PriceYearly  int64  `json:"priceYearly"`
}

// Catalog is the fixed plan lineup, cheapest first.
var Catalog = []Plan{
	{ID: "starter", Name: "Starter", BinLimit: 5, PriceMonthly: 500_000, PriceYearly: 5_000_000},
	{ID: "professional", Name: "Professional", BinLimit: 50, PriceMonthly: 2_500_000, PriceYearly: 25_000_000},
	{ID: "enterprise", Name: "Enterprise", BinLimit: 1000, PriceMonthly: 10_000_000, PriceYearly: 100_000_000},
}

// PlanByID looks up a catalog entry.
func PlanByID(id string) (Plan, error) {
	for _, p := range Catalog {
		if p.ID == id {
			return p, nil
		}
	}
	return Plan{}, ErrUnknownPlan
}

// Price returns a plan's price for a cycle in minor units.
func (p Plan) Price(cycle string) (int64, error) {
	switch cycle {
	case CycleMonthly:
		return p.PriceMonthly, nil
	case CycleYearly:
		return p.PriceYearly, nil
	}
	return 0, ErrUnknownCycle
}

// periodSeconds returns the subscription period length for a cycle.
func periodSeconds(cycle string) (int64, error) {
	switch cycle {
	case CycleMonthly:
		return monthlyPeriodSeconds, nil
	case CycleYearly:
		return yearlyPeriodSeconds, nil
	}
	return 0, ErrUnknownCycle
}
