// Package analytics turns a caller's consumption history into the savings
// figures shown on the dashboard.
package analytics

import (
	"math"

	"github.com/ecopantry/ecopantry/internal/model"
)

// Savings credited per consumed (not wasted) log entry.
const (
	MoneyPerItem = 2.50
	CO2PerItemKg = 0.5
)

type Stats struct {
	TotalItems     int     `json:"totalItems"`
	ExpiringItems  int     `json:"expiringItems"`
	WasteReduction float64 `json:"wasteReduction"`
	MoneySaved     float64 `json:"moneySaved"`
	CO2Saved       float64 `json:"co2Saved"`
	ConsumedItems  int     `json:"consumedItems"`
	WastedItems    int     `json:"wastedItems"`
	TargetProgress float64 `json:"targetProgress"`
}

// Summarize computes the dashboard stats. totalItems and expiringItems are
// passed through unchanged.
func Summarize(logs []model.ConsumptionLog, totalItems, expiringItems int) Stats {
	var consumed, wasted int
	for _, l := range logs {
		if l.IsWaste {
			wasted++
		} else {
			consumed++
		}
	}

	var reduction float64
	if total := consumed + wasted; total > 0 {
		reduction = round(float64(consumed)/float64(total)*100, 1)
	}

	return Stats{
		TotalItems:     totalItems,
		ExpiringItems:  expiringItems,
		WasteReduction: reduction,
		MoneySaved:     round(float64(consumed)*MoneyPerItem, 2),
		CO2Saved:       round(float64(consumed)*CO2PerItemKg, 1),
		ConsumedItems:  consumed,
		WastedItems:    wasted,
		TargetProgress: math.Min(reduction, 100),
	}
}

// round rounds half up to the given number of decimals.
func round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Floor(x*p+0.5) / p
}
