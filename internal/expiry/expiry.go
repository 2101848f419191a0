// Package expiry picks the food items that are about to go off and
// describes how soon they do.
package expiry

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ecopantry/ecopantry/internal/model"
)

// Horizons and caps used by the different consumers of the selector.
const (
	DashboardHorizon = 3
	ListHorizon      = 7

	DashboardLimit = 5
	ChatLimit      = 10
)

// Urgency levels.
const (
	UrgencyExpired = "expired"
	UrgencyHigh    = "high"
	UrgencyMedium  = "medium"
	UrgencyNormal  = "normal"
)

// Item is a food item decorated with how soon it expires.
type Item struct {
	model.FoodItem
	DaysUntilExpiry int    `json:"days_until_expiry"`
	Urgency         string `json:"urgency"`
	ExpiryText      string `json:"expiry_text"`
}

// Cutoff returns the last calendar day, inclusive, that falls within horizon
// days of now.
func Cutoff(now time.Time, horizon int) model.Date {
	return model.DateOf(now).AddDays(horizon)
}

// Select returns the items whose expiry date is on or before the cutoff,
// soonest first. Items already past their date are kept; items without a
// date never are. A limit <= 0 returns every match.
func Select(items []model.FoodItem, now time.Time, horizon, limit int) []model.FoodItem {
	cutoff := Cutoff(now, horizon)

	selected := make([]model.FoodItem, 0, len(items))
	for _, item := range items {
		if item.ExpiryDate == nil || item.ExpiryDate.After(cutoff.Time) {
			continue
		}
		selected = append(selected, item)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].ExpiryDate.Before(selected[j].ExpiryDate.Time)
	})

	if limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}

// Decorate attaches the days remaining, urgency and display text to each item.
// Items without an expiry date are skipped.
func Decorate(items []model.FoodItem, now time.Time) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.ExpiryDate == nil {
			continue
		}
		days := DaysUntilExpiry(*item.ExpiryDate, now)
		out = append(out, Item{
			FoodItem:        item,
			DaysUntilExpiry: days,
			Urgency:         Urgency(days),
			ExpiryText:      Text(days),
		})
	}
	return out
}

// DaysUntilExpiry is the whole number of days, rounded up, from now until
// midnight of the expiry date in now's location. It is 0 on the expiry day
// itself and negative once the date has passed.
func DaysUntilExpiry(expiry model.Date, now time.Time) int {
	diff := expiry.In(now.Location()).Sub(now)
	return int(math.Ceil(diff.Hours() / 24))
}

func Urgency(days int) string {
	switch {
	case days < 0:
		return UrgencyExpired
	case days <= 1:
		return UrgencyHigh
	case days <= 3:
		return UrgencyMedium
	default:
		return UrgencyNormal
	}
}

func Text(days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("Expired %d days ago", -days)
	case days == 0:
		return "Expires today"
	case days == 1:
		return "Expires tomorrow"
	default:
		return fmt.Sprintf("Expires in %d days", days)
	}
}
