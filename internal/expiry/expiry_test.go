package expiry

import (
	"testing"
	"time"

	"github.com/ecopantry/ecopantry/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, time.June, 1, 15, 30, 0, 0, time.UTC)

func item(name string, expiry *model.Date) model.FoodItem {
	return model.FoodItem{ID: name, Name: name, Quantity: 1, Unit: "pieces", ExpiryDate: expiry}
}

func day(offset int) *model.Date {
	d := model.DateOf(now).AddDays(offset)
	return &d
}

func names(items []model.FoodItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestCutoff(t *testing.T) {
	assert.Equal(t, "2024-06-04", Cutoff(now, DashboardHorizon).String())
	assert.Equal(t, "2024-06-08", Cutoff(now, ListHorizon).String())
}

func TestSelect(t *testing.T) {
	items := []model.FoodItem{
		item("later", day(8)),
		item("edge", day(7)),
		item("none", nil),
		item("expired", day(-3)),
		item("today", day(0)),
		item("tomorrow-a", day(1)),
		item("tomorrow-b", day(1)),
	}

	got := Select(items, now, ListHorizon, 0)
	assert.Equal(t, []string{"expired", "today", "tomorrow-a", "tomorrow-b", "edge"}, names(got))

	got = Select(items, now, DashboardHorizon, 0)
	assert.Equal(t, []string{"expired", "today", "tomorrow-a", "tomorrow-b"}, names(got))
}

func TestSelectLimit(t *testing.T) {
	var items []model.FoodItem
	for i := 6; i >= 0; i-- {
		items = append(items, item(string(rune('a'+i)), day(i)))
	}

	got := Select(items, now, ListHorizon, DashboardLimit)
	require.Len(t, got, DashboardLimit)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, names(got))

	assert.Len(t, Select(items, now, ListHorizon, -1), 7)
}

func TestSelectDoesNotMutateInput(t *testing.T) {
	items := []model.FoodItem{item("b", day(2)), item("a", day(1))}
	Select(items, now, ListHorizon, 0)
	assert.Equal(t, []string{"b", "a"}, names(items))
}

func TestSelectEmpty(t *testing.T) {
	assert.Empty(t, Select(nil, now, ListHorizon, ChatLimit))
}

func TestDaysUntilExpiry(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		want   int
	}{
		{"today", 0, 0},
		{"tomorrow", 1, 1},
		{"in a week", 7, 7},
		{"three days ago", -3, -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntilExpiry(*day(tt.offset), now))
		})
	}
}

func TestDaysUntilExpiryUsesCallerLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	local := time.Date(2024, time.June, 1, 23, 0, 0, 0, loc) // 13:00 UTC
	assert.Equal(t, 1, DaysUntilExpiry(model.NewDate(2024, time.June, 2), local))
	assert.Equal(t, 0, DaysUntilExpiry(model.NewDate(2024, time.June, 1), local))
}

func TestUrgency(t *testing.T) {
	assert.Equal(t, UrgencyExpired, Urgency(-1))
	assert.Equal(t, UrgencyHigh, Urgency(0))
	assert.Equal(t, UrgencyHigh, Urgency(1))
	assert.Equal(t, UrgencyMedium, Urgency(2))
	assert.Equal(t, UrgencyMedium, Urgency(3))
	assert.Equal(t, UrgencyNormal, Urgency(4))
}

func TestText(t *testing.T) {
	assert.Equal(t, "Expired 3 days ago", Text(-3))
	assert.Equal(t, "Expires today", Text(0))
	assert.Equal(t, "Expires tomorrow", Text(1))
	assert.Equal(t, "Expires in 5 days", Text(5))
}

func TestDecorate(t *testing.T) {
	got := Decorate([]model.FoodItem{item("milk", day(1)), item("salt", nil)}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "milk", got[0].Name)
	assert.Equal(t, 1, got[0].DaysUntilExpiry)
	assert.Equal(t, UrgencyHigh, got[0].Urgency)
	assert.Equal(t, "Expires tomorrow", got[0].ExpiryText)
}
