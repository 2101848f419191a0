package model

import "time"

type ConsumptionLog struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	FoodItemID       *string   `json:"food_item_id"`
	ItemName         string    `json:"item_name"`
	QuantityConsumed float64   `json:"quantity_consumed"`
	ConsumptionDate  Date      `json:"consumption_date"`
	IsWaste          bool      `json:"is_waste"`
	WasteReason      *string   `json:"waste_reason"`
	CreatedAt        time.Time `json:"created_at"`
}

// ConsumptionLogInput carries the fields of a new consumption log.
type ConsumptionLogInput struct {
	FoodItemID       *string
	ItemName         string
	QuantityConsumed float64
	ConsumptionDate  Date
	IsWaste          bool
	WasteReason      *string
}
