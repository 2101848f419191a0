package model

import "time"

// Categories, units and storage locations accepted for food items.
var (
	FoodCategories = []string{"fruits", "vegetables", "dairy", "meat", "grains", "snacks", "beverages", "other"}
	FoodUnits      = []string{"pieces", "kg", "g", "l", "ml", "lbs", "oz"}
	FoodLocations  = []string{"pantry", "fridge", "freezer", "counter"}
)

type FoodItem struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	Location     string    `json:"location"`
	Notes        *string   `json:"notes"`
	Barcode      *string   `json:"barcode"`
	PurchaseDate *Date     `json:"purchase_date"`
	ExpiryDate   *Date     `json:"expiry_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FoodItemInput carries the caller-editable fields of a food item.
type FoodItemInput struct {
	Name         string
	Category     string
	Quantity     float64
	Unit         string
	Location     string
	Notes        *string
	Barcode      *string
	PurchaseDate *Date
	ExpiryDate   *Date
}

// FoodItemFilter narrows and orders a food item listing.
type FoodItemFilter struct {
	Search   string
	Category string
	Location string
	Sort     string // "newest" (default), "name", "expiry"
}
