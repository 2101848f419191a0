package model

import "time"

type ShoppingList struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	Name      string             `json:"name"`
	IsActive  bool               `json:"is_active"`
	CreatedAt time.Time          `json:"created_at"`
	Items     []ShoppingListItem `json:"shopping_list_items"`
}

type ShoppingListItem struct {
	ID          string    `json:"id"`
	ListID      string    `json:"list_id"`
	ItemName    string    `json:"item_name"`
	Quantity    float64   `json:"quantity"`
	Unit        string    `json:"unit"`
	Category    *string   `json:"category"`
	IsPurchased bool      `json:"is_purchased"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
}
