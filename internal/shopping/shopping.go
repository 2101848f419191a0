// Package shopping computes shopping list progress and keeps client-side
// views in step with confirmed writes.
package shopping

import "github.com/ecopantry/ecopantry/internal/model"

// Progress is the share of purchased items as a percentage. An empty list
// has made no progress.
func Progress(list model.ShoppingList) float64 {
	if len(list.Items) == 0 {
		return 0
	}
	var purchased int
	for _, item := range list.Items {
		if item.IsPurchased {
			purchased++
		}
	}
	return float64(purchased) / float64(len(list.Items)) * 100
}

// ApplyItem returns a copy of lists in which the item with the same id as
// updated is replaced. Every other item, and the input, is left untouched.
func ApplyItem(lists []model.ShoppingList, updated model.ShoppingListItem) []model.ShoppingList {
	out := make([]model.ShoppingList, len(lists))
	for i, l := range lists {
		out[i] = l
		if l.ID != updated.ListID {
			continue
		}
		items := make([]model.ShoppingListItem, len(l.Items))
		copy(items, l.Items)
		for j := range items {
			if items[j].ID == updated.ID {
				items[j] = updated
			}
		}
		out[i].Items = items
	}
	return out
}

// ListView is a shopping list decorated with its progress.
type ListView struct {
	model.ShoppingList
	Progress float64 `json:"progress"`
}

func Views(lists []model.ShoppingList) []ListView {
	out := make([]ListView, len(lists))
	for i, l := range lists {
		out[i] = ListView{ShoppingList: l, Progress: Progress(l)}
	}
	return out
}
