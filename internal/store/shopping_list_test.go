package store

import (
	"context"
	"errors"
	"testing"
)

func setupShoppingTestDB(t *testing.T) *ShoppingListStore {
	t.Helper()
	return NewShoppingListStore(setupTestDB(t))
}

func TestShoppingListCreate(t *testing.T) {
	ss := setupShoppingTestDB(t)
	ctx := context.Background()

	l, err := ss.CreateList(ctx, alice, "Weekly", true)
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	if l.Name != "Weekly" || !l.IsActive || l.UserID != alice.UserID {
		t.Errorf("unexpected list: %+v", l)
	}
	if l.Items == nil || len(l.Items) != 0 {
		t.Errorf("items = %v, want empty slice", l.Items)
	}
}

func TestShoppingListAddItem(t *testing.T) {
	ss := setupShoppingTestDB(t)
	ctx := context.Background()

	l, _ := ss.CreateList(ctx, alice, "Weekly", true)
	cat := "dairy"

	item, err := ss.AddItem(ctx, alice, l.ID, "Milk", 2, "l", &cat)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if item.ListID != l.ID || item.IsPurchased || item.Version != 1 {
		t.Errorf("unexpected item: %+v", item)
	}

	// Adding to someone else's list is a no-op.
	foreign, err := ss.AddItem(ctx, bob, l.ID, "Cake", 1, "pieces", nil)
	if err != nil {
		t.Fatalf("add foreign item: %v", err)
	}
	if foreign != nil {
		t.Error("bob should not add to alice's list")
	}

	got, _ := ss.GetList(ctx, alice, l.ID)
	if len(got.Items) != 1 {
		t.Errorf("items = %d, want 1", len(got.Items))
	}
}

func TestShoppingListListWithItems(t *testing.T) {
	ss := setupShoppingTestDB(t)
	ctx := context.Background()

	first, _ := ss.CreateList(ctx, alice, "First", true)
	second, _ := ss.CreateList(ctx, alice, "Second", false)
	ss.CreateList(ctx, bob, "Bob's", true)

	ss.AddItem(ctx, alice, first.ID, "Eggs", 12, "pieces", nil)
	ss.AddItem(ctx, alice, first.ID, "Flour", 1, "kg", nil)
	ss.AddItem(ctx, alice, second.ID, "Tea", 1, "pieces", nil)

	lists, err := ss.ListWithItems(ctx, alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lists) != 2 {
		t.Fatalf("lists = %d, want 2", len(lists))
	}
	if lists[0].ID != second.ID {
		t.Errorf("first list = %q, want newest %q", lists[0].Name, "Second")
	}
	if len(lists[0].Items) != 1 || len(lists[1].Items) != 2 {
		t.Errorf("item counts = %d, %d; want 1, 2", len(lists[0].Items), len(lists[1].Items))
	}
	if lists[1].Items[0].ItemName != "Eggs" {
		t.Errorf("items out of creation order: %q first", lists[1].Items[0].ItemName)
	}
}

func TestShoppingListSetPurchased(t *testing.T) {
	ss := setupShoppingTestDB(t)
	ctx := context.Background()

	l, _ := ss.CreateList(ctx, alice, "Weekly", true)
	item, _ := ss.AddItem(ctx, alice, l.ID, "Milk", 1, "l", nil)

	updated, err := ss.SetPurchased(ctx, alice, item.ID, true, item.Version)
	if err != nil {
		t.Fatalf("set purchased: %v", err)
	}
	if !updated.IsPurchased || updated.Version != item.Version+1 {
		t.Errorf("unexpected item: %+v", updated)
	}
}

func TestShoppingListSetPurchasedConflict(t *testing.T) {
	ss := setupShoppingTestDB(t)
	ctx := context.Background()

	l, _ := ss.CreateList(ctx, alice, "Weekly", true)
	item, _ := ss.AddItem(ctx, alice, l.ID, "Milk", 1, "l", nil)

	// Two clients read version 1; the first write wins.
	if _, err := ss.SetPurchased(ctx, alice, item.ID, true, 1); err != nil {
		t.Fatalf("first write: %v", err)
	}
	current, err := ss.SetPurchased(ctx, alice, item.ID, false, 1)
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("err = %v, want ErrVersionConflict", err)
	}
	if current == nil || !current.IsPurchased || current.Version != 2 {
		t.Errorf("current = %+v, want purchased at version 2", current)
	}
}

func TestShoppingListSetPurchasedOtherOwner(t *testing.T) {
	ss := setupShoppingTestDB(t)
	ctx := context.Background()

	l, _ := ss.CreateList(ctx, alice, "Weekly", true)
	item, _ := ss.AddItem(ctx, alice, l.ID, "Milk", 1, "l", nil)

	got, err := ss.SetPurchased(ctx, bob, item.ID, true, 1)
	if err != nil {
		t.Fatalf("set purchased: %v", err)
	}
	if got != nil {
		t.Error("bob should not see alice's item")
	}
	still, _ := ss.GetItem(ctx, alice, item.ID)
	if still.IsPurchased {
		t.Error("alice's item changed")
	}
}
