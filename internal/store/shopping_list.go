package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ecopantry/ecopantry/internal/auth"
	"github.com/ecopantry/ecopantry/internal/model"
)

type ShoppingListStore struct {
	db *sql.DB
}

func NewShoppingListStore(db *sql.DB) *ShoppingListStore {
	return &ShoppingListStore{db: db}
}

// --- List methods ---

func scanShoppingList(s scanner) (*model.ShoppingList, error) {
	var l model.ShoppingList
	var active int
	if err := s.Scan(&l.ID, &l.UserID, &l.Name, &active, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.IsActive = active != 0
	l.Items = []model.ShoppingListItem{}
	return &l, nil
}

const shoppingListCols = `id, user_id, name, is_active, created_at`

func (s *ShoppingListStore) CreateList(ctx context.Context, c auth.Caller, name string, isActive bool) (*model.ShoppingList, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}

	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shopping_lists (`+shoppingListCols+`) VALUES (?, ?, ?, ?, ?)`,
		id, c.UserID, name, boolInt(isActive), now(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert shopping list: %w", err)
	}
	return s.GetList(ctx, c, id)
}

// GetList returns one list with its items, or nil if the caller has no such list.
func (s *ShoppingListStore) GetList(ctx context.Context, c auth.Caller, id string) (*model.ShoppingList, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+shoppingListCols+` FROM shopping_lists WHERE id = ? AND user_id = ?`, id, c.UserID)
	l, err := scanShoppingList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping list: %w", err)
	}

	items, err := s.listItems(ctx, `WHERE i.list_id = ? AND l.user_id = ?`, id, c.UserID)
	if err != nil {
		return nil, err
	}
	l.Items = append(l.Items, items...)
	return l, nil
}

// ListWithItems returns the caller's lists newest first, each with its items
// in creation order.
func (s *ShoppingListStore) ListWithItems(ctx context.Context, c auth.Caller) ([]model.ShoppingList, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+shoppingListCols+` FROM shopping_lists WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
		c.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shopping lists: %w", err)
	}

	lists := []model.ShoppingList{}
	index := make(map[string]int)
	for rows.Next() {
		l, err := scanShoppingList(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan shopping list: %w", err)
		}
		index[l.ID] = len(lists)
		lists = append(lists, *l)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	items, err := s.listItems(ctx, `WHERE l.user_id = ?`, c.UserID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if i, ok := index[item.ListID]; ok {
			lists[i].Items = append(lists[i].Items, item)
		}
	}
	return lists, nil
}

// --- Item methods ---

func scanShoppingListItem(s scanner) (*model.ShoppingListItem, error) {
	var item model.ShoppingListItem
	var category sql.NullString
	var purchased int

	err := s.Scan(
		&item.ID, &item.ListID, &item.ItemName, &item.Quantity, &item.Unit,
		&category, &purchased, &item.Version, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Category = stringPtr(category)
	item.IsPurchased = purchased != 0
	return &item, nil
}

const shoppingItemCols = `i.id, i.list_id, i.item_name, i.quantity, i.unit, i.category, i.is_purchased, i.version, i.created_at`

func (s *ShoppingListStore) listItems(ctx context.Context, where string, args ...any) ([]model.ShoppingListItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+shoppingItemCols+` FROM shopping_list_items i JOIN shopping_lists l ON l.id = i.list_id `+
			where+` ORDER BY i.created_at ASC, i.rowid ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list shopping list items: %w", err)
	}
	defer rows.Close()

	var items []model.ShoppingListItem
	for rows.Next() {
		item, err := scanShoppingListItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping list item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *ShoppingListStore) GetItem(ctx context.Context, c auth.Caller, id string) (*model.ShoppingListItem, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+shoppingItemCols+` FROM shopping_list_items i JOIN shopping_lists l ON l.id = i.list_id
		 WHERE i.id = ? AND l.user_id = ?`,
		id, c.UserID,
	)
	item, err := scanShoppingListItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping list item: %w", err)
	}
	return item, nil
}

// AddItem appends an item to one of the caller's lists. It returns nil when
// the list does not exist or belongs to someone else.
func (s *ShoppingListStore) AddItem(ctx context.Context, c auth.Caller, listID, name string, quantity float64, unit string, category *string) (*model.ShoppingListItem, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}

	id := newID()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO shopping_list_items (id, list_id, item_name, quantity, unit, category, created_at)
		 SELECT ?, id, ?, ?, ?, ?, ? FROM shopping_lists WHERE id = ? AND user_id = ?`,
		id, name, quantity, unit, nullString(category), now(), listID, c.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert shopping list item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetItem(ctx, c, id)
}

// SetPurchased writes the purchased state of an item if its stored version
// still equals expectedVersion, bumping the version on success. It returns
// nil when the item is not visible to the caller and ErrVersionConflict when
// another write got there first.
func (s *ShoppingListStore) SetPurchased(ctx context.Context, c auth.Caller, id string, purchased bool, expectedVersion int64) (*model.ShoppingListItem, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE shopping_list_items SET is_purchased = ?, version = version + 1
		 WHERE id = ? AND version = ? AND list_id IN (SELECT id FROM shopping_lists WHERE user_id = ?)`,
		boolInt(purchased), id, expectedVersion, c.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("set purchased: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}

	item, err := s.GetItem(ctx, c, id)
	if err != nil {
		return nil, err
	}
	if n == 0 && item != nil {
		return item, ErrVersionConflict
	}
	return item, nil
}
