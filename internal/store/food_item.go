package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ecopantry/ecopantry/internal/auth"
	"github.com/ecopantry/ecopantry/internal/model"
)

type FoodItemStore struct {
	db *sql.DB
}

func NewFoodItemStore(db *sql.DB) *FoodItemStore {
	return &FoodItemStore{db: db}
}

func scanFoodItem(s scanner) (*model.FoodItem, error) {
	var item model.FoodItem
	var notes, barcode, purchase, expiry sql.NullString

	err := s.Scan(
		&item.ID, &item.UserID, &item.Name, &item.Category, &item.Quantity, &item.Unit,
		&item.Location, &notes, &barcode, &purchase, &expiry, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Notes = stringPtr(notes)
	item.Barcode = stringPtr(barcode)
	if item.PurchaseDate, err = datePtr(purchase); err != nil {
		return nil, err
	}
	if item.ExpiryDate, err = datePtr(expiry); err != nil {
		return nil, err
	}
	return &item, nil
}

const foodItemCols = `id, user_id, name, category, quantity, unit, location, notes, barcode, purchase_date, expiry_date, created_at, updated_at`

func (s *FoodItemStore) Create(ctx context.Context, c auth.Caller, in model.FoodItemInput) (*model.FoodItem, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}

	id := newID()
	ts := now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO food_items (`+foodItemCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, c.UserID, in.Name, in.Category, in.Quantity, in.Unit, in.Location,
		nullString(in.Notes), nullString(in.Barcode), dateArg(in.PurchaseDate), dateArg(in.ExpiryDate), ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("insert food item: %w", err)
	}
	return s.GetByID(ctx, c, id)
}

func (s *FoodItemStore) GetByID(ctx context.Context, c auth.Caller, id string) (*model.FoodItem, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}
	return getFoodItem(ctx, s.db, c, id)
}

func getFoodItem(ctx context.Context, q execer, c auth.Caller, id string) (*model.FoodItem, error) {
	row := q.QueryRowContext(ctx, `SELECT `+foodItemCols+` FROM food_items WHERE id = ? AND user_id = ?`, id, c.UserID)
	item, err := scanFoodItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get food item: %w", err)
	}
	return item, nil
}

// List returns the caller's food items, newest first unless f.Sort says otherwise.
func (s *FoodItemStore) List(ctx context.Context, c auth.Caller, f model.FoodItemFilter) ([]model.FoodItem, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}

	query := `SELECT ` + foodItemCols + ` FROM food_items WHERE user_id = ?`
	args := []any{c.UserID}
	if f.Search != "" {
		query += ` AND name LIKE ? ESCAPE '\'`
		args = append(args, likePattern(f.Search))
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Location != "" {
		query += ` AND location = ?`
		args = append(args, f.Location)
	}

	switch f.Sort {
	case "name":
		query += ` ORDER BY name COLLATE NOCASE ASC, created_at DESC`
	case "expiry":
		query += ` ORDER BY expiry_date IS NULL, expiry_date ASC, created_at DESC`
	default:
		query += ` ORDER BY created_at DESC, rowid DESC`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list food items: %w", err)
	}
	defer rows.Close()

	items := []model.FoodItem{}
	for rows.Next() {
		item, err := scanFoodItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan food item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Update overwrites the editable fields of an item. It returns nil when the
// item does not exist or belongs to someone else.
func (s *FoodItemStore) Update(ctx context.Context, c auth.Caller, id string, in model.FoodItemInput) (*model.FoodItem, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE food_items SET name = ?, category = ?, quantity = ?, unit = ?, location = ?, notes = ?, barcode = ?,
		 purchase_date = ?, expiry_date = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		in.Name, in.Category, in.Quantity, in.Unit, in.Location, nullString(in.Notes), nullString(in.Barcode),
		dateArg(in.PurchaseDate), dateArg(in.ExpiryDate), now(), id, c.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("update food item: %w", err)
	}
	return s.GetByID(ctx, c, id)
}

// Delete removes an item and reports whether a row was deleted.
func (s *FoodItemStore) Delete(ctx context.Context, c auth.Caller, id string) (bool, error) {
	if err := c.Require(); err != nil {
		return false, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM food_items WHERE id = ? AND user_id = ?`, id, c.UserID)
	if err != nil {
		return false, fmt.Errorf("delete food item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *FoodItemStore) Count(ctx context.Context, c auth.Caller) (int, error) {
	if err := c.Require(); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM food_items WHERE user_id = ?`, c.UserID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count food items: %w", err)
	}
	return count, nil
}

// CountExpiringOnOrBefore counts items whose expiry date is on or before
// cutoff, including items that have already expired.
func (s *FoodItemStore) CountExpiringOnOrBefore(ctx context.Context, c auth.Caller, cutoff model.Date) (int, error) {
	if err := c.Require(); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM food_items WHERE user_id = ? AND expiry_date IS NOT NULL AND expiry_date <= ?`,
		c.UserID, cutoff.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count expiring food items: %w", err)
	}
	return count, nil
}

// Consume records a consumption log for the item and decrements its quantity
// in one transaction. A zero quantity, or one larger than the stock, consumes
// whatever is left. When nothing remains the item is removed and the returned
// item is nil.
func (s *FoodItemStore) Consume(ctx context.Context, c auth.Caller, id string, quantity float64, date model.Date, isWaste bool, wasteReason *string) (*model.ConsumptionLog, *model.FoodItem, error) {
	if err := c.Require(); err != nil {
		return nil, nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin consume: %w", err)
	}
	defer tx.Rollback()

	item, err := getFoodItem(ctx, tx, c, id)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, nil
	}

	if quantity <= 0 || quantity > item.Quantity {
		quantity = item.Quantity
	}

	itemID := item.ID
	log, err := insertConsumptionLog(ctx, tx, c, model.ConsumptionLogInput{
		FoodItemID:       &itemID,
		ItemName:         item.Name,
		QuantityConsumed: quantity,
		ConsumptionDate:  date,
		IsWaste:          isWaste,
		WasteReason:      wasteReason,
	})
	if err != nil {
		return nil, nil, err
	}

	remaining := item.Quantity - quantity
	if remaining <= 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM food_items WHERE id = ? AND user_id = ?`, id, c.UserID); err != nil {
			return nil, nil, fmt.Errorf("delete consumed food item: %w", err)
		}
		item = nil
	} else {
		if _, err := tx.ExecContext(ctx,
			`UPDATE food_items SET quantity = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
			remaining, now(), id, c.UserID,
		); err != nil {
			return nil, nil, fmt.Errorf("decrement food item: %w", err)
		}
		if item, err = getFoodItem(ctx, tx, c, id); err != nil {
			return nil, nil, err
		}
	}

	// The log row keeps the item name even when the item itself is gone.
	if item == nil {
		log.FoodItemID = nil
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit consume: %w", err)
	}
	return log, item, nil
}
