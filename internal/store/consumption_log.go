package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ecopantry/ecopantry/internal/auth"
	"github.com/ecopantry/ecopantry/internal/model"
)

type ConsumptionLogStore struct {
	db *sql.DB
}

func NewConsumptionLogStore(db *sql.DB) *ConsumptionLogStore {
	return &ConsumptionLogStore{db: db}
}

func scanConsumptionLog(s scanner) (*model.ConsumptionLog, error) {
	var l model.ConsumptionLog
	var foodItemID, wasteReason sql.NullString
	var date string
	var isWaste int

	err := s.Scan(
		&l.ID, &l.UserID, &foodItemID, &l.ItemName, &l.QuantityConsumed,
		&date, &isWaste, &wasteReason, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.FoodItemID = stringPtr(foodItemID)
	l.WasteReason = stringPtr(wasteReason)
	l.IsWaste = isWaste != 0
	if l.ConsumptionDate, err = model.ParseDate(date); err != nil {
		return nil, err
	}
	return &l, nil
}

const consumptionLogCols = `id, user_id, food_item_id, item_name, quantity_consumed, consumption_date, is_waste, waste_reason, created_at`

func insertConsumptionLog(ctx context.Context, q execer, c auth.Caller, in model.ConsumptionLogInput) (*model.ConsumptionLog, error) {
	id := newID()
	_, err := q.ExecContext(ctx,
		`INSERT INTO consumption_logs (`+consumptionLogCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, c.UserID, nullString(in.FoodItemID), in.ItemName, in.QuantityConsumed,
		in.ConsumptionDate.String(), boolInt(in.IsWaste), nullString(in.WasteReason), now(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert consumption log: %w", err)
	}

	row := q.QueryRowContext(ctx, `SELECT `+consumptionLogCols+` FROM consumption_logs WHERE id = ?`, id)
	l, err := scanConsumptionLog(row)
	if err != nil {
		return nil, fmt.Errorf("get consumption log: %w", err)
	}
	return l, nil
}

// Create inserts a consumption log. A referenced food item must belong to the
// caller; otherwise the reference is dropped and only the name is kept.
func (s *ConsumptionLogStore) Create(ctx context.Context, c auth.Caller, in model.ConsumptionLogInput) (*model.ConsumptionLog, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}

	if in.FoodItemID != nil {
		item, err := getFoodItem(ctx, s.db, c, *in.FoodItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			in.FoodItemID = nil
		}
	}
	return insertConsumptionLog(ctx, s.db, c, in)
}

// List returns the caller's logs newest first. A limit <= 0 returns all rows.
func (s *ConsumptionLogStore) List(ctx context.Context, c auth.Caller, limit int) ([]model.ConsumptionLog, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}

	query := `SELECT ` + consumptionLogCols + ` FROM consumption_logs WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`
	args := []any{c.UserID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list consumption logs: %w", err)
	}
	defer rows.Close()

	logs := []model.ConsumptionLog{}
	for rows.Next() {
		l, err := scanConsumptionLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan consumption log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}
