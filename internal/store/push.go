package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ecopantry/ecopantry/internal/auth"
	"github.com/ecopantry/ecopantry/internal/model"
)

type PushStore struct {
	db *sql.DB
}

func NewPushStore(db *sql.DB) *PushStore {
	return &PushStore{db: db}
}

const pushCols = `id, user_id, endpoint, p256dh_key, auth_key, device_name, created_at`

func scanSubscription(s scanner) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.DeviceName, &sub.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreateSubscription registers a browser endpoint for the caller. Re-subscribing
// an existing endpoint moves it to the caller and refreshes its keys.
func (s *PushStore) CreateSubscription(ctx context.Context, c auth.Caller, endpoint, p256dh, authKey, deviceName string) (*model.PushSubscription, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO push_subscriptions (`+pushCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET user_id = excluded.user_id, p256dh_key = excluded.p256dh_key,
		 auth_key = excluded.auth_key, device_name = excluded.device_name`,
		newID(), c.UserID, endpoint, p256dh, authKey, deviceName, now(),
	)
	if err != nil {
		return nil, fmt.Errorf("create push subscription: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+pushCols+` FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	sub, err := scanSubscription(row)
	if err != nil {
		return nil, fmt.Errorf("get push subscription: %w", err)
	}
	return sub, nil
}

func (s *PushStore) ListByUser(ctx context.Context, c auth.Caller) ([]model.PushSubscription, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+pushCols+` FROM push_subscriptions WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
		c.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []model.PushSubscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// Delete removes one of the caller's subscriptions. It reports false when no
// such subscription belongs to the caller.
func (s *PushStore) Delete(ctx context.Context, c auth.Caller, id string) (bool, error) {
	if err := c.Require(); err != nil {
		return false, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE id = ? AND user_id = ?`, id, c.UserID)
	if err != nil {
		return false, fmt.Errorf("delete push subscription: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteByEndpoint drops a subscription the push service reported as gone.
func (s *PushStore) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	if err != nil {
		return fmt.Errorf("delete push subscription by endpoint: %w", err)
	}
	return nil
}

// ListUserIDs returns the distinct owners that have at least one subscription.
func (s *PushStore) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM push_subscriptions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list push user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// WasNotified reports whether an expiry reminder for the item already went
// out on the given day.
func (s *PushStore) WasNotified(ctx context.Context, c auth.Caller, foodItemID string, on model.Date) (bool, error) {
	if err := c.Require(); err != nil {
		return false, err
	}

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expiry_notifications WHERE user_id = ? AND food_item_id = ? AND sent_on = ?`,
		c.UserID, foodItemID, on.String(),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check expiry notification: %w", err)
	}
	return n > 0, nil
}

func (s *PushStore) MarkNotified(ctx context.Context, c auth.Caller, foodItemID string, on model.Date) error {
	if err := c.Require(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO expiry_notifications (user_id, food_item_id, sent_on) VALUES (?, ?, ?)`,
		c.UserID, foodItemID, on.String(),
	)
	if err != nil {
		return fmt.Errorf("record expiry notification: %w", err)
	}
	return nil
}

// CleanupNotified removes reminder records older than before.
func (s *PushStore) CleanupNotified(ctx context.Context, before model.Date) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM expiry_notifications WHERE sent_on < ?`, before.String())
	if err != nil {
		return fmt.Errorf("cleanup expiry notifications: %w", err)
	}
	return nil
}
