package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ecopantry/ecopantry/internal/auth"
	"github.com/ecopantry/ecopantry/internal/model"
)

type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

const profileCols = `id, email, full_name, household_name, created_at, updated_at`

func (s *ProfileStore) Get(ctx context.Context, c auth.Caller) (*model.Profile, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}

	var p model.Profile
	var fullName, household sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT `+profileCols+` FROM profiles WHERE id = ?`, c.UserID).
		Scan(&p.ID, &p.Email, &fullName, &household, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.FullName = stringPtr(fullName)
	p.HouseholdName = stringPtr(household)
	return &p, nil
}

// Upsert creates or replaces the caller's profile, keyed by the caller id.
func (s *ProfileStore) Upsert(ctx context.Context, c auth.Caller, email string, fullName, householdName *string) (*model.Profile, error) {
	if err := c.Require(); err != nil {
		return nil, err
	}

	ts := now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (`+profileCols+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET email = excluded.email, full_name = excluded.full_name,
		 household_name = excluded.household_name, updated_at = excluded.updated_at`,
		c.UserID, email, nullString(fullName), nullString(householdName), ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return s.Get(ctx, c)
}
