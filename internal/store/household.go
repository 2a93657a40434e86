package store

import (
	"database/sql"
	"fmt"

	"github.com/rfinnegan/boxroom/internal/model"
)

type HouseholdStore struct {
	db DBTX
}

func NewHouseholdStore(db DBTX) *HouseholdStore {
	return &HouseholdStore{db: db}
}

func (s *HouseholdStore) WithTx(tx *sql.Tx) *HouseholdStore {
	return &HouseholdStore{db: tx}
}

const householdCols = `id, name, sharing_enabled, default_access_policy, created_at, updated_at`

func scanHousehold(scanner interface{ Scan(...any) error }) (*model.Household, error) {
	var h model.Household
	var policy string
	err := scanner.Scan(&h.ID, &h.Name, &h.SharingEnabled, &policy, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	h.DefaultPolicy, err = model.ParseAccessPolicy(policy)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *HouseholdStore) Create(name string, policy model.AccessPolicy) (*model.Household, error) {
	result, err := s.db.Exec(
		`INSERT INTO households (name, default_access_policy) VALUES (?, ?)`,
		name, string(policy),
	)
	if err != nil {
		return nil, fmt.Errorf("insert household: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *HouseholdStore) GetByID(id int64) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM households WHERE id = ?`, id)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

// First returns the oldest household, or nil if none exists. Bootstrap uses
// it for the idempotent existence check.
func (s *HouseholdStore) First() (*model.Household, error) {
	row := s.db.QueryRow(`SELECT ` + householdCols + ` FROM households ORDER BY id ASC LIMIT 1`)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("first household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) UpdateName(id int64, name string) (*model.Household, error) {
	_, err := s.db.Exec(
		`UPDATE households SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update household name: %w", err)
	}
	return s.GetByID(id)
}

func (s *HouseholdStore) SetSharingEnabled(id int64, enabled bool) error {
	_, err := s.db.Exec(
		`UPDATE households SET sharing_enabled = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		enabled, id,
	)
	if err != nil {
		return fmt.Errorf("set sharing enabled: %w", err)
	}
	return nil
}

func (s *HouseholdStore) SetDefaultPolicy(id int64, policy model.AccessPolicy) error {
	_, err := s.db.Exec(
		`UPDATE households SET default_access_policy = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(policy), id,
	)
	if err != nil {
		return fmt.Errorf("set default policy: %w", err)
	}
	return nil
}
