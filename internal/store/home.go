package store

import (
	"database/sql"
	"fmt"

	"github.com/rfinnegan/boxroom/internal/model"
)

type HomeStore struct {
	db DBTX
}

func NewHomeStore(db DBTX) *HomeStore {
	return &HomeStore{db: db}
}

func (s *HomeStore) WithTx(tx *sql.Tx) *HomeStore {
	return &HomeStore{db: tx}
}

const homeCols = `id, household_id, name, is_private, created_at, updated_at`

func scanHome(scanner interface{ Scan(...any) error }) (*model.Home, error) {
	var h model.Home
	err := scanner.Scan(&h.ID, &h.HouseholdID, &h.Name, &h.IsPrivate, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *HomeStore) Create(householdID int64, name string, isPrivate bool) (*model.Home, error) {
	result, err := s.db.Exec(
		`INSERT INTO homes (household_id, name, is_private) VALUES (?, ?, ?)`,
		householdID, name, isPrivate,
	)
	if err != nil {
		return nil, fmt.Errorf("insert home: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *HomeStore) GetByID(id int64) (*model.Home, error) {
	row := s.db.QueryRow(`SELECT `+homeCols+` FROM homes WHERE id = ?`, id)
	h, err := scanHome(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get home: %w", err)
	}
	return h, nil
}

func (s *HomeStore) ListByHousehold(householdID int64) ([]model.Home, error) {
	rows, err := s.db.Query(
		`SELECT `+homeCols+` FROM homes WHERE household_id = ? ORDER BY created_at ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list homes: %w", err)
	}
	defer rows.Close()

	var homes []model.Home
	for rows.Next() {
		h, err := scanHome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan home: %w", err)
		}
		homes = append(homes, *h)
	}
	return homes, rows.Err()
}

func (s *HomeStore) SetPrivate(id int64, isPrivate bool) (*model.Home, error) {
	_, err := s.db.Exec(
		`UPDATE homes SET is_private = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		isPrivate, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set home private: %w", err)
	}
	return s.GetByID(id)
}

func (s *HomeStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM homes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete home: %w", err)
	}
	return nil
}
