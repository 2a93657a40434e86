package store

import (
	"database/sql"
	"fmt"

	"github.com/rfinnegan/boxroom/internal/model"
)

type LabelStore struct {
	db DBTX
}

func NewLabelStore(db DBTX) *LabelStore {
	return &LabelStore{db: db}
}

func (s *LabelStore) WithTx(tx *sql.Tx) *LabelStore {
	return &LabelStore{db: tx}
}

const labelCols = `id, household_id, name, emoji, color, created_at, updated_at`

func scanLabel(scanner interface{ Scan(...any) error }) (*model.InventoryLabel, error) {
	var l model.InventoryLabel
	err := scanner.Scan(&l.ID, &l.HouseholdID, &l.Name, &l.Emoji, &l.Color, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *LabelStore) Create(householdID int64, name, emoji, color string) (*model.InventoryLabel, error) {
	result, err := s.db.Exec(
		`INSERT INTO inventory_labels (household_id, name, emoji, color) VALUES (?, ?, ?, ?)`,
		householdID, name, emoji, color,
	)
	if err != nil {
		return nil, fmt.Errorf("insert label: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *LabelStore) GetByID(id int64) (*model.InventoryLabel, error) {
	row := s.db.QueryRow(`SELECT `+labelCols+` FROM inventory_labels WHERE id = ?`, id)
	l, err := scanLabel(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get label: %w", err)
	}
	return l, nil
}

func (s *LabelStore) ListByHousehold(householdID int64) ([]model.InventoryLabel, error) {
	rows, err := s.db.Query(
		`SELECT `+labelCols+` FROM inventory_labels WHERE household_id = ? ORDER BY name ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	defer rows.Close()

	var labels []model.InventoryLabel
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		labels = append(labels, *l)
	}
	return labels, rows.Err()
}

func (s *LabelStore) Update(id int64, name, emoji, color string) (*model.InventoryLabel, error) {
	_, err := s.db.Exec(
		`UPDATE inventory_labels SET name = ?, emoji = ?, color = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, emoji, color, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update label: %w", err)
	}
	return s.GetByID(id)
}

func (s *LabelStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM inventory_labels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete label: %w", err)
	}
	return nil
}
