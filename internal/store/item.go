package store

import (
	"database/sql"
	"fmt"

	"github.com/rfinnegan/boxroom/internal/model"
)

type ItemStore struct {
	db DBTX
}

func NewItemStore(db DBTX) *ItemStore {
	return &ItemStore{db: db}
}

func (s *ItemStore) WithTx(tx *sql.Tx) *ItemStore {
	return &ItemStore{db: tx}
}

const itemCols = `id, home_id, label_id, title, notes, quantity, created_at, updated_at`

func scanItem(scanner interface{ Scan(...any) error }) (*model.InventoryItem, error) {
	var it model.InventoryItem
	var labelID sql.NullInt64
	err := scanner.Scan(&it.ID, &it.HomeID, &labelID, &it.Title, &it.Notes, &it.Quantity, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if labelID.Valid {
		it.LabelID = &labelID.Int64
	}
	return &it, nil
}

func (s *ItemStore) Create(homeID int64, labelID *int64, title, notes string, quantity int) (*model.InventoryItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO inventory_items (home_id, label_id, title, notes, quantity) VALUES (?, ?, ?, ?, ?)`,
		homeID, labelID, title, notes, quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ItemStore) GetByID(id int64) (*model.InventoryItem, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM inventory_items WHERE id = ?`, id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

func (s *ItemStore) ListByHome(homeID int64) ([]model.InventoryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM inventory_items WHERE home_id = ? ORDER BY title ASC`,
		homeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// SetHome reassigns an item to a home. Access checks live in the sharing
// service; this is the raw storage write.
func (s *ItemStore) SetHome(id, homeID int64) error {
	_, err := s.db.Exec(
		`UPDATE inventory_items SET home_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		homeID, id,
	)
	if err != nil {
		return fmt.Errorf("set item home: %w", err)
	}
	return nil
}

func (s *ItemStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM inventory_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}
