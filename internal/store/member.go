package store

import (
	"database/sql"
	"fmt"

	"github.com/rfinnegan/boxroom/internal/model"
)

type MemberStore struct {
	db DBTX
}

func NewMemberStore(db DBTX) *MemberStore {
	return &MemberStore{db: db}
}

func (s *MemberStore) WithTx(tx *sql.Tx) *MemberStore {
	return &MemberStore{db: tx}
}

const memberCols = `id, household_id, display_name, email, role, status, created_at, updated_at`

func scanMember(scanner interface{ Scan(...any) error }) (*model.HouseholdMember, error) {
	var m model.HouseholdMember
	var role, status string
	err := scanner.Scan(&m.ID, &m.HouseholdID, &m.DisplayName, &m.Email, &role, &status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if m.Role, err = model.ParseMemberRole(role); err != nil {
		return nil, err
	}
	if m.Status, err = model.ParseMemberStatus(status); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create always inserts a new row. A matching display name or email on a
// revoked member never resurrects the old identity.
func (s *MemberStore) Create(householdID int64, displayName, email string, role model.MemberRole) (*model.HouseholdMember, error) {
	result, err := s.db.Exec(
		`INSERT INTO household_members (household_id, display_name, email, role, status) VALUES (?, ?, ?, ?, ?)`,
		householdID, displayName, email, string(role), string(model.StatusActive),
	)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *MemberStore) GetByID(id int64) (*model.HouseholdMember, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM household_members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *MemberStore) ListByHousehold(householdID int64) ([]model.HouseholdMember, error) {
	rows, err := s.db.Query(
		`SELECT `+memberCols+` FROM household_members WHERE household_id = ? ORDER BY created_at ASC, id ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.HouseholdMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *MemberStore) SetStatus(id int64, status model.MemberStatus) error {
	_, err := s.db.Exec(
		`UPDATE household_members SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("set member status: %w", err)
	}
	return nil
}
