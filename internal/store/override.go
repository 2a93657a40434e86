package store

import (
	"database/sql"
	"fmt"

	"github.com/rfinnegan/boxroom/internal/model"
)

type OverrideStore struct {
	db DBTX
}

func NewOverrideStore(db DBTX) *OverrideStore {
	return &OverrideStore{db: db}
}

func (s *OverrideStore) WithTx(tx *sql.Tx) *OverrideStore {
	return &OverrideStore{db: tx}
}

const overrideCols = `id, household_id, home_id, member_id, decision, created_at`

func scanOverride(scanner interface{ Scan(...any) error }) (*model.HomeAccessOverride, error) {
	var o model.HomeAccessOverride
	var decision string
	err := scanner.Scan(&o.ID, &o.HouseholdID, &o.HomeID, &o.MemberID, &decision, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	o.Decision, err = model.ParseOverrideDecision(decision)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Set records an override for a (home, member) pair. Prior rows for the pair
// are removed first so the table tends toward one row per pair, but readers
// never rely on that.
func (s *OverrideStore) Set(householdID, homeID, memberID int64, decision model.OverrideDecision) (*model.HomeAccessOverride, error) {
	if _, err := s.db.Exec(
		`DELETE FROM home_access_overrides WHERE home_id = ? AND member_id = ?`,
		homeID, memberID,
	); err != nil {
		return nil, fmt.Errorf("clear prior overrides: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO home_access_overrides (household_id, home_id, member_id, decision) VALUES (?, ?, ?, ?)`,
		householdID, homeID, memberID, string(decision),
	)
	if err != nil {
		return nil, fmt.Errorf("insert override: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+overrideCols+` FROM home_access_overrides WHERE id = ?`, id)
	return scanOverride(row)
}

// Effective returns the override consulted for a (home, member) pair, or nil
// if none exists. With duplicate rows the most recently inserted wins.
func (s *OverrideStore) Effective(homeID, memberID int64) (*model.HomeAccessOverride, error) {
	row := s.db.QueryRow(
		`SELECT `+overrideCols+` FROM home_access_overrides
		 WHERE home_id = ? AND member_id = ?
		 ORDER BY id DESC LIMIT 1`,
		homeID, memberID,
	)
	o, err := scanOverride(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("effective override: %w", err)
	}
	return o, nil
}

func (s *OverrideStore) Clear(homeID, memberID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM home_access_overrides WHERE home_id = ? AND member_id = ?`,
		homeID, memberID,
	)
	if err != nil {
		return fmt.Errorf("clear override: %w", err)
	}
	return nil
}

func (s *OverrideStore) ListByHome(homeID int64) ([]model.HomeAccessOverride, error) {
	rows, err := s.db.Query(
		`SELECT `+overrideCols+` FROM home_access_overrides WHERE home_id = ? ORDER BY id ASC`,
		homeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()

	var overrides []model.HomeAccessOverride
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		overrides = append(overrides, *o)
	}
	return overrides, rows.Err()
}

func (s *OverrideStore) CountByMember(memberID int64) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM home_access_overrides WHERE member_id = ?`,
		memberID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count overrides: %w", err)
	}
	return count, nil
}

// DeleteStale removes every override whose member no longer exists or is
// revoked. Returns the number of rows removed.
func (s *OverrideStore) DeleteStale() (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM home_access_overrides WHERE member_id NOT IN (
		     SELECT id FROM household_members WHERE status = 'active'
		 )`,
	)
	if err != nil {
		return 0, fmt.Errorf("delete stale overrides: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
