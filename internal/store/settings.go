package store

import (
	"database/sql"
	"fmt"
	"time"
)

// FlagScopingEnabled is the settings key toggling family-sharing scoping for
// a household. When "false", every access evaluation collapses to accessible.
const FlagScopingEnabled = "family_sharing_scoping_enabled"

type SettingsStore struct {
	db DBTX
}

func NewSettingsStore(db DBTX) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) WithTx(tx *sql.Tx) *SettingsStore {
	return &SettingsStore{db: tx}
}

func (s *SettingsStore) Get(householdID int64, key string) (string, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM settings WHERE household_id = ? AND key = ?`,
		householdID, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("setting %q not found", key)
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

// GetBool reads a boolean setting, returning fallback when the key is absent.
func (s *SettingsStore) GetBool(householdID int64, key string, fallback bool) (bool, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM settings WHERE household_id = ? AND key = ?`,
		householdID, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("get setting %q: %w", key, err)
	}
	return value == "true", nil
}

func (s *SettingsStore) GetAll(householdID int64) (map[string]string, error) {
	rows, err := s.db.Query(
		`SELECT key, value FROM settings WHERE household_id = ? ORDER BY key`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("get all settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

func (s *SettingsStore) Set(householdID int64, key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (household_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(household_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		householdID, key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}
