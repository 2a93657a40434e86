package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rfinnegan/boxroom/internal/model"
)

type InviteStore struct {
	db DBTX
}

func NewInviteStore(db DBTX) *InviteStore {
	return &InviteStore{db: db}
}

func (s *InviteStore) WithTx(tx *sql.Tx) *InviteStore {
	return &InviteStore{db: tx}
}

const inviteCols = `id, household_id, display_name, email, token, expires_at, accepted_at, created_at`

func scanInvite(scanner interface{ Scan(...any) error }) (*model.Invite, error) {
	var inv model.Invite
	var acceptedAt sql.NullTime
	err := scanner.Scan(
		&inv.ID, &inv.HouseholdID, &inv.DisplayName, &inv.Email,
		&inv.Token, &inv.ExpiresAt, &acceptedAt, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if acceptedAt.Valid {
		inv.AcceptedAt = &acceptedAt.Time
	}
	return &inv, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Create generates a new invite with a random token and 7-day expiry.
func (s *InviteStore) Create(householdID int64, displayName, email string) (*model.Invite, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(7 * 24 * time.Hour).UTC()

	result, err := s.db.Exec(
		`INSERT INTO invites (household_id, display_name, email, token, expires_at) VALUES (?, ?, ?, ?, ?)`,
		householdID, displayName, email, token, expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert invite: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *InviteStore) GetByID(id int64) (*model.Invite, error) {
	row := s.db.QueryRow(`SELECT `+inviteCols+` FROM invites WHERE id = ?`, id)
	inv, err := scanInvite(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get invite: %w", err)
	}
	return inv, nil
}

func (s *InviteStore) GetByToken(token string) (*model.Invite, error) {
	row := s.db.QueryRow(`SELECT `+inviteCols+` FROM invites WHERE token = ?`, token)
	inv, err := scanInvite(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get invite by token: %w", err)
	}
	return inv, nil
}

func (s *InviteStore) ListPending(householdID int64) ([]model.Invite, error) {
	rows, err := s.db.Query(
		`SELECT `+inviteCols+` FROM invites
		 WHERE household_id = ? AND accepted_at IS NULL AND expires_at > CURRENT_TIMESTAMP
		 ORDER BY created_at ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending invites: %w", err)
	}
	defer rows.Close()

	var invites []model.Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invite: %w", err)
		}
		invites = append(invites, *inv)
	}
	return invites, rows.Err()
}

func (s *InviteStore) MarkAccepted(id int64) error {
	_, err := s.db.Exec(
		`UPDATE invites SET accepted_at = CURRENT_TIMESTAMP WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark invite accepted: %w", err)
	}
	return nil
}
