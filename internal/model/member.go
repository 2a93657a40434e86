package model

import "time"

type HouseholdMember struct {
	ID          int64        `json:"id"`
	HouseholdID int64        `json:"household_id"`
	DisplayName string       `json:"display_name"`
	Email       string       `json:"email"`
	Role        MemberRole   `json:"role"`
	Status      MemberStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Invite is an ephemeral record consumed exactly once by acceptance, which
// materializes a new active member. Re-inviting after revocation always
// produces a fresh member identity.
type Invite struct {
	ID          int64      `json:"id"`
	HouseholdID int64      `json:"household_id"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email"`
	Token       string     `json:"-"`
	ExpiresAt   time.Time  `json:"expires_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
