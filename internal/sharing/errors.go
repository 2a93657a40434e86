package sharing

import "errors"

var (
	// ErrAccessDenied is returned by guarded mutations when the acting
	// member's access state for the destination is inaccessible.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound is returned when a referenced household, home, member,
	// invite, or item does not exist.
	ErrNotFound = errors.New("not found")

	ErrInviteUsed    = errors.New("invite already accepted")
	ErrInviteExpired = errors.New("invite expired")
	ErrMemberRevoked = errors.New("member is revoked")
)
