package sharing

import (
	"fmt"
	"time"

	"github.com/rfinnegan/boxroom/internal/model"
)

// CreateInvite records an invite for the household. Membership is untouched
// until the invite is accepted.
func (s *Service) CreateInvite(householdID int64, displayName, email string) (*model.Invite, error) {
	household, err := s.households.GetByID(householdID)
	if err != nil {
		return nil, err
	}
	if household == nil {
		return nil, fmt.Errorf("household %d: %w", householdID, ErrNotFound)
	}
	return s.invites.Create(householdID, displayName, email)
}

// AcceptInvite consumes an invite by token and materializes a new active
// member with role member. A previously revoked member with the same display
// name or email is never reused; acceptance always mints a fresh identity.
func (s *Service) AcceptInvite(token string) (*model.HouseholdMember, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	invites := s.invites.WithTx(tx)

	invite, err := invites.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if invite == nil {
		return nil, fmt.Errorf("invite: %w", ErrNotFound)
	}
	if invite.AcceptedAt != nil {
		return nil, ErrInviteUsed
	}
	if time.Now().After(invite.ExpiresAt) {
		return nil, ErrInviteExpired
	}

	member, err := s.members.WithTx(tx).Create(invite.HouseholdID, invite.DisplayName, invite.Email, model.RoleMember)
	if err != nil {
		return nil, err
	}

	if err := invites.MarkAccepted(invite.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit accept invite: %w", err)
	}

	s.logger.Info("invite accepted", "invite_id", invite.ID, "member_id", member.ID)
	return member, nil
}

// RevokeMember transitions a member to revoked. The member row is kept so
// history stays resolvable, and labels the member created are untouched.
// Revoking an already-revoked member is a no-op.
func (s *Service) RevokeMember(memberID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	members := s.members.WithTx(tx)

	member, err := members.GetByID(memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return fmt.Errorf("member %d: %w", memberID, ErrNotFound)
	}
	if member.Status == model.StatusRevoked {
		return nil
	}

	if err := members.SetStatus(memberID, model.StatusRevoked); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit revoke: %w", err)
	}

	s.logger.Info("member revoked", "member_id", memberID)
	return nil
}

// ReconcileStaleOverrides deletes every override whose member no longer
// exists or is revoked, and returns how many were removed. Overrides are
// cheap grants; aggressive cleanup keeps orphaned security state from
// surviving a membership change. Safe to call at any time.
func (s *Service) ReconcileStaleOverrides() (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	removed, err := s.overrides.WithTx(tx).DeleteStale()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reconcile: %w", err)
	}

	if removed > 0 {
		s.logger.Info("reconciled stale overrides", "removed", removed)
	}
	return removed, nil
}
