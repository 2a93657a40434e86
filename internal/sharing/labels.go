package sharing

import (
	"fmt"

	"github.com/rfinnegan/boxroom/internal/model"
)

// HouseholdLabels returns every label in the member's household. Label
// visibility is gated only by membership status, never by home privacy or
// overrides: a member denied access to every home still sees the household's
// shared label vocabulary.
func (s *Service) HouseholdLabels(memberID int64) ([]model.InventoryLabel, error) {
	member, err := s.members.GetByID(memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, fmt.Errorf("member %d: %w", memberID, ErrNotFound)
	}
	if member.Status == model.StatusRevoked {
		return nil, fmt.Errorf("member %d: %w", memberID, ErrMemberRevoked)
	}
	return s.labels.ListByHousehold(member.HouseholdID)
}
