package sharing

import (
	"fmt"

	"github.com/rfinnegan/boxroom/internal/model"
)

// MoveItem reassigns an item to a destination home, but only if the acting
// member's access state for that home is accessible. The evaluation and the
// write share one transaction: on denial nothing is mutated, and the decision
// cannot go stale between check and write.
func (s *Service) MoveItem(itemID, destinationHomeID, actingMemberID int64, flags Flags) (*model.InventoryItem, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	items := s.items.WithTx(tx)

	item, err := items.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}

	home, err := s.homes.WithTx(tx).GetByID(destinationHomeID)
	if err != nil {
		return nil, err
	}
	if home == nil {
		return nil, fmt.Errorf("home %d: %w", destinationHomeID, ErrNotFound)
	}

	household, err := s.households.WithTx(tx).GetByID(home.HouseholdID)
	if err != nil {
		return nil, err
	}
	if household == nil {
		return nil, fmt.Errorf("household %d: %w", home.HouseholdID, ErrNotFound)
	}

	member, err := s.members.WithTx(tx).GetByID(actingMemberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, fmt.Errorf("member %d: %w", actingMemberID, ErrNotFound)
	}

	override, err := s.overrides.WithTx(tx).Effective(home.ID, member.ID)
	if err != nil {
		return nil, err
	}

	state := resolveAccess(accessInput{
		flags:     flags,
		household: *household,
		home:      *home,
		member:    *member,
		override:  override,
	})
	if !state.IsAccessible {
		return nil, fmt.Errorf("member %d cannot move item to home %d (source %s): %w",
			actingMemberID, destinationHomeID, state.Source, ErrAccessDenied)
	}

	if err := items.SetHome(item.ID, home.ID); err != nil {
		return nil, err
	}

	moved, err := items.GetByID(item.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit move: %w", err)
	}

	s.logger.Info("item moved", "item_id", itemID, "home_id", destinationHomeID, "member_id", actingMemberID)
	return moved, nil
}
