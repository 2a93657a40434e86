package sharing

import (
	"fmt"

	"github.com/rfinnegan/boxroom/internal/model"
)

const (
	defaultHouseholdName = "My Household"
	defaultHomeName      = "My Home"
	defaultOwnerName     = "Owner"
)

// seedLabels is the starter label set for a fresh household.
var seedLabels = []struct {
	name  string
	emoji string
	color string
}{
	{"Electronics", "💻", "#3B82F6"},
	{"Furniture", "🛋️", "#8B5CF6"},
	{"Kitchen", "🍳", "#F59E0B"},
	{"Clothing", "👕", "#EC4899"},
	{"Books", "📚", "#10B981"},
	{"Tools", "🔧", "#6B7280"},
	{"Decor", "🖼️", "#EF4444"},
}

// EnsureBootstrap guarantees one household with one owner member exists and
// returns the household id. Idempotent: if a household already exists it is
// returned untouched. The existence check and the creation run in one write
// transaction, so concurrent first launches never create two households.
func (s *Service) EnsureBootstrap() (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	households := s.households.WithTx(tx)

	existing, err := households.First()
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	household, err := households.Create(defaultHouseholdName, model.PolicyAllHomesShared)
	if err != nil {
		return 0, err
	}

	if _, err := s.members.WithTx(tx).Create(household.ID, defaultOwnerName, "", model.RoleOwner); err != nil {
		return 0, err
	}

	if _, err := s.homes.WithTx(tx).Create(household.ID, defaultHomeName, false); err != nil {
		return 0, err
	}

	labels := s.labels.WithTx(tx)
	for _, l := range seedLabels {
		if _, err := labels.Create(household.ID, l.name, l.emoji, l.color); err != nil {
			return 0, fmt.Errorf("seed label %q: %w", l.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bootstrap: %w", err)
	}

	s.logger.Info("bootstrapped household", "household_id", household.ID)
	return household.ID, nil
}
