// Package sharing implements the household access-control engine: per-home
// access evaluation, membership lifecycle, guarded item moves, and label
// visibility. All mutations run in a single transaction per call.
package sharing

import (
	"database/sql"
	"log/slog"

	"github.com/rfinnegan/boxroom/internal/store"
)

type Service struct {
	db         *sql.DB
	logger     *slog.Logger
	households *store.HouseholdStore
	homes      *store.HomeStore
	members    *store.MemberStore
	invites    *store.InviteStore
	overrides  *store.OverrideStore
	labels     *store.LabelStore
	items      *store.ItemStore
	settings   *store.SettingsStore
}

func NewService(db *sql.DB, logger *slog.Logger) *Service {
	return &Service{
		db:         db,
		logger:     logger,
		households: store.NewHouseholdStore(db),
		homes:      store.NewHomeStore(db),
		members:    store.NewMemberStore(db),
		invites:    store.NewInviteStore(db),
		overrides:  store.NewOverrideStore(db),
		labels:     store.NewLabelStore(db),
		items:      store.NewItemStore(db),
		settings:   store.NewSettingsStore(db),
	}
}

// ScopingFlags loads the evaluation flags for a household from its settings.
// Absent the setting, scoping is enabled.
func (s *Service) ScopingFlags(householdID int64) (Flags, error) {
	enabled, err := s.settings.GetBool(householdID, store.FlagScopingEnabled, true)
	if err != nil {
		return Flags{}, err
	}
	return Flags{FamilySharingScopingEnabled: enabled}, nil
}
