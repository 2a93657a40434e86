package store

import (
	"testing"

	"github.com/rfinnegan/boxroom/internal/database"
	"github.com/rfinnegan/boxroom/internal/model"
)

type overrideFixture struct {
	households *HouseholdStore
	homes      *HomeStore
	members    *MemberStore
	overrides  *OverrideStore

	householdID int64
	homeID      int64
	memberID    int64
}

func setupOverrideTestDB(t *testing.T) *overrideFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &overrideFixture{
		households: NewHouseholdStore(db),
		homes:      NewHomeStore(db),
		members:    NewMemberStore(db),
		overrides:  NewOverrideStore(db),
	}

	h, err := f.households.Create("Test Household", model.PolicyAllHomesShared)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	f.householdID = h.ID

	home, err := f.homes.Create(h.ID, "Test Home", false)
	if err != nil {
		t.Fatalf("create home: %v", err)
	}
	f.homeID = home.ID

	m, err := f.members.Create(h.ID, "Alex", "alex@example.com", model.RoleMember)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	f.memberID = m.ID
	return f
}

func TestOverrideSetAndEffective(t *testing.T) {
	f := setupOverrideTestDB(t)

	o, err := f.overrides.Set(f.householdID, f.homeID, f.memberID, model.DecisionDeny)
	if err != nil {
		t.Fatalf("set override: %v", err)
	}
	if o.Decision != model.DecisionDeny {
		t.Errorf("decision = %q, want deny", o.Decision)
	}

	effective, err := f.overrides.Effective(f.homeID, f.memberID)
	if err != nil {
		t.Fatalf("effective: %v", err)
	}
	if effective == nil || effective.Decision != model.DecisionDeny {
		t.Errorf("effective = %+v, want deny", effective)
	}
}

func TestOverrideEffectiveNone(t *testing.T) {
	f := setupOverrideTestDB(t)

	o, err := f.overrides.Effective(f.homeID, f.memberID)
	if err != nil {
		t.Fatalf("effective: %v", err)
	}
	if o != nil {
		t.Error("expected nil with no override")
	}
}

func TestOverrideSetReplacesPrior(t *testing.T) {
	f := setupOverrideTestDB(t)

	if _, err := f.overrides.Set(f.householdID, f.homeID, f.memberID, model.DecisionDeny); err != nil {
		t.Fatalf("set deny: %v", err)
	}
	if _, err := f.overrides.Set(f.householdID, f.homeID, f.memberID, model.DecisionAllow); err != nil {
		t.Fatalf("set allow: %v", err)
	}

	list, err := f.overrides.ListByHome(f.homeID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("overrides = %d, want 1 after replace", len(list))
	}
	if list[0].Decision != model.DecisionAllow {
		t.Errorf("decision = %q, want allow", list[0].Decision)
	}
}

func TestOverrideClear(t *testing.T) {
	f := setupOverrideTestDB(t)

	if _, err := f.overrides.Set(f.householdID, f.homeID, f.memberID, model.DecisionAllow); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := f.overrides.Clear(f.homeID, f.memberID); err != nil {
		t.Fatalf("clear: %v", err)
	}

	o, err := f.overrides.Effective(f.homeID, f.memberID)
	if err != nil {
		t.Fatalf("effective: %v", err)
	}
	if o != nil {
		t.Error("expected nil after clear")
	}
}

func TestOverrideDeleteStale(t *testing.T) {
	f := setupOverrideTestDB(t)

	if _, err := f.overrides.Set(f.householdID, f.homeID, f.memberID, model.DecisionAllow); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := f.members.SetStatus(f.memberID, model.StatusRevoked); err != nil {
		t.Fatalf("revoke member: %v", err)
	}

	removed, err := f.overrides.DeleteStale()
	if err != nil {
		t.Fatalf("delete stale: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	count, err := f.overrides.CountByMember(f.memberID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}
