package sharing

import (
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/rfinnegan/boxroom/internal/database"
	"github.com/rfinnegan/boxroom/internal/model"
	"github.com/rfinnegan/boxroom/internal/store"
)

var scopingOn = Flags{FamilySharingScopingEnabled: true}
var scopingOff = Flags{FamilySharingScopingEnabled: false}

// setupService opens a file-backed test database: service operations span
// transactions on multiple pool connections, which an in-memory database
// (one database per connection) cannot serve.
func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewService(db, slog.Default())
}

// bootstrapped returns a service with a fresh household plus one invited
// member, and the ids of the household, seed home, owner, and member.
func bootstrapped(t *testing.T) (svc *Service, householdID, homeID, ownerID, memberID int64) {
	t.Helper()
	svc = setupService(t)

	householdID, err := svc.EnsureBootstrap()
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	homes, err := svc.homes.ListByHousehold(householdID)
	if err != nil {
		t.Fatalf("list homes: %v", err)
	}
	if len(homes) != 1 {
		t.Fatalf("seed homes = %d, want 1", len(homes))
	}
	homeID = homes[0].ID

	members, err := svc.members.ListByHousehold(householdID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	ownerID = members[0].ID

	invite, err := svc.CreateInvite(householdID, "Alex", "alex@example.com")
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	member, err := svc.AcceptInvite(invite.Token)
	if err != nil {
		t.Fatalf("accept invite: %v", err)
	}
	memberID = member.ID
	return svc, householdID, homeID, ownerID, memberID
}

func memberState(t *testing.T, states []model.MemberHomeAccessState, memberID int64) model.MemberHomeAccessState {
	t.Helper()
	for _, st := range states {
		if st.MemberID == memberID {
			return st
		}
	}
	t.Fatalf("no state for member %d", memberID)
	return model.MemberHomeAccessState{}
}

func TestResolveAccessPrecedence(t *testing.T) {
	household := model.Household{ID: 1, SharingEnabled: true, DefaultPolicy: model.PolicyAllHomesShared}
	scoped := model.Household{ID: 1, SharingEnabled: true, DefaultPolicy: model.PolicyOwnerScopesHomes}
	home := model.Home{ID: 10, HouseholdID: 1}
	privateHome := model.Home{ID: 11, HouseholdID: 1, IsPrivate: true}
	owner := model.HouseholdMember{ID: 100, Role: model.RoleOwner, Status: model.StatusActive}
	member := model.HouseholdMember{ID: 101, Role: model.RoleMember, Status: model.StatusActive}
	allow := &model.HomeAccessOverride{HomeID: 10, MemberID: 101, Decision: model.DecisionAllow}
	deny := &model.HomeAccessOverride{HomeID: 10, MemberID: 101, Decision: model.DecisionDeny}

	tests := []struct {
		name       string
		in         accessInput
		accessible bool
		source     model.AccessSource
	}{
		{
			name:       "flag disabled ignores deny override",
			in:         accessInput{flags: scopingOff, household: household, home: home, member: member, override: deny},
			accessible: true,
			source:     model.SourceInherited,
		},
		{
			name:       "flag disabled ignores private home",
			in:         accessInput{flags: scopingOff, household: household, home: privateHome, member: member},
			accessible: true,
			source:     model.SourceInherited,
		},
		{
			name: "household sharing toggle off ignores private home",
			in: accessInput{
				flags:     scopingOn,
				household: model.Household{ID: 1, SharingEnabled: false, DefaultPolicy: model.PolicyOwnerScopesHomes},
				home:      privateHome,
				member:    member,
			},
			accessible: true,
			source:     model.SourceInherited,
		},
		{
			name:       "owner bypasses private home",
			in:         accessInput{flags: scopingOn, household: household, home: privateHome, member: owner},
			accessible: true,
			source:     model.SourceInherited,
		},
		{
			name:       "private home beats allow override",
			in:         accessInput{flags: scopingOn, household: household, home: privateHome, member: member, override: allow},
			accessible: false,
			source:     model.SourcePrivateHome,
		},
		{
			name:       "deny override beats shared default",
			in:         accessInput{flags: scopingOn, household: household, home: home, member: member, override: deny},
			accessible: false,
			source:     model.SourceOverriddenDeny,
		},
		{
			name:       "allow override beats scoped default",
			in:         accessInput{flags: scopingOn, household: scoped, home: home, member: member, override: allow},
			accessible: true,
			source:     model.SourceOverriddenAllow,
		},
		{
			name:       "shared default grants access",
			in:         accessInput{flags: scopingOn, household: household, home: home, member: member},
			accessible: true,
			source:     model.SourceInherited,
		},
		{
			name:       "scoped default denies access",
			in:         accessInput{flags: scopingOn, household: scoped, home: home, member: member},
			accessible: false,
			source:     model.SourceInherited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := resolveAccess(tt.in)
			if state.IsAccessible != tt.accessible {
				t.Errorf("accessible = %v, want %v", state.IsAccessible, tt.accessible)
			}
			if state.Source != tt.source {
				t.Errorf("source = %q, want %q", state.Source, tt.source)
			}
			if state.MemberID != tt.in.member.ID {
				t.Errorf("member id = %d, want %d", state.MemberID, tt.in.member.ID)
			}
		})
	}
}

func TestLoadHomeAccessStatesOnePerMember(t *testing.T) {
	svc, _, homeID, ownerID, memberID := bootstrapped(t)

	states, err := svc.LoadHomeAccessStates(homeID, scopingOn)
	if err != nil {
		t.Fatalf("load access states: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("states = %d, want 2", len(states))
	}

	if st := memberState(t, states, ownerID); !st.IsAccessible {
		t.Error("owner should be accessible")
	}
	if st := memberState(t, states, memberID); !st.IsAccessible || st.Source != model.SourceInherited {
		t.Errorf("member state = %+v, want accessible/inherited under shared default", st)
	}
}

func TestLoadHomeAccessStatesHomeNotFound(t *testing.T) {
	svc, _, _, _, _ := bootstrapped(t)

	if _, err := svc.LoadHomeAccessStates(9999, scopingOn); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestOwnerScopedPolicyWithAllowOverride(t *testing.T) {
	svc, householdID, homeID, _, memberID := bootstrapped(t)

	if err := svc.households.SetDefaultPolicy(householdID, model.PolicyOwnerScopesHomes); err != nil {
		t.Fatalf("set policy: %v", err)
	}

	st, err := svc.MemberHomeAccess(homeID, memberID, scopingOn)
	if err != nil {
		t.Fatalf("member access: %v", err)
	}
	if st.IsAccessible || st.Source != model.SourceInherited {
		t.Errorf("state = %+v, want inaccessible/inherited", st)
	}

	if _, err := svc.overrides.Set(householdID, homeID, memberID, model.DecisionAllow); err != nil {
		t.Fatalf("set override: %v", err)
	}

	st, err = svc.MemberHomeAccess(homeID, memberID, scopingOn)
	if err != nil {
		t.Fatalf("member access: %v", err)
	}
	if !st.IsAccessible || st.Source != model.SourceOverriddenAllow {
		t.Errorf("state = %+v, want accessible/overridden_allow", st)
	}
}

func TestPrivateHomeAbsoluteForMembers(t *testing.T) {
	svc, householdID, _, _, memberID := bootstrapped(t)

	private, err := svc.homes.Create(householdID, "Studio", true)
	if err != nil {
		t.Fatalf("create home: %v", err)
	}
	// An allow override must not unlock a private home.
	if _, err := svc.overrides.Set(householdID, private.ID, memberID, model.DecisionAllow); err != nil {
		t.Fatalf("set override: %v", err)
	}

	st, err := svc.MemberHomeAccess(private.ID, memberID, scopingOn)
	if err != nil {
		t.Fatalf("member access: %v", err)
	}
	if st.IsAccessible || st.Source != model.SourcePrivateHome {
		t.Errorf("state = %+v, want inaccessible/private_home", st)
	}
}

func TestKillSwitchOverridesEverything(t *testing.T) {
	svc, householdID, _, _, memberID := bootstrapped(t)

	private, err := svc.homes.Create(householdID, "Studio", true)
	if err != nil {
		t.Fatalf("create home: %v", err)
	}
	if _, err := svc.overrides.Set(householdID, private.ID, memberID, model.DecisionDeny); err != nil {
		t.Fatalf("set override: %v", err)
	}

	st, err := svc.MemberHomeAccess(private.ID, memberID, scopingOff)
	if err != nil {
		t.Fatalf("member access: %v", err)
	}
	if !st.IsAccessible || st.Source != model.SourceInherited {
		t.Errorf("state = %+v, want accessible/inherited with scoping disabled", st)
	}
}

func TestDuplicateOverridesLastWriteWins(t *testing.T) {
	svc, householdID, homeID, _, memberID := bootstrapped(t)

	// Insert duplicates directly; Set would clear prior rows.
	for _, decision := range []string{"allow", "deny"} {
		if _, err := svc.db.Exec(
			`INSERT INTO home_access_overrides (household_id, home_id, member_id, decision) VALUES (?, ?, ?, ?)`,
			householdID, homeID, memberID, decision,
		); err != nil {
			t.Fatalf("insert override: %v", err)
		}
	}

	st, err := svc.MemberHomeAccess(homeID, memberID, scopingOn)
	if err != nil {
		t.Fatalf("member access: %v", err)
	}
	if st.IsAccessible || st.Source != model.SourceOverriddenDeny {
		t.Errorf("state = %+v, want the most recently inserted (deny) to win", st)
	}
}

func TestScopingFlagsFromSettings(t *testing.T) {
	svc, householdID, homeID, _, memberID := bootstrapped(t)

	flags, err := svc.ScopingFlags(householdID)
	if err != nil {
		t.Fatalf("scoping flags: %v", err)
	}
	if !flags.FamilySharingScopingEnabled {
		t.Error("scoping should default to enabled")
	}

	if err := svc.settings.Set(householdID, store.FlagScopingEnabled, "false"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if _, err := svc.overrides.Set(householdID, homeID, memberID, model.DecisionDeny); err != nil {
		t.Fatalf("set override: %v", err)
	}

	flags, err = svc.ScopingFlags(householdID)
	if err != nil {
		t.Fatalf("scoping flags: %v", err)
	}
	st, err := svc.MemberHomeAccess(homeID, memberID, flags)
	if err != nil {
		t.Fatalf("member access: %v", err)
	}
	if !st.IsAccessible {
		t.Error("disabled scoping flag should make every home accessible")
	}
}
