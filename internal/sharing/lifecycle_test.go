package sharing

import (
	"errors"
	"testing"

	"github.com/rfinnegan/boxroom/internal/model"
)

func TestCreateInviteNoMembershipSideEffects(t *testing.T) {
	svc, householdID, _, _, _ := bootstrapped(t)

	before, err := svc.members.ListByHousehold(householdID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}

	invite, err := svc.CreateInvite(householdID, "Sam", "sam@example.com")
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	if invite.Token == "" {
		t.Error("expected non-empty token")
	}

	after, err := svc.members.ListByHousehold(householdID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(after) != len(before) {
		t.Errorf("members = %d, want %d (invite must not create members)", len(after), len(before))
	}
}

func TestCreateInviteHouseholdNotFound(t *testing.T) {
	svc := setupService(t)

	if _, err := svc.CreateInvite(42, "Sam", "sam@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAcceptInviteMaterializesMember(t *testing.T) {
	svc, householdID, _, _, _ := bootstrapped(t)

	invite, err := svc.CreateInvite(householdID, "Sam", "sam@example.com")
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}

	member, err := svc.AcceptInvite(invite.Token)
	if err != nil {
		t.Fatalf("accept invite: %v", err)
	}
	if member.Role != model.RoleMember {
		t.Errorf("role = %q, want member", member.Role)
	}
	if member.Status != model.StatusActive {
		t.Errorf("status = %q, want active", member.Status)
	}
	if member.DisplayName != "Sam" {
		t.Errorf("display name = %q, want Sam", member.DisplayName)
	}
}

func TestAcceptInviteConsumedExactlyOnce(t *testing.T) {
	svc, householdID, _, _, _ := bootstrapped(t)

	invite, err := svc.CreateInvite(householdID, "Sam", "sam@example.com")
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	if _, err := svc.AcceptInvite(invite.Token); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if _, err := svc.AcceptInvite(invite.Token); !errors.Is(err, ErrInviteUsed) {
		t.Fatalf("second accept err = %v, want ErrInviteUsed", err)
	}
}

func TestAcceptInviteUnknownToken(t *testing.T) {
	svc, _, _, _, _ := bootstrapped(t)

	if _, err := svc.AcceptInvite("no-such-token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRevokeMemberKeepsRow(t *testing.T) {
	svc, _, _, _, memberID := bootstrapped(t)

	if err := svc.RevokeMember(memberID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	member, err := svc.members.GetByID(memberID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if member == nil {
		t.Fatal("member row must survive revocation")
	}
	if member.Status != model.StatusRevoked {
		t.Errorf("status = %q, want revoked", member.Status)
	}
}

func TestRevokeMemberIdempotent(t *testing.T) {
	svc, _, _, _, memberID := bootstrapped(t)

	if err := svc.RevokeMember(memberID); err != nil {
		t.Fatalf("first revoke: %v", err)
	}
	if err := svc.RevokeMember(memberID); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
}

func TestRevokeMemberNotFound(t *testing.T) {
	svc, _, _, _, _ := bootstrapped(t)

	if err := svc.RevokeMember(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestReconcileRemovesRevokedMemberOverrides(t *testing.T) {
	svc, householdID, homeID, _, memberID := bootstrapped(t)

	other, err := svc.homes.Create(householdID, "Garage", false)
	if err != nil {
		t.Fatalf("create home: %v", err)
	}
	for _, home := range []int64{homeID, other.ID} {
		if _, err := svc.overrides.Set(householdID, home, memberID, model.DecisionAllow); err != nil {
			t.Fatalf("set override: %v", err)
		}
	}

	if err := svc.RevokeMember(memberID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	removed, err := svc.ReconcileStaleOverrides()
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	count, err := svc.overrides.CountByMember(memberID)
	if err != nil {
		t.Fatalf("count overrides: %v", err)
	}
	if count != 0 {
		t.Errorf("overrides for revoked member = %d, want 0", count)
	}
}

func TestReconcileKeepsActiveMemberOverrides(t *testing.T) {
	svc, householdID, homeID, _, memberID := bootstrapped(t)

	if _, err := svc.overrides.Set(householdID, homeID, memberID, model.DecisionDeny); err != nil {
		t.Fatalf("set override: %v", err)
	}

	removed, err := svc.ReconcileStaleOverrides()
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}

	count, err := svc.overrides.CountByMember(memberID)
	if err != nil {
		t.Fatalf("count overrides: %v", err)
	}
	if count != 1 {
		t.Errorf("overrides = %d, want 1", count)
	}
}

func TestReinviteCreatesFreshIdentityAndLabelsSurvive(t *testing.T) {
	svc, householdID, _, _, memberID := bootstrapped(t)

	labelsBefore, err := svc.labels.ListByHousehold(householdID)
	if err != nil {
		t.Fatalf("list labels: %v", err)
	}

	if err := svc.RevokeMember(memberID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.ReconcileStaleOverrides(); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	// Same display name and email as the revoked member.
	invite, err := svc.CreateInvite(householdID, "Alex", "alex@example.com")
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	fresh, err := svc.AcceptInvite(invite.Token)
	if err != nil {
		t.Fatalf("accept invite: %v", err)
	}

	if fresh.ID == memberID {
		t.Error("re-invite must mint a new member identity, not resurrect the revoked one")
	}
	if fresh.Status != model.StatusActive {
		t.Errorf("status = %q, want active", fresh.Status)
	}

	revoked, err := svc.members.GetByID(memberID)
	if err != nil {
		t.Fatalf("get revoked member: %v", err)
	}
	if revoked == nil || revoked.Status != model.StatusRevoked {
		t.Error("original member must remain, revoked")
	}

	labelsAfter, err := svc.HouseholdLabels(fresh.ID)
	if err != nil {
		t.Fatalf("labels for fresh member: %v", err)
	}
	if len(labelsAfter) != len(labelsBefore) {
		t.Fatalf("labels = %d, want %d (labels survive membership churn)", len(labelsAfter), len(labelsBefore))
	}
	for i := range labelsBefore {
		if labelsAfter[i].ID != labelsBefore[i].ID {
			t.Errorf("label %d id = %d, want %d", i, labelsAfter[i].ID, labelsBefore[i].ID)
		}
	}
}
