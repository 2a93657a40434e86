package store

import (
	"testing"

	"github.com/rfinnegan/boxroom/internal/database"
	"github.com/rfinnegan/boxroom/internal/model"
)

func setupHouseholdTestDB(t *testing.T) *HouseholdStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewHouseholdStore(db)
}

func TestHouseholdCreate(t *testing.T) {
	hs := setupHouseholdTestDB(t)

	h, err := hs.Create("Test Household", model.PolicyAllHomesShared)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if h.Name != "Test Household" {
		t.Errorf("name = %q, want %q", h.Name, "Test Household")
	}
	if h.DefaultPolicy != model.PolicyAllHomesShared {
		t.Errorf("policy = %q, want %q", h.DefaultPolicy, model.PolicyAllHomesShared)
	}
	if !h.SharingEnabled {
		t.Error("sharing should default to enabled")
	}
	if h.ID == 0 {
		t.Error("expected non-zero ID")
	}
}

func TestHouseholdGetByIDNotFound(t *testing.T) {
	hs := setupHouseholdTestDB(t)

	h, err := hs.GetByID(999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if h != nil {
		t.Error("expected nil for nonexistent household")
	}
}

func TestHouseholdFirst(t *testing.T) {
	hs := setupHouseholdTestDB(t)

	h, err := hs.First()
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if h != nil {
		t.Fatal("expected nil with no households")
	}

	created, err := hs.Create("Test Household", model.PolicyOwnerScopesHomes)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	h, err = hs.First()
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if h == nil || h.ID != created.ID {
		t.Errorf("first = %+v, want id %d", h, created.ID)
	}
}

func TestHouseholdSetDefaultPolicy(t *testing.T) {
	hs := setupHouseholdTestDB(t)

	created, err := hs.Create("Test Household", model.PolicyAllHomesShared)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := hs.SetDefaultPolicy(created.ID, model.PolicyOwnerScopesHomes); err != nil {
		t.Fatalf("set policy: %v", err)
	}

	h, err := hs.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if h.DefaultPolicy != model.PolicyOwnerScopesHomes {
		t.Errorf("policy = %q, want %q", h.DefaultPolicy, model.PolicyOwnerScopesHomes)
	}
}

func TestHouseholdSetSharingEnabled(t *testing.T) {
	hs := setupHouseholdTestDB(t)

	created, err := hs.Create("Test Household", model.PolicyAllHomesShared)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := hs.SetSharingEnabled(created.ID, false); err != nil {
		t.Fatalf("set sharing: %v", err)
	}

	h, err := hs.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if h.SharingEnabled {
		t.Error("sharing should be disabled")
	}
}
