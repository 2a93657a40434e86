package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rfinnegan/boxroom/internal/model"
	"github.com/rfinnegan/boxroom/internal/sharing"
	"github.com/rfinnegan/boxroom/internal/store"
	"github.com/rfinnegan/boxroom/internal/websocket"
)

// AccessHandler exposes per-home access evaluation and override management.
type AccessHandler struct {
	sharing   *sharing.Service
	homes     *store.HomeStore
	overrides *store.OverrideStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewAccessHandler(svc *sharing.Service, hs *store.HomeStore, os *store.OverrideStore, hub *websocket.Hub, logger *slog.Logger) *AccessHandler {
	return &AccessHandler{sharing: svc, homes: hs, overrides: os, hub: hub, logger: logger}
}

// ListStates returns the evaluated access state of every household member for
// one home. This is the read model the sharing sheet renders.
func (h *AccessHandler) ListStates(w http.ResponseWriter, r *http.Request) {
	homeID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	home, err := h.homes.GetByID(homeID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get home"})
		return
	}
	if home == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "home not found"})
		return
	}

	flags, err := h.sharing.ScopingFlags(home.HouseholdID)
	if err != nil {
		writeSharingError(w, h.logger, err, "failed to load flags")
		return
	}

	states, err := h.sharing.LoadHomeAccessStates(homeID, flags)
	if err != nil {
		writeSharingError(w, h.logger, err, "failed to evaluate access")
		return
	}
	if states == nil {
		states = []model.MemberHomeAccessState{}
	}
	writeJSON(w, http.StatusOK, states)
}

type overrideRequest struct {
	Decision string `json:"decision"`
}

// SetOverride records an allow or deny override for a member on a home and
// returns the member's re-evaluated state.
func (h *AccessHandler) SetOverride(w http.ResponseWriter, r *http.Request) {
	homeID, memberID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	decision, err := model.ParseOverrideDecision(req.Decision)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	home, err := h.homes.GetByID(homeID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get home"})
		return
	}
	if home == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "home not found"})
		return
	}

	if _, err := h.overrides.Set(home.HouseholdID, homeID, memberID, decision); err != nil {
		h.logger.Error("set override", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to set override"})
		return
	}

	broadcast(h.hub, websocket.NewMessage("access", "updated", homeID, map[string]any{"member_id": memberID}))
	h.writeMemberState(w, home, homeID, memberID)
}

// ClearOverride removes any override for a member on a home, restoring the
// policy default, and returns the re-evaluated state.
func (h *AccessHandler) ClearOverride(w http.ResponseWriter, r *http.Request) {
	homeID, memberID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	home, err := h.homes.GetByID(homeID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get home"})
		return
	}
	if home == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "home not found"})
		return
	}

	if err := h.overrides.Clear(homeID, memberID); err != nil {
		h.logger.Error("clear override", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to clear override"})
		return
	}

	broadcast(h.hub, websocket.NewMessage("access", "updated", homeID, map[string]any{"member_id": memberID}))
	h.writeMemberState(w, home, homeID, memberID)
}

func (h *AccessHandler) pathIDs(w http.ResponseWriter, r *http.Request) (homeID, memberID int64, ok bool) {
	homeID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return 0, 0, false
	}
	memberID, err = strconv.ParseInt(r.PathValue("member_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid member_id"})
		return 0, 0, false
	}
	return homeID, memberID, true
}

func (h *AccessHandler) writeMemberState(w http.ResponseWriter, home *model.Home, homeID, memberID int64) {
	flags, err := h.sharing.ScopingFlags(home.HouseholdID)
	if err != nil {
		writeSharingError(w, h.logger, err, "failed to load flags")
		return
	}
	state, err := h.sharing.MemberHomeAccess(homeID, memberID, flags)
	if err != nil {
		writeSharingError(w, h.logger, err, "failed to evaluate access")
		return
	}
	writeJSON(w, http.StatusOK, state)
}
