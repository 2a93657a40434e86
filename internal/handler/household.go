package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/rfinnegan/boxroom/internal/model"
	"github.com/rfinnegan/boxroom/internal/sharing"
	"github.com/rfinnegan/boxroom/internal/store"
	"github.com/rfinnegan/boxroom/internal/websocket"
)

type HouseholdHandler struct {
	households *store.HouseholdStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewHouseholdHandler(hs *store.HouseholdStore, hub *websocket.Hub, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{households: hs, hub: hub, logger: logger}
}

// Get returns the household. Boxroom runs single-household, so no ID in the
// path.
func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	household, err := h.households.First()
	if err != nil {
		h.logger.Error("get household", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get household"})
		return
	}
	if household == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "household not found"})
		return
	}
	writeJSON(w, http.StatusOK, household)
}

type householdRequest struct {
	Name           *string `json:"name"`
	SharingEnabled *bool   `json:"sharing_enabled"`
	DefaultPolicy  *string `json:"default_access_policy"`
}

// Update applies partial changes: name, the sharing kill switch, and the
// default access policy.
func (h *HouseholdHandler) Update(w http.ResponseWriter, r *http.Request) {
	household, err := h.households.First()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get household"})
		return
	}
	if household == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "household not found"})
		return
	}

	var req householdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
			return
		}
		if _, err := h.households.UpdateName(household.ID, name); err != nil {
			h.logger.Error("update household name", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update household"})
			return
		}
	}

	if req.SharingEnabled != nil {
		if err := h.households.SetSharingEnabled(household.ID, *req.SharingEnabled); err != nil {
			h.logger.Error("update sharing enabled", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update household"})
			return
		}
	}

	if req.DefaultPolicy != nil {
		policy, err := model.ParseAccessPolicy(*req.DefaultPolicy)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if err := h.households.SetDefaultPolicy(household.ID, policy); err != nil {
			h.logger.Error("update default policy", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update household"})
			return
		}
	}

	updated, err := h.households.GetByID(household.ID)
	if err != nil || updated == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get household"})
		return
	}

	broadcast(h.hub, websocket.NewMessage("household", "updated", updated.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

func broadcast(hub *websocket.Hub, msg websocket.Message) {
	if hub != nil {
		hub.Broadcast(msg)
	}
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeSharingError maps service sentinel errors to HTTP statuses. Unmapped
// errors become 500s with a generic message.
func writeSharingError(w http.ResponseWriter, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, sharing.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, sharing.ErrAccessDenied):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied"})
	case errors.Is(err, sharing.ErrMemberRevoked):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "member is revoked"})
	case errors.Is(err, sharing.ErrInviteUsed):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "invite already accepted"})
	case errors.Is(err, sharing.ErrInviteExpired):
		writeJSON(w, http.StatusGone, map[string]string{"error": "invite expired"})
	default:
		logger.Error(fallback, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fallback})
	}
}
