package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rfinnegan/boxroom/internal/store"
	"github.com/rfinnegan/boxroom/internal/websocket"
)

type SettingsHandler struct {
	settings   *store.SettingsStore
	households *store.HouseholdStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewSettingsHandler(ss *store.SettingsStore, hs *store.HouseholdStore, hub *websocket.Hub, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: ss, households: hs, hub: hub, logger: logger}
}

// GetScoping reports the scoping feature flag. This is the server-level flag;
// the household's own sharing_enabled switch lives on the household resource.
func (h *SettingsHandler) GetScoping(w http.ResponseWriter, r *http.Request) {
	household, err := h.households.First()
	if err != nil || household == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get household"})
		return
	}

	enabled, err := h.settings.GetBool(household.ID, store.FlagScopingEnabled, true)
	if err != nil {
		h.logger.Error("get scoping flag", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get setting"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"scoping_enabled": enabled})
}

type scopingRequest struct {
	ScopingEnabled bool `json:"scoping_enabled"`
}

func (h *SettingsHandler) UpdateScoping(w http.ResponseWriter, r *http.Request) {
	var req scopingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	household, err := h.households.First()
	if err != nil || household == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get household"})
		return
	}

	if err := h.settings.Set(household.ID, store.FlagScopingEnabled, strconv.FormatBool(req.ScopingEnabled)); err != nil {
		h.logger.Error("set scoping flag", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update setting"})
		return
	}

	broadcast(h.hub, websocket.NewMessage("settings", "updated", household.ID, map[string]any{"scoping_enabled": req.ScopingEnabled}))
	writeJSON(w, http.StatusOK, map[string]bool{"scoping_enabled": req.ScopingEnabled})
}
