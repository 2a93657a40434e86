package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rfinnegan/boxroom/internal/model"
	"github.com/rfinnegan/boxroom/internal/store"
	"github.com/rfinnegan/boxroom/internal/websocket"
)

type HomeHandler struct {
	homes      *store.HomeStore
	households *store.HouseholdStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewHomeHandler(hs *store.HomeStore, hhs *store.HouseholdStore, hub *websocket.Hub, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{homes: hs, households: hhs, hub: hub, logger: logger}
}

type homeRequest struct {
	Name      string `json:"name"`
	IsPrivate bool   `json:"is_private"`
}

func (h *HomeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req homeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	household, err := h.households.First()
	if err != nil || household == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get household"})
		return
	}

	home, err := h.homes.Create(household.ID, req.Name, req.IsPrivate)
	if err != nil {
		h.logger.Error("create home", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create home"})
		return
	}

	broadcast(h.hub, websocket.NewMessage("home", "created", home.ID, nil))
	writeJSON(w, http.StatusCreated, home)
}

func (h *HomeHandler) List(w http.ResponseWriter, r *http.Request) {
	household, err := h.households.First()
	if err != nil || household == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get household"})
		return
	}

	homes, err := h.homes.ListByHousehold(household.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list homes"})
		return
	}
	if homes == nil {
		homes = []model.Home{}
	}
	writeJSON(w, http.StatusOK, homes)
}

func (h *HomeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	home, err := h.homes.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get home"})
		return
	}
	if home == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "home not found"})
		return
	}
	writeJSON(w, http.StatusOK, home)
}

type homePrivacyRequest struct {
	IsPrivate bool `json:"is_private"`
}

// SetPrivacy flips the private flag. Private wins over every override and
// policy for non-owners, so this takes effect immediately on next evaluation.
func (h *HomeHandler) SetPrivacy(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req homePrivacyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	home, err := h.homes.SetPrivate(id, req.IsPrivate)
	if err != nil {
		h.logger.Error("set home privacy", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update home"})
		return
	}
	if home == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "home not found"})
		return
	}

	broadcast(h.hub, websocket.NewMessage("home", "updated", home.ID, map[string]any{"is_private": home.IsPrivate}))
	writeJSON(w, http.StatusOK, home)
}

func (h *HomeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	home, err := h.homes.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get home"})
		return
	}
	if home == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "home not found"})
		return
	}

	if err := h.homes.Delete(id); err != nil {
		h.logger.Error("delete home", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete home"})
		return
	}

	broadcast(h.hub, websocket.NewMessage("home", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
