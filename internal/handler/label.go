package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/rfinnegan/boxroom/internal/model"
	"github.com/rfinnegan/boxroom/internal/sharing"
	"github.com/rfinnegan/boxroom/internal/store"
	"github.com/rfinnegan/boxroom/internal/websocket"
)

type LabelHandler struct {
	labels     *store.LabelStore
	households *store.HouseholdStore
	sharing    *sharing.Service
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewLabelHandler(ls *store.LabelStore, hs *store.HouseholdStore, svc *sharing.Service, hub *websocket.Hub, logger *slog.Logger) *LabelHandler {
	return &LabelHandler{labels: ls, households: hs, sharing: svc, hub: hub, logger: logger}
}

// List returns the household label set visible to a member. Label visibility
// follows membership, not home access: any active member sees all labels.
func (h *LabelHandler) List(w http.ResponseWriter, r *http.Request) {
	memberStr := r.URL.Query().Get("member_id")
	if memberStr == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "member_id is required"})
		return
	}
	memberID, err := strconv.ParseInt(memberStr, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid member_id"})
		return
	}

	labels, err := h.sharing.HouseholdLabels(memberID)
	if err != nil {
		writeSharingError(w, h.logger, err, "failed to list labels")
		return
	}
	if labels == nil {
		labels = []model.InventoryLabel{}
	}
	writeJSON(w, http.StatusOK, labels)
}

type labelRequest struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

func (h *LabelHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
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

	label, err := h.labels.Create(household.ID, req.Name, req.Emoji, req.Color)
	if err != nil {
		h.logger.Error("create label", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create label"})
		return
	}

	broadcast(h.hub, websocket.NewMessage("label", "created", label.ID, nil))
	writeJSON(w, http.StatusCreated, label)
}

func (h *LabelHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.labels.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get label"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "label not found"})
		return
	}

	var req labelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	label, err := h.labels.Update(id, req.Name, req.Emoji, req.Color)
	if err != nil {
		h.logger.Error("update label", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update label"})
		return
	}

	broadcast(h.hub, websocket.NewMessage("label", "updated", id, nil))
	writeJSON(w, http.StatusOK, label)
}

func (h *LabelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.labels.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get label"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "label not found"})
		return
	}

	// Items referencing this label fall back to unlabeled via FK SET NULL.
	if err := h.labels.Delete(id); err != nil {
		h.logger.Error("delete label", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete label"})
		return
	}

	broadcast(h.hub, websocket.NewMessage("label", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
