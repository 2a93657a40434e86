package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rfinnegan/boxroom/internal/model"
	"github.com/rfinnegan/boxroom/internal/sharing"
	"github.com/rfinnegan/boxroom/internal/store"
	"github.com/rfinnegan/boxroom/internal/websocket"
)

type ItemHandler struct {
	items   *store.ItemStore
	homes   *store.HomeStore
	sharing *sharing.Service
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewItemHandler(is *store.ItemStore, hs *store.HomeStore, svc *sharing.Service, hub *websocket.Hub, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{items: is, homes: hs, sharing: svc, hub: hub, logger: logger}
}

type itemRequest struct {
	HomeID   int64  `json:"home_id"`
	LabelID  *int64 `json:"label_id"`
	Title    string `json:"title"`
	Notes    string `json:"notes"`
	Quantity int    `json:"quantity"`
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	home, err := h.homes.GetByID(req.HomeID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get home"})
		return
	}
	if home == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "home not found"})
		return
	}

	item, err := h.items.Create(req.HomeID, req.LabelID, req.Title, req.Notes, req.Quantity)
	if err != nil {
		h.logger.Error("create item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
		return
	}

	broadcast(h.hub, websocket.NewMessage("item", "created", item.ID, map[string]any{"home_id": item.HomeID}))
	writeJSON(w, http.StatusCreated, item)
}

// ListByHome returns the items in one home.
func (h *ItemHandler) ListByHome(w http.ResponseWriter, r *http.Request) {
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

	items, err := h.items.ListByHome(homeID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list items"})
		return
	}
	if items == nil {
		items = []model.InventoryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	item, err := h.items.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get item"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type moveRequest struct {
	DestinationHomeID int64 `json:"destination_home_id"`
	ActingMemberID    int64 `json:"acting_member_id"`
}

// Move relocates an item after evaluating the acting member's access to the
// destination home. A denied evaluation leaves the item untouched.
func (h *ItemHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	dest, err := h.homes.GetByID(req.DestinationHomeID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get home"})
		return
	}
	if dest == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "destination home not found"})
		return
	}

	flags, err := h.sharing.ScopingFlags(dest.HouseholdID)
	if err != nil {
		writeSharingError(w, h.logger, err, "failed to load flags")
		return
	}

	item, err := h.sharing.MoveItem(id, req.DestinationHomeID, req.ActingMemberID, flags)
	if err != nil {
		writeSharingError(w, h.logger, err, "failed to move item")
		return
	}

	broadcast(h.hub, websocket.NewMessage("item", "moved", item.ID, map[string]any{"home_id": item.HomeID}))
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	item, err := h.items.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get item"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	if err := h.items.Delete(id); err != nil {
		h.logger.Error("delete item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete item"})
		return
	}

	broadcast(h.hub, websocket.NewMessage("item", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
