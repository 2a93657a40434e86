package handler

import (
	"log/slog"
	"net/http"

	"github.com/rfinnegan/boxroom/internal/backup"
	"github.com/rfinnegan/boxroom/internal/model"
	"github.com/rfinnegan/boxroom/internal/websocket"
)

type BackupHandler struct {
	manager *backup.Manager
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewBackupHandler(m *backup.Manager, hub *websocket.Hub, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, hub: hub, logger: logger}
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.manager == nil {
		writeJSON(w, http.StatusOK, []model.Backup{})
		return
	}

	backups, err := h.manager.List(50)
	if err != nil {
		h.logger.Error("list backups", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list backups"})
		return
	}
	if backups == nil {
		backups = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, backups)
}

// Run triggers an immediate backup and blocks until it finishes.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.manager == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "backups not configured"})
		return
	}

	id, err := h.manager.RunNow(r.Context())
	if err != nil {
		h.logger.Error("run backup", "error", err)
		broadcast(h.hub, websocket.NewMessage("backup", "failed", id, nil))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "backup failed"})
		return
	}

	broadcast(h.hub, websocket.NewMessage("backup", "completed", id, nil))
	writeJSON(w, http.StatusOK, map[string]any{"backup_id": id, "status": "completed"})
}
